// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package xlsx persists documents as Office Open XML workbooks.
package xlsx

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/AleutianAI/OrderRecords/services/orders/document"
)

// DefaultHeaderFill is the solid fill of header cells (light cornflower blue).
const DefaultHeaderFill = "CCCCFF"

const (
	defaultSheet = "Sheet1"
	minColWidth  = 10.0
	maxColWidth  = 60.0
)

// ErrEmptyDocument is returned by Save for a document without sheets.
var ErrEmptyDocument = errors.New("document has no sheets")

// Options tune how workbooks are written.
type Options struct {
	// HeaderFill is the hex RGB fill of header cells; DefaultHeaderFill when
	// empty.
	HeaderFill string
	// AutoSize widens each column to fit its longest value.
	AutoSize bool
}

// Store reads and writes workbooks on the local filesystem.
//
// # Description
//
// Load reads cell values only; styles of loaded sheets are not carried into
// the document. Save replaces the file atomically: the workbook is written
// to a temporary file in the same directory, synced, and renamed over the
// target, so a failed save leaves the previous file intact.
//
// # Thread Safety
//
// Store holds no mutable state. Callers serialize writes to the same path.
type Store struct {
	opts Options
}

// NewStore returns a Store with the given options.
func NewStore(opts Options) *Store {
	if opts.HeaderFill == "" {
		opts.HeaderFill = DefaultHeaderFill
	}
	return &Store{opts: opts}
}

// Load reads the workbook at path.
//
// # Outputs
//
//   - *document.Document: The sheets found, in workbook order. An empty
//     document when the file does not exist.
//   - bool: True when the file existed.
//   - error: Non-nil when the file exists but cannot be opened or read.
func (s *Store) Load(ctx context.Context, path string) (*document.Document, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return document.New(), false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("stat %s: %w", path, err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, true, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	doc := document.New()
	for _, name := range f.GetSheetList() {
		rows, err := f.GetRows(name)
		if err != nil {
			return nil, true, fmt.Errorf("read sheet %q: %w", name, err)
		}
		sheet := document.NewSheet(name)
		sheet.EnsureRows(len(rows))
		for r, row := range rows {
			for c, v := range row {
				if v != "" {
					sheet.SetText(r, c, v)
				}
			}
		}
		doc.Put(sheet)
	}
	return doc, true, nil
}

// Save writes doc to path, replacing any existing file.
func (s *Store) Save(ctx context.Context, path string, doc *document.Document) error {
	if doc.Len() == 0 {
		return ErrEmptyDocument
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	f, err := s.build(doc)
	if err != nil {
		return err
	}
	defer f.Close()

	return writeAtomic(path, func(tmp *os.File) error {
		return f.Write(tmp)
	})
}

// build lays doc out as a workbook.
func (s *Store) build(doc *document.Document) (*excelize.File, error) {
	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{s.opts.HeaderFill}, Pattern: 1},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for i, sheet := range doc.Sheets() {
		if i == 0 {
			err = f.SetSheetName(defaultSheet, sheet.Name())
		} else {
			_, err = f.NewSheet(sheet.Name())
		}
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("create sheet %q: %w", sheet.Name(), err)
		}
		if err := s.fill(f, sheet, headerStyle); err != nil {
			f.Close()
			return nil, fmt.Errorf("write sheet %q: %w", sheet.Name(), err)
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

func (s *Store) fill(f *excelize.File, sheet *document.Sheet, headerStyle int) error {
	name := sheet.Name()
	widths := make([]int, sheet.ColumnCount())

	for r := 0; r < sheet.RowCount(); r++ {
		for c, cell := range sheet.Row(r) {
			if cell.Value == "" && !cell.Header {
				continue
			}
			ref, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellStr(name, ref, cell.Value); err != nil {
				return err
			}
			if cell.Header {
				if err := f.SetCellStyle(name, ref, ref, headerStyle); err != nil {
					return err
				}
			}
			widths[c] = max(widths[c], utf8.RuneCountInString(cell.Value))
		}
	}

	if !s.opts.AutoSize {
		return nil
	}
	for c, w := range widths {
		if w == 0 {
			continue
		}
		col, err := excelize.ColumnNumberToName(c + 1)
		if err != nil {
			return err
		}
		width := min(max(float64(w)+2, minColWidth), maxColWidth)
		if err := f.SetColWidth(name, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

// writeAtomic streams into a temporary sibling of path and renames it into
// place once the contents are on disk.
func writeAtomic(path string, write func(*os.File) error) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = write(tmp); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	if err = tmp.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err = tmp.Sync(); err != nil {
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
