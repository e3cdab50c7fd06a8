// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package document models the tabular order document as an in-memory value.
//
// # Description
//
// A Document is an ordered list of named sheets, each a sparse grid of text
// cells. The order record engine reads a loaded Document, builds a fresh one
// with its regenerated views, and hands the result to a codec (see the xlsx
// subpackage) that writes it in a single step. Nothing here touches disk.
//
// # Thread Safety
//
// Not safe for concurrent mutation. The engine never mutates a Document it
// did not create.
package document

import (
	"slices"
	"strings"
)

// Cell is one text value. Header marks cells rendered with the header style.
type Cell struct {
	Value  string
	Header bool
}

// Sheet is a named grid of cells addressed by zero-based row and column.
type Sheet struct {
	name string
	rows [][]Cell
}

// NewSheet returns an empty sheet.
func NewSheet(name string) *Sheet {
	return &Sheet{name: name}
}

// Name returns the sheet name.
func (s *Sheet) Name() string { return s.name }

// RowCount returns the number of rows, including blank ones.
func (s *Sheet) RowCount() int { return len(s.rows) }

// Row returns a copy of row r, or nil when r is out of range.
func (s *Sheet) Row(r int) []Cell {
	if r < 0 || r >= len(s.rows) {
		return nil
	}
	return slices.Clone(s.rows[r])
}

// Text returns the value at (r, c), or "" for an absent cell.
func (s *Sheet) Text(r, c int) string {
	if r < 0 || r >= len(s.rows) || c < 0 || c >= len(s.rows[r]) {
		return ""
	}
	return s.rows[r][c].Value
}

// IsHeader reports whether the cell at (r, c) carries the header style.
func (s *Sheet) IsHeader(r, c int) bool {
	if r < 0 || r >= len(s.rows) || c < 0 || c >= len(s.rows[r]) {
		return false
	}
	return s.rows[r][c].Header
}

// SetText stores a plain value at (r, c), growing the grid as needed.
func (s *Sheet) SetText(r, c int, value string) {
	s.set(r, c, Cell{Value: value})
}

// SetHeader stores a header-styled value at (r, c).
func (s *Sheet) SetHeader(r, c int, value string) {
	s.set(r, c, Cell{Value: value, Header: true})
}

// EnsureRows grows the sheet to at least n rows; extra rows are blank.
func (s *Sheet) EnsureRows(n int) {
	for len(s.rows) < n {
		s.rows = append(s.rows, nil)
	}
}

// ColumnCount returns the width of the widest row.
func (s *Sheet) ColumnCount() int {
	width := 0
	for _, row := range s.rows {
		width = max(width, len(row))
	}
	return width
}

func (s *Sheet) set(r, c int, cell Cell) {
	if r < 0 || c < 0 {
		return
	}
	s.EnsureRows(r + 1)
	row := s.rows[r]
	for len(row) <= c {
		row = append(row, Cell{})
	}
	row[c] = cell
	s.rows[r] = row
}

func (s *Sheet) clone() *Sheet {
	out := &Sheet{name: s.name, rows: make([][]Cell, len(s.rows))}
	for i, row := range s.rows {
		out.rows[i] = slices.Clone(row)
	}
	return out
}

// Document is an ordered collection of uniquely named sheets. Names are
// unique ignoring case, as in spreadsheet applications.
type Document struct {
	sheets []*Sheet
}

// New returns a document with no sheets.
func New() *Document {
	return &Document{}
}

// Len returns the number of sheets.
func (d *Document) Len() int { return len(d.sheets) }

// Names returns the sheet names in order.
func (d *Document) Names() []string {
	out := make([]string, len(d.sheets))
	for i, s := range d.sheets {
		out[i] = s.name
	}
	return out
}

// Sheets returns the sheets in order.
func (d *Document) Sheets() []*Sheet {
	return slices.Clone(d.sheets)
}

// Sheet returns the named sheet, matching the name case-insensitively.
func (d *Document) Sheet(name string) (*Sheet, bool) {
	i := d.Index(name)
	if i < 0 {
		return nil, false
	}
	return d.sheets[i], true
}

// Index returns the position of the named sheet, or -1. Names compare
// case-insensitively.
func (d *Document) Index(name string) int {
	return slices.IndexFunc(d.sheets, func(s *Sheet) bool { return strings.EqualFold(s.name, name) })
}

// Put removes any sheet whose name equals s's ignoring case and appends s
// at the end.
func (d *Document) Put(s *Sheet) {
	if i := d.Index(s.name); i >= 0 {
		d.sheets = slices.Delete(d.sheets, i, i+1)
	}
	d.sheets = append(d.sheets, s)
}

// Move relocates the named sheet to index, clamped to the valid range.
// It reports false when the sheet does not exist.
func (d *Document) Move(name string, index int) bool {
	i := d.Index(name)
	if i < 0 {
		return false
	}
	s := d.sheets[i]
	d.sheets = slices.Delete(d.sheets, i, i+1)
	index = min(max(index, 0), len(d.sheets))
	d.sheets = slices.Insert(d.sheets, index, s)
	return true
}

// Clone returns a deep copy of d.
func (d *Document) Clone() *Document {
	out := &Document{sheets: make([]*Sheet, len(d.sheets))}
	for i, s := range d.sheets {
		out.sheets[i] = s.clone()
	}
	return out
}
