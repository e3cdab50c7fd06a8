// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package records

import (
	"strings"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document"
)

// ParseStats describes what Parse found in the source view.
//
// # Fields
//
//   - Source: Name of the view rows were read from ("" when none existed).
//   - Rows: Rows inspected, blank rows included.
//   - Headers: Rows recognized as table headers.
//   - Entries: Rows accepted into the index.
//   - Skipped: Non-blank, non-header rows without an order id or a date.
type ParseStats struct {
	Source  string
	Rows    int
	Headers int
	Entries int
	Skipped int
}

// Parse reads every order row of doc into a new Index.
//
// # Description
//
// The first of sources that exists in doc is read; when none exist the
// index is empty. Each row is matched against HeaderLayouts and skipped if
// it is a header. Otherwise the order id, date and environment are taken
// from their candidate columns. The column-3 order id candidate is passed
// over when it looks like a sprint label or a date and column 0 is not
// blank; the row is then a zero-offset row and column 0 holds the id. Rows
// without an id or a yyyy-MM-dd date are dropped without error, so
// hand-edited and legacy documents never fail a request.
//
// # Inputs
//
//   - doc: The loaded document. Not modified.
//   - sources: View names to read, in preference order.
//
// # Outputs
//
//   - *Index: Entries grouped by date, in row order within each date.
//   - ParseStats: Counters for logging and metrics.
func Parse(doc *document.Document, sources ...string) (*Index, ParseStats) {
	idx := NewIndex()
	var stats ParseStats

	var sheet *document.Sheet
	for _, name := range sources {
		if s, ok := doc.Sheet(name); ok {
			sheet = s
			stats.Source = name
			break
		}
	}
	if sheet == nil {
		return idx, stats
	}

	for r := 0; r < sheet.RowCount(); r++ {
		stats.Rows++
		if _, ok := MatchHeader(sheet, r); ok {
			stats.Headers++
			continue
		}

		orderID := extractOrderID(sheet, r)
		dateText, ok := extractDate(sheet, r)
		if orderID == "" || !ok {
			if !blankRow(sheet, r) {
				stats.Skipped++
			}
			continue
		}
		date, err := dates.Parse(dateText)
		if err != nil {
			stats.Skipped++
			continue
		}

		idx.Add(date, NewEntry(orderID, extractEnvironment(sheet, r)))
		stats.Entries++
	}
	return idx, stats
}

func blankRow(s *document.Sheet, r int) bool {
	for _, c := range s.Row(r) {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}
