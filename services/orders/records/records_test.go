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
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document"
)

// =============================================================================
// Helpers
// =============================================================================

// sheetOf builds a sheet from rows of cell text; each row starts at column 0.
func sheetOf(name string, rows ...[]string) *document.Sheet {
	s := document.NewSheet(name)
	for r, row := range rows {
		s.EnsureRows(r + 1)
		for c, v := range row {
			if v != "" {
				s.SetText(r, c, v)
			}
		}
	}
	return s
}

func docOf(sheets ...*document.Sheet) *document.Document {
	d := document.New()
	for _, s := range sheets {
		d.Put(s)
	}
	return d
}

func day(s string) time.Time {
	d, err := dates.Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// =============================================================================
// Index
// =============================================================================

func TestIndex_OrdersDatesAndKeepsInsertionOrder(t *testing.T) {
	idx := NewIndex()
	idx.Add(day("2026-02-01"), NewEntry("B", ""))
	idx.Add(day("2026-01-01"), NewEntry("A1", "x"))
	idx.Add(day("2026-01-01"), NewEntry("A2", "y"))

	assert.Equal(t, []time.Time{day("2026-01-01"), day("2026-02-01")}, idx.Dates())
	assert.Equal(t, []Entry{{"A1", "x"}, {"A2", "y"}}, idx.Entries(day("2026-01-01")))
	assert.Equal(t, 3, idx.Len())
	assert.Equal(t, 2, idx.DateCount())

	latest, ok := idx.Latest()
	require.True(t, ok)
	assert.Equal(t, day("2026-02-01"), latest)

	var order []string
	idx.Each(func(_ time.Time, e Entry) { order = append(order, e.OrderID) })
	assert.Equal(t, []string{"A1", "A2", "B"}, order)
}

func TestIndex_LatestOnEmpty(t *testing.T) {
	_, ok := NewIndex().Latest()
	assert.False(t, ok)
}

func TestMerge_AppendsWithoutDedupAndLeavesInput(t *testing.T) {
	idx := NewIndex()
	idx.Add(day("2026-01-10"), NewEntry("NEW-1", "prod"))

	merged := Merge(idx, NewEntry("NEW-1", "prod"), day("2026-01-10"))
	merged = Merge(merged, NewEntry(" NEW-2 ", " qa "), day("2026-03-01"))

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, 3, merged.Len())
	assert.Equal(t, []Entry{{"NEW-1", "prod"}, {"NEW-1", "prod"}}, merged.Entries(day("2026-01-10")))
	assert.Equal(t, []Entry{{"NEW-2", "qa"}}, merged.Entries(day("2026-03-01")))
}

// =============================================================================
// Header layouts
// =============================================================================

func TestMatchHeader_Variants(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"shifted", []string{"", "", "", "Order ID", "Plan Name", "Environment", "Sprint", "Date"}, "shifted"},
		{"shifted legacy", []string{"", "", "", "order id", "PLAN NAME", "Sprint", "Date"}, "shifted-legacy"},
		{"zero", []string{"Order ID", "Plan Name", "Environment", "Sprint", "Date"}, "zero"},
		{"zero legacy", []string{" Order ID ", "Plan Name", "Sprint", "Date"}, "zero-legacy"},
		{"minimal", []string{"Order ID", "Date"}, "minimal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sheetOf("x", tt.row)
			l, ok := MatchHeader(s, 0)
			require.True(t, ok)
			assert.Equal(t, tt.want, l.Name)
		})
	}

	_, ok := MatchHeader(sheetOf("x", []string{"Order ID", "Plan Name"}), 0)
	assert.False(t, ok)
	_, ok = MatchHeader(sheetOf("x", []string{"NEW-1", "2026-01-01"}), 0)
	assert.False(t, ok)
}

func TestIsSprintLabel(t *testing.T) {
	assert.True(t, IsSprintLabel("Sprint-385"))
	assert.True(t, IsSprintLabel("sprint-1"))
	assert.False(t, IsSprintLabel("Sprint-"))
	assert.False(t, IsSprintLabel("Sprint-38x"))
}

// =============================================================================
// Parse
// =============================================================================

func TestParse_NoSourceSheet(t *testing.T) {
	idx, stats := Parse(docOf(sheetOf("Other", []string{"NEW-1", "2026-01-01"})), "Orders", "AllOrders")
	assert.Equal(t, 0, idx.Len())
	assert.Equal(t, "", stats.Source)
}

func TestParse_PrefersFirstSource(t *testing.T) {
	grouped := sheetOf("Orders", []string{"", "", "", "G-1", "", "", "", "2026-01-01"})
	flat := sheetOf("AllOrders", []string{"F-1", "", "", "", "2026-01-01"})
	idx, stats := Parse(docOf(flat, grouped), "Orders", "AllOrders")
	assert.Equal(t, "Orders", stats.Source)
	assert.Equal(t, []Entry{{"G-1", ""}}, idx.Entries(day("2026-01-01")))

	idx, stats = Parse(docOf(flat), "Orders", "AllOrders")
	assert.Equal(t, "AllOrders", stats.Source)
	assert.Equal(t, []Entry{{"F-1", ""}}, idx.Entries(day("2026-01-01")))
}

func TestParse_GroupedLayout(t *testing.T) {
	s := sheetOf("Orders",
		nil, nil, nil,
		[]string{"", "", "", "Order ID", "Plan Name", "Environment", "Sprint", "Date"},
		[]string{"", "", "", "NEW-1", "NEW-1", "prod", "Sprint-385", "2026-01-10"},
		[]string{"", "", "", "UCP-9", "UCSS", "", "Sprint-385", "2026-01-10"},
		nil, nil,
		[]string{"", "", "", "Order ID", "Plan Name", "Environment", "Sprint", "Date"},
		[]string{"", "", "", "TOM-3", "PPM", "qa", "", "2026-01-05"},
	)
	idx, stats := Parse(docOf(s), "Orders")

	assert.Equal(t, 3, stats.Entries)
	assert.Equal(t, 2, stats.Headers)
	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, []time.Time{day("2026-01-05"), day("2026-01-10")}, idx.Dates())
	assert.Equal(t, []Entry{{"NEW-1", "prod"}, {"UCP-9", ""}}, idx.Entries(day("2026-01-10")))
	assert.Equal(t, []Entry{{"TOM-3", "qa"}}, idx.Entries(day("2026-01-05")))
}

func TestParse_LegacyLayouts(t *testing.T) {
	tests := []struct {
		name string
		rows [][]string
		want map[string][]Entry
	}{
		{
			name: "minimal order id and date",
			rows: [][]string{
				{"Order ID", "Date"},
				{"NEW-1", "2025-12-01"},
			},
			want: map[string][]Entry{"2025-12-01": {{"NEW-1", ""}}},
		},
		{
			name: "zero offset without environment column",
			rows: [][]string{
				{"Order ID", "Plan Name", "Sprint", "Date"},
				{"MOD-4", "MOD-4", "Sprint-380", "2025-11-01"},
			},
			want: map[string][]Entry{"2025-11-01": {{"MOD-4", ""}}},
		},
		{
			name: "shifted without environment column",
			rows: [][]string{
				{"", "", "", "Order ID", "Plan Name", "Sprint", "Date"},
				{"", "", "", "CAN-2", "CAN-2", "Sprint-381", "2025-11-20"},
			},
			want: map[string][]Entry{"2025-11-20": {{"CAN-2", ""}}},
		},
		{
			name: "environment column holding a date is discarded",
			rows: [][]string{
				{"NEW-7", "NEW-7", "2025-10-10", "", "2025-10-10"},
			},
			want: map[string][]Entry{"2025-10-10": {{"NEW-7", ""}}},
		},
		{
			name: "flat view with sprint in column 3",
			rows: [][]string{
				{"Order ID", "Plan Name", "Environment", "Sprint", "Date"},
				{"NEW-8", "NEW-8", "prod", "Sprint-384", "2025-12-30"},
			},
			want: map[string][]Entry{"2025-12-30": {{"NEW-8", "prod"}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			idx, stats := Parse(docOf(sheetOf("Orders", tt.rows...)), "Orders")
			assert.Equal(t, 0, stats.Skipped)

			got := make(map[string][]Entry)
			for _, d := range idx.Dates() {
				got[dates.Format(d)] = idx.Entries(d)
			}
			assert.Empty(t, cmp.Diff(tt.want, got))
		})
	}
}

func TestParse_SkipsAnomalies(t *testing.T) {
	s := sheetOf("Orders",
		[]string{"just a note"},
		[]string{"NEW-1", "01/02/2026"},
		[]string{"", "2026-01-02"},
		[]string{"   ", "", "", "   ", "", "", "", "2026-13-40"},
		[]string{"NEW-2", " 2026-01-03 "},
		[]string{"   "},
	)
	idx, stats := Parse(docOf(s), "Orders")

	assert.Equal(t, 1, idx.Len())
	assert.Equal(t, []Entry{{"NEW-2", ""}}, idx.Entries(day("2026-01-03")))
	assert.Equal(t, 4, stats.Skipped)
	assert.Equal(t, 6, stats.Rows)
}

func TestParse_DateLikeOrderIDInShiftedColumnIsKept(t *testing.T) {
	s := sheetOf("Orders", []string{"", "", "", "2026-01-01", "", "", "", "2026-01-04"})
	idx, _ := Parse(docOf(s), "Orders")
	assert.Equal(t, []Entry{{"2026-01-01", ""}}, idx.Entries(day("2026-01-04")))
}

func TestParse_SprintOrDateInShiftedColumnFallsBackToColumnZero(t *testing.T) {
	s := sheetOf("Orders",
		[]string{"MOD-4", "MOD-4", "prod", "Sprint-380", "2025-11-01"},
		[]string{"NEW-9", "NEW-9", "Sprint-381", "2025-11-20"},
	)
	idx, stats := Parse(docOf(s), "Orders")

	assert.Equal(t, 0, stats.Skipped)
	assert.Equal(t, []Entry{{"MOD-4", "prod"}}, idx.Entries(day("2025-11-01")))
	assert.Equal(t, []Entry{{"NEW-9", ""}}, idx.Entries(day("2025-11-20")))
}
