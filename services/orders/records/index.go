// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package records turns the rows of an order document into the canonical
// date-ordered index of order entries, and merges new entries into it.
package records

import (
	"slices"
	"strings"
	"time"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
)

// Entry is one stored order. Entries are values and are never mutated.
type Entry struct {
	OrderID     string
	Environment string
}

// NewEntry trims both fields.
func NewEntry(orderID, environment string) Entry {
	return Entry{
		OrderID:     strings.TrimSpace(orderID),
		Environment: strings.TrimSpace(environment),
	}
}

// Index maps calendar dates to the entries stored on them.
//
// # Description
//
// Dates iterate in ascending order, and entries keep insertion order within
// a date. Every date present holds at least one entry. Duplicate entries are
// kept: submitting the same order twice on a date stores it twice.
//
// # Thread Safety
//
// Not safe for concurrent mutation. Merge returns a new Index and leaves
// its input untouched.
type Index struct {
	buckets map[time.Time][]Entry
	total   int
}

// NewIndex returns an empty index.
func NewIndex() *Index {
	return &Index{buckets: make(map[time.Time][]Entry)}
}

// Add appends e to date's bucket in place.
func (x *Index) Add(date time.Time, e Entry) {
	day := dates.Of(date)
	x.buckets[day] = append(x.buckets[day], e)
	x.total++
}

// Dates returns the populated dates in ascending order.
func (x *Index) Dates() []time.Time {
	out := make([]time.Time, 0, len(x.buckets))
	for d := range x.buckets {
		out = append(out, d)
	}
	slices.SortFunc(out, func(a, b time.Time) int { return a.Compare(b) })
	return out
}

// Entries returns a copy of the entries stored on date.
func (x *Index) Entries(date time.Time) []Entry {
	return slices.Clone(x.buckets[dates.Of(date)])
}

// Len returns the total number of entries across all dates.
func (x *Index) Len() int { return x.total }

// DateCount returns the number of populated dates.
func (x *Index) DateCount() int { return len(x.buckets) }

// Latest returns the most recent populated date.
func (x *Index) Latest() (time.Time, bool) {
	ds := x.Dates()
	if len(ds) == 0 {
		return time.Time{}, false
	}
	return ds[len(ds)-1], true
}

// Each calls fn for every entry in ascending date order.
func (x *Index) Each(fn func(date time.Time, e Entry)) {
	for _, d := range x.Dates() {
		for _, e := range x.buckets[d] {
			fn(d, e)
		}
	}
}

// Clone returns an independent copy.
func (x *Index) Clone() *Index {
	out := &Index{buckets: make(map[time.Time][]Entry, len(x.buckets)), total: x.total}
	for d, es := range x.buckets {
		out.buckets[d] = slices.Clone(es)
	}
	return out
}

// Merge returns a copy of x with e appended to date's bucket. This is the
// only way a new order enters the system; there is no update or delete.
func Merge(x *Index, e Entry, date time.Time) *Index {
	out := x.Clone()
	out.Add(date, e)
	return out
}
