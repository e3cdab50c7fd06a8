// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package views renders the three presentations of the order index into a
// document: the grouped-by-date view, the flat export, and the schedule
// reference. It also reads a persisted schedule back out of a document.
package views

import (
	"time"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document"
	"github.com/AleutianAI/OrderRecords/services/orders/plan"
	"github.com/AleutianAI/OrderRecords/services/orders/records"
	"github.com/AleutianAI/OrderRecords/services/orders/sprint"
)

// Layout constants of the rendered views.
const (
	GroupedTopPadding  = 3
	GroupedTableGap    = 2
	ScheduleTopPadding = 2
	ScheduleOffset     = 2
	// ScheduleSheetIndex is where the schedule view sits after rendering.
	ScheduleSheetIndex = 2
)

// Names are the sheet names of the three views.
type Names struct {
	Grouped  string `yaml:"grouped" validate:"required"`
	Flat     string `yaml:"flat" validate:"required"`
	Schedule string `yaml:"schedule" validate:"required"`
}

// DefaultNames returns the sheet names used by existing documents.
func DefaultNames() Names {
	return Names{Grouped: "Orders", Flat: "AllOrders", Schedule: "ValueConditions"}
}

// Sources lists the views the record parser reads from, in preference order.
func (n Names) Sources() []string {
	return []string{n.Grouped, n.Flat}
}

// Renderer regenerates the views of a document.
type Renderer struct {
	Names    Names
	Calendar sprint.Calendar
	// Classify labels an order id; plan.Classify when nil.
	Classify func(orderID string) string
}

// Render returns a copy of base with all three views rebuilt.
//
// # Description
//
// Each view is built from scratch and replaces any sheet of the same name,
// which is appended at the end; other sheets in base are carried over
// unchanged. The schedule view is then moved to ScheduleSheetIndex (or the
// last position when there are fewer sheets). The output depends only on
// idx, sched and the sheets of base that are not views, so a corrupted
// prior view cannot leak into the result.
//
// # Inputs
//
//   - base: The loaded document, or document.New(). Not modified.
//   - idx: The merged index.
//   - sched: The ensured schedule.
//
// # Outputs
//
//   - *document.Document: The document to persist.
func (r Renderer) Render(base *document.Document, idx *records.Index, sched sprint.Schedule) *document.Document {
	out := base.Clone()

	// The schedule is placed first so that a new document ends up ordered
	// grouped, flat, schedule once the views are appended and moved.
	out.Put(r.scheduleSheet(sched))
	out.Put(r.groupedSheet(idx, sched))
	out.Put(r.flatSheet(idx, sched))
	out.Move(r.Names.Schedule, min(ScheduleSheetIndex, out.Len()-1))
	return out
}

func (r Renderer) classify(orderID string) string {
	if r.Classify != nil {
		return r.Classify(orderID)
	}
	return plan.Classify(orderID)
}

func (r Renderer) groupedSheet(idx *records.Index, sched sprint.Schedule) *document.Sheet {
	s := document.NewSheet(r.Names.Grouped)
	s.EnsureRows(GroupedTopPadding)
	row := GroupedTopPadding

	for _, d := range idx.Dates() {
		writeHeader(s, row, records.ShiftedOffset)
		row++

		sprintName := sched.Resolve(d)
		for _, e := range idx.Entries(d) {
			r.writeEntry(s, row, records.ShiftedOffset, e, d, sprintName)
			row++
		}

		row += GroupedTableGap
		s.EnsureRows(row)
	}
	return s
}

func (r Renderer) flatSheet(idx *records.Index, sched sprint.Schedule) *document.Sheet {
	s := document.NewSheet(r.Names.Flat)
	writeHeader(s, 0, 0)
	row := 1
	idx.Each(func(d time.Time, e records.Entry) {
		r.writeEntry(s, row, 0, e, d, sched.Resolve(d))
		row++
	})
	return s
}

func writeHeader(s *document.Sheet, row, offset int) {
	for i, label := range records.HeaderLabels {
		s.SetHeader(row, offset+i, label)
	}
}

func (r Renderer) writeEntry(s *document.Sheet, row, offset int, e records.Entry, d time.Time, sprintName string) {
	s.SetText(row, offset, e.OrderID)
	s.SetText(row, offset+1, r.classify(e.OrderID))
	s.SetText(row, offset+2, e.Environment)
	s.SetText(row, offset+3, sprintName)
	s.SetText(row, offset+4, dates.Format(d))
}
