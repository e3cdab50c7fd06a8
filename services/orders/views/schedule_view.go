// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package views

import (
	"strconv"
	"strings"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document"
	"github.com/AleutianAI/OrderRecords/services/orders/sprint"
)

// Schedule view labels.
const (
	LabelCurrentSprint = "Current Sprint"
	LabelSprintName    = "Sprint Name"
	LabelStartDate     = "Start Date"
	LabelEndDate       = "End Date"
	startDatePrefix    = "Start Date: "
	endDatePrefix      = "End Date: "
	windowDaysPrefix   = "Window (days): "
)

// scheduleSheet lays out the info row for the anchor window, a spacer, the
// header, and one row per window.
func (r Renderer) scheduleSheet(sched sprint.Schedule) *document.Sheet {
	s := document.NewSheet(r.Names.Schedule)
	s.EnsureRows(ScheduleTopPadding)
	row := ScheduleTopPadding
	col := ScheduleOffset

	anchor := r.Calendar.Anchor()
	s.SetText(row, col, LabelCurrentSprint)
	s.SetText(row, col+1, anchor.Name)
	s.SetText(row, col+2, startDatePrefix+dates.Format(anchor.Start))
	s.SetText(row, col+3, endDatePrefix+dates.Format(anchor.End))
	s.SetText(row, col+4, windowDaysPrefix+strconv.Itoa(r.Calendar.WindowDays))
	row += 2

	s.SetHeader(row, col, LabelSprintName)
	s.SetHeader(row, col+1, LabelStartDate)
	s.SetHeader(row, col+2, LabelEndDate)
	row++

	for _, w := range sched {
		s.SetText(row, col, w.Name)
		s.SetText(row, col+1, dates.Format(w.Start))
		s.SetText(row, col+2, dates.Format(w.End))
		row++
	}
	return s
}

// scheduleOffsets are the column offsets a schedule table may start at: the
// padded layout written by the renderer, then an unpadded one.
var scheduleOffsets = []int{ScheduleOffset, 0}

// ReadSchedule loads the persisted windows from the named schedule view.
//
// # Description
//
// Rows before the "Sprint Name | Start Date | End Date" header are ignored.
// The header is looked for at the view's offset first and then at column 0;
// rows after it are read at whichever offset the header was found. Each row
// with a name and two yyyy-MM-dd dates becomes a window; invalid rows are
// skipped.
//
// # Outputs
//
//   - sprint.Schedule: The windows in row order; nil when the view is absent
//     or has no header.
func ReadSchedule(doc *document.Document, name string) sprint.Schedule {
	s, ok := doc.Sheet(name)
	if !ok {
		return nil
	}

	var out sprint.Schedule
	offset := -1
	for r := 0; r < s.RowCount(); r++ {
		if offset < 0 {
			offset = scheduleHeaderOffset(s, r)
			continue
		}
		nameCell := strings.TrimSpace(s.Text(r, offset))
		if nameCell == "" {
			continue
		}
		start, err := dates.Parse(strings.TrimSpace(s.Text(r, offset+1)))
		if err != nil {
			continue
		}
		end, err := dates.Parse(strings.TrimSpace(s.Text(r, offset+2)))
		if err != nil {
			continue
		}
		out = append(out, sprint.Window{
			Name:   nameCell,
			Number: sprint.ParseNumber(nameCell),
			Start:  start,
			End:    end,
		})
	}
	return out
}

// scheduleHeaderOffset returns the offset at which row r holds the schedule
// header, or -1.
func scheduleHeaderOffset(s *document.Sheet, r int) int {
	for _, off := range scheduleOffsets {
		if strings.EqualFold(strings.TrimSpace(s.Text(r, off)), LabelSprintName) &&
			strings.EqualFold(strings.TrimSpace(s.Text(r, off+1)), LabelStartDate) &&
			strings.EqualFold(strings.TrimSpace(s.Text(r, off+2)), LabelEndDate) {
			return off
		}
	}
	return -1
}

