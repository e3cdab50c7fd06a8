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
	"regexp"
	"strings"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
	"github.com/AleutianAI/OrderRecords/services/orders/document"
)

// Header labels written by the renderer and recognized by the parser.
const (
	LabelOrderID     = "Order ID"
	LabelPlan        = "Plan Name"
	LabelEnvironment = "Environment"
	LabelSprint      = "Sprint"
	LabelDate        = "Date"
)

// ShiftedOffset is the first column of the grouped view's tables.
const ShiftedOffset = 3

// HeaderLabels is the full header, in column order.
var HeaderLabels = []string{LabelOrderID, LabelPlan, LabelEnvironment, LabelSprint, LabelDate}

var (
	legacyLabels  = []string{LabelOrderID, LabelPlan, LabelSprint, LabelDate}
	minimalLabels = []string{LabelOrderID, LabelDate}
)

// HeaderLayout is one recognized header shape: a label sequence written in
// consecutive columns starting at Offset.
type HeaderLayout struct {
	Name   string
	Offset int
	Labels []string
}

// HeaderLayouts lists the header shapes in the order they are tried. The
// shifted variants come from the grouped view, the zero-offset ones from the
// flat view and from older documents that predate the Environment column.
var HeaderLayouts = []HeaderLayout{
	{Name: "shifted", Offset: ShiftedOffset, Labels: HeaderLabels},
	{Name: "shifted-legacy", Offset: ShiftedOffset, Labels: legacyLabels},
	{Name: "zero", Offset: 0, Labels: HeaderLabels},
	{Name: "zero-legacy", Offset: 0, Labels: legacyLabels},
	{Name: "minimal", Offset: 0, Labels: minimalLabels},
}

// Matches reports whether row r of s carries this layout's labels.
func (l HeaderLayout) Matches(s *document.Sheet, r int) bool {
	for i, label := range l.Labels {
		if !strings.EqualFold(strings.TrimSpace(s.Text(r, l.Offset+i)), label) {
			return false
		}
	}
	return true
}

// MatchHeader returns the first header layout matching row r.
func MatchHeader(s *document.Sheet, r int) (HeaderLayout, bool) {
	for _, l := range HeaderLayouts {
		if l.Matches(s, r) {
			return l, true
		}
	}
	return HeaderLayout{}, false
}

// Candidate columns for each field of a data row, best first.
var (
	orderIDColumns     = []int{ShiftedOffset, 0}
	dateColumns        = []int{ShiftedOffset + 4, ShiftedOffset + 3, ShiftedOffset + 2, 4, 3, 2, 1}
	environmentColumns = []int{ShiftedOffset + 2, 2}
)

var sprintLabelPattern = regexp.MustCompile(`(?i)^Sprint-\d+$`)

// IsSprintLabel reports whether v looks like a schedule window name.
func IsSprintLabel(v string) bool {
	return sprintLabelPattern.MatchString(v)
}

// looksMisplaced reports whether v is a sprint name or a date rather than
// free text, which happens when a legacy row is read with the wrong offset.
func looksMisplaced(v string) bool {
	return IsSprintLabel(v) || dates.IsDate(v)
}

// extractOrderID returns the first non-blank candidate. A shifted candidate
// that is really the sprint or date cell of a zero-offset row is passed over
// when column 0 holds a value.
func extractOrderID(s *document.Sheet, r int) string {
	zero := strings.TrimSpace(s.Text(r, 0))
	for _, c := range orderIDColumns {
		v := strings.TrimSpace(s.Text(r, c))
		if v == "" {
			continue
		}
		if c != 0 && zero != "" && looksMisplaced(v) {
			continue
		}
		return v
	}
	return ""
}

// extractDate returns the first candidate that parses as yyyy-MM-dd.
func extractDate(s *document.Sheet, r int) (string, bool) {
	for _, c := range dateColumns {
		v := strings.TrimSpace(s.Text(r, c))
		if v != "" && dates.IsDate(v) {
			return v, true
		}
	}
	return "", false
}

// extractEnvironment returns the first non-blank candidate, or "" when the
// chosen text is a sprint label or a date.
func extractEnvironment(s *document.Sheet, r int) string {
	for _, c := range environmentColumns {
		v := strings.TrimSpace(s.Text(r, c))
		if v == "" {
			continue
		}
		if looksMisplaced(v) {
			return ""
		}
		return v
	}
	return ""
}
