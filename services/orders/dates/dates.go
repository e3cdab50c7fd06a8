// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package dates holds the calendar-date helpers shared by the order record
// packages. A date is a time.Time at midnight UTC; only the year, month and
// day are meaningful.
package dates

import (
	"time"
)

// Layout is the only textual date shape the document accepts (yyyy-MM-dd).
const Layout = "2006-01-02"

// Parse parses s in Layout form. It does not trim; callers trim cell text
// before parsing. Out-of-range components (month 13, February 30) fail.
func Parse(s string) (time.Time, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, err
	}
	return t, nil
}

// IsDate reports whether s parses in Layout form.
func IsDate(s string) bool {
	_, err := Parse(s)
	return err == nil
}

// Format renders d in Layout form.
func Format(d time.Time) string {
	return d.Format(Layout)
}

// Of returns the calendar date of t in t's own location.
func Of(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Date builds a calendar date.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// AddDays shifts d by n calendar days.
func AddDays(d time.Time, n int) time.Time {
	return d.AddDate(0, 0, n)
}

// DaysBetween returns the signed number of calendar days from a to b.
func DaysBetween(a, b time.Time) int {
	return int(Of(b).Sub(Of(a)).Hours() / 24)
}

// Later returns whichever of a and b falls later.
func Later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
