// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package sprint computes the rolling schedule of numbered sprint windows.
//
// # Description
//
// A window's name, start and end are a pure function of its number: the
// anchor (a known number and its start date) fixes the origin, and every
// other window is offset from it by a whole number of periods. Because of
// that, regenerating the schedule from scratch always reproduces the same
// dates for every window that existed before, so a wholesale rewrite of the
// persisted schedule behaves exactly like an append at the forward edge.
//
// # Thread Safety
//
// Calendar and Schedule are values; all methods are safe for concurrent use.
package sprint

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
)

// NamePrefix prefixes every window name ("Sprint-385").
const NamePrefix = "Sprint-"

var (
	ErrInvalidPeriod   = errors.New("sprint period must be greater than 0 days")
	ErrInvalidWindow   = errors.New("sprint window length must be between 1 and the period")
	ErrInvalidRange    = errors.New("first sprint number must not exceed the default last number")
	ErrInvalidExtra    = errors.New("extra window count must not be negative")
	ErrMissingAnchor   = errors.New("anchor start date is required")
	ErrAnchorNotInDays = errors.New("anchor start must be a calendar date")
)

// Calendar holds the constants of the periodic numbering scheme.
//
// # Fields
//
//   - AnchorNumber: The number of the designated "current" window.
//   - AnchorStart: The first day of the anchor window.
//   - PeriodDays: Days between consecutive window starts.
//   - WindowDays: Days inside one window (end = start + WindowDays - 1).
//   - FirstNumber: Lowest window number ever generated.
//   - DefaultLastNumber: Generation always reaches at least this number.
//   - ExtraWindows: Windows kept beyond the one covering the coverage date.
type Calendar struct {
	AnchorNumber      int
	AnchorStart       time.Time
	PeriodDays        int
	WindowDays        int
	FirstNumber       int
	DefaultLastNumber int
	ExtraWindows      int
}

// DefaultCalendar returns the production numbering scheme: Sprint-385 starts
// on 2026-01-07, two-week sprints, generated from Sprint-340.
func DefaultCalendar() Calendar {
	return Calendar{
		AnchorNumber:      385,
		AnchorStart:       dates.Date(2026, time.January, 7),
		PeriodDays:        14,
		WindowDays:        14,
		FirstNumber:       340,
		DefaultLastNumber: 398,
		ExtraWindows:      15,
	}
}

// Validate checks that windows generated by c never overlap.
func (c Calendar) Validate() error {
	if c.AnchorStart.IsZero() {
		return ErrMissingAnchor
	}
	if !c.AnchorStart.Equal(dates.Of(c.AnchorStart)) {
		return ErrAnchorNotInDays
	}
	if c.PeriodDays <= 0 {
		return ErrInvalidPeriod
	}
	if c.WindowDays <= 0 || c.WindowDays > c.PeriodDays {
		return fmt.Errorf("%w: window %d, period %d", ErrInvalidWindow, c.WindowDays, c.PeriodDays)
	}
	if c.FirstNumber > c.DefaultLastNumber {
		return fmt.Errorf("%w: %d > %d", ErrInvalidRange, c.FirstNumber, c.DefaultLastNumber)
	}
	if c.ExtraWindows < 0 {
		return ErrInvalidExtra
	}
	return nil
}

// NumberForDate returns the number of the window whose period contains d.
// Dates before the anchor resolve to lower numbers (floored division).
func (c Calendar) NumberForDate(d time.Time) int {
	return c.AnchorNumber + floorDiv(dates.DaysBetween(c.AnchorStart, d), c.PeriodDays)
}

// Start returns the first day of window n.
func (c Calendar) Start(n int) time.Time {
	return dates.AddDays(c.AnchorStart, (n-c.AnchorNumber)*c.PeriodDays)
}

// End returns the last day of the window starting on start.
func (c Calendar) End(start time.Time) time.Time {
	return dates.AddDays(start, c.WindowDays-1)
}

// Window returns the full definition of window n.
func (c Calendar) Window(n int) Window {
	start := c.Start(n)
	return Window{Name: Name(n), Number: n, Start: start, End: c.End(start)}
}

// Anchor returns the designated current window.
func (c Calendar) Anchor() Window {
	return c.Window(c.AnchorNumber)
}

// Generate returns windows first..last inclusive in ascending order.
func (c Calendar) Generate(first, last int) Schedule {
	if last < first {
		return Schedule{}
	}
	out := make(Schedule, 0, last-first+1)
	for n := first; n <= last; n++ {
		out = append(out, c.Window(n))
	}
	return out
}

// RequiredLast returns the lowest acceptable last window number for a
// schedule that must cover coverage.
func (c Calendar) RequiredLast(coverage time.Time) int {
	return max(c.NumberForDate(coverage), c.FirstNumber) + c.ExtraWindows
}

// Ensure returns a schedule covering coverage plus ExtraWindows further
// windows.
//
// # Description
//
// When existing already reaches the required last number it is returned
// untouched, so persisted window names and dates never move. Otherwise the
// whole schedule is regenerated from FirstNumber through
// max(required, DefaultLastNumber); since windows depend only on their
// number, every window that existed before reappears with the same dates.
//
// # Outputs
//
//   - Schedule: The schedule to render and resolve against.
//   - bool: True when the schedule was regenerated.
func (c Calendar) Ensure(existing Schedule, coverage time.Time) (Schedule, bool) {
	required := c.RequiredLast(coverage)
	if len(existing) > 0 && existing.LastNumber() >= required {
		return existing, false
	}
	return c.Generate(c.FirstNumber, max(required, c.DefaultLastNumber)), true
}

// Name formats a window number as its label.
func Name(n int) string {
	return NamePrefix + strconv.Itoa(n)
}

// ParseNumber extracts the number from a "Sprint-<N>" label, or -1.
func ParseNumber(name string) int {
	rest, ok := strings.CutPrefix(name, NamePrefix)
	if !ok {
		return -1
	}
	n, err := strconv.Atoi(rest)
	if err != nil {
		return -1
	}
	return n
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
