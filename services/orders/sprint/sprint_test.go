// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package sprint

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AleutianAI/OrderRecords/services/orders/dates"
)

// =============================================================================
// Numbering
// =============================================================================

func TestCalendar_NumberForDate(t *testing.T) {
	c := DefaultCalendar()
	tests := []struct {
		date string
		want int
	}{
		{"2026-01-07", 385},
		{"2026-01-10", 385},
		{"2026-01-20", 385},
		{"2026-01-21", 386},
		{"2026-01-06", 384},
		{"2025-12-24", 384},
		{"2025-12-23", 383},
		{"2026-10-14", 405},
	}
	for _, tt := range tests {
		d, err := dates.Parse(tt.date)
		require.NoError(t, err)
		assert.Equal(t, tt.want, c.NumberForDate(d), tt.date)
	}
}

func TestCalendar_StartAndEnd(t *testing.T) {
	c := DefaultCalendar()
	assert.Equal(t, dates.Date(2026, time.January, 7), c.Start(385))
	assert.Equal(t, dates.Date(2025, time.December, 24), c.Start(384))
	assert.Equal(t, dates.Date(2026, time.January, 20), c.End(c.Start(385)))

	anchor := c.Anchor()
	assert.Equal(t, "Sprint-385", anchor.Name)
	assert.Equal(t, 385, anchor.Number)
}

func TestCalendar_WindowsAbut(t *testing.T) {
	c := DefaultCalendar()
	s := c.Generate(340, 420)
	require.Len(t, s, 81)
	for i := 1; i < len(s); i++ {
		assert.Equal(t, dates.AddDays(s[i-1].End, 1), s[i].Start, s[i].Name)
		assert.Equal(t, s[i-1].Number+1, s[i].Number)
	}
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, 0, floorDiv(3, 14))
	assert.Equal(t, -1, floorDiv(-1, 14))
	assert.Equal(t, -1, floorDiv(-14, 14))
	assert.Equal(t, -2, floorDiv(-15, 14))
	assert.Equal(t, 1, floorDiv(14, 14))
}

func TestParseNumber(t *testing.T) {
	assert.Equal(t, 385, ParseNumber("Sprint-385"))
	assert.Equal(t, -1, ParseNumber("sprint-385"))
	assert.Equal(t, -1, ParseNumber("Sprint-"))
	assert.Equal(t, -1, ParseNumber("Release-1"))
	assert.Equal(t, "Sprint-12", Name(12))
}

// =============================================================================
// Ensure
// =============================================================================

func TestCalendar_Ensure_EmptyRegenerates(t *testing.T) {
	c := DefaultCalendar()
	s, regenerated := c.Ensure(nil, dates.Date(2026, time.October, 14))
	assert.True(t, regenerated)
	require.NotEmpty(t, s)
	assert.Equal(t, 340, s[0].Number)
	assert.Equal(t, 420, s.LastNumber())
}

func TestCalendar_Ensure_UsesDefaultLastFloor(t *testing.T) {
	c := DefaultCalendar()
	s, _ := c.Ensure(nil, dates.Date(2026, time.January, 10))
	assert.Equal(t, 400, s.LastNumber())

	early, _ := c.Ensure(nil, dates.Date(2020, time.January, 1))
	assert.Equal(t, 340, early[0].Number)
	assert.Equal(t, 398, early.LastNumber())
}

func TestCalendar_Ensure_KeepsSufficientSchedule(t *testing.T) {
	c := DefaultCalendar()
	existing := c.Generate(340, 430)
	s, regenerated := c.Ensure(existing, dates.Date(2026, time.October, 14))
	assert.False(t, regenerated)
	assert.Empty(t, cmp.Diff(existing, s))
}

func TestCalendar_Ensure_AppendOnlyAcrossRequests(t *testing.T) {
	c := DefaultCalendar()
	first, _ := c.Ensure(nil, dates.Date(2026, time.January, 10))
	second, regenerated := c.Ensure(first, dates.Date(2027, time.June, 1))
	require.True(t, regenerated)

	byNumber := make(map[int]Window, len(second))
	for _, w := range second {
		byNumber[w.Number] = w
	}
	for _, w := range first {
		got, ok := byNumber[w.Number]
		require.True(t, ok, w.Name)
		assert.Empty(t, cmp.Diff(w, got), w.Name)
	}

	cov := dates.Date(2027, time.June, 1)
	assert.GreaterOrEqual(t, second.LastNumber(), c.NumberForDate(cov)+c.ExtraWindows)
}

func TestCalendar_Ensure_UnparseableLastNameRegenerates(t *testing.T) {
	c := DefaultCalendar()
	existing := c.Generate(340, 430)
	existing[len(existing)-1].Name = "Final"
	existing[len(existing)-1].Number = -1
	s, regenerated := c.Ensure(existing, dates.Date(2026, time.October, 14))
	assert.True(t, regenerated)
	assert.Equal(t, 420, s.LastNumber())
}

// =============================================================================
// Resolve
// =============================================================================

func TestSchedule_Resolve(t *testing.T) {
	c := DefaultCalendar()
	s := c.Generate(380, 390)
	assert.Equal(t, "Sprint-385", s.Resolve(dates.Date(2026, time.January, 10)))
	assert.Equal(t, "Sprint-384", s.Resolve(dates.Date(2026, time.January, 6)))
	assert.Equal(t, "Sprint-385", s.Resolve(dates.Date(2026, time.January, 20)))
	assert.Equal(t, "", s.Resolve(dates.Date(2030, time.January, 1)))
	assert.Equal(t, "", Schedule{}.Resolve(dates.Date(2026, time.January, 10)))
}

func TestSchedule_ResolveGapBetweenShortWindows(t *testing.T) {
	c := DefaultCalendar()
	c.WindowDays = 10
	require.NoError(t, c.Validate())
	s := c.Generate(385, 386)
	assert.Equal(t, "Sprint-385", s.Resolve(dates.Date(2026, time.January, 16)))
	assert.Equal(t, "", s.Resolve(dates.Date(2026, time.January, 17)))
}

// =============================================================================
// Validate
// =============================================================================

func TestCalendar_Validate(t *testing.T) {
	assert.NoError(t, DefaultCalendar().Validate())

	c := DefaultCalendar()
	c.WindowDays = 15
	assert.ErrorIs(t, c.Validate(), ErrInvalidWindow)

	c = DefaultCalendar()
	c.PeriodDays = 0
	assert.ErrorIs(t, c.Validate(), ErrInvalidPeriod)

	c = DefaultCalendar()
	c.FirstNumber = 500
	assert.ErrorIs(t, c.Validate(), ErrInvalidRange)

	c = DefaultCalendar()
	c.AnchorStart = time.Time{}
	assert.ErrorIs(t, c.Validate(), ErrMissingAnchor)

	c = DefaultCalendar()
	c.AnchorStart = c.AnchorStart.Add(3 * time.Hour)
	assert.ErrorIs(t, c.Validate(), ErrAnchorNotInDays)
}
