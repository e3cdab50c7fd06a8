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
	"time"
)

// Window is one named, inclusive date range of the schedule.
//
// Number is -1 when the window was read back from a document and its name
// does not follow the "Sprint-<N>" form.
type Window struct {
	Name   string
	Number int
	Start  time.Time
	End    time.Time
}

// Contains reports whether d falls inside [Start, End].
func (w Window) Contains(d time.Time) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

// Schedule is an ascending list of windows.
type Schedule []Window

// LastNumber returns the number of the final window, or -1 when empty.
func (s Schedule) LastNumber() int {
	if len(s) == 0 {
		return -1
	}
	return s[len(s)-1].Number
}

// Resolve returns the name of the first window containing d, or "" when the
// schedule does not cover d.
func (s Schedule) Resolve(d time.Time) string {
	for _, w := range s {
		if w.Contains(d) {
			return w.Name
		}
	}
	return ""
}
