// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package plan derives the plan label of an order from the textual shape of
// its identifier.
package plan

import (
	"regexp"
	"strings"
)

// Plan labels produced by Classify.
const (
	LabelUCDM  = "UCDM"
	LabelPPM   = "PPM"
	LabelAmex  = "NEW-14"
	LabelUCSS  = "UCSS"
	LabelNew   = "NEW"
	LabelMod   = "MOD"
	LabelCan   = "CAN"
	LabelEmpty = ""
)

var (
	// uuidTimestampPattern matches "<hex-and-dash token>/<ISO-8601 UTC timestamp>".
	uuidTimestampPattern = regexp.MustCompile(`(?i)^[0-9a-f-]{8,}/\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(?:\.\d+)?Z$`)

	numberedPattern = regexp.MustCompile(`(?i)^(NEW|MOD|CAN)-\d+`)
)

// rule is one step of the classification precedence list.
type rule struct {
	name  string
	match func(id, upper string) (string, bool)
}

func prefixRule(name, label string, prefixes ...string) rule {
	return rule{
		name: name,
		match: func(_, upper string) (string, bool) {
			for _, p := range prefixes {
				if strings.HasPrefix(upper, p) {
					return label, true
				}
			}
			return "", false
		},
	}
}

// rules is evaluated top to bottom; the first match wins. The numbered
// NEW/MOD/CAN rule must precede the bare-prefix rules it overlaps with.
var rules = []rule{
	{
		name: "uuid-timestamp",
		match: func(id, _ string) (string, bool) {
			return LabelUCDM, uuidTimestampPattern.MatchString(id)
		},
	},
	prefixRule("ppm", LabelPPM, "TOM", "PRJ"),
	prefixRule("amex", LabelAmex, "AMEX"),
	prefixRule("ucp", LabelUCSS, "UCP"),
	{
		name: "numbered",
		match: func(id, _ string) (string, bool) {
			m := numberedPattern.FindString(id)
			return strings.ToUpper(m), m != ""
		},
	},
	prefixRule("new", LabelNew, "NEW"),
	prefixRule("mod", LabelMod, "MOD"),
	prefixRule("can", LabelCan, "CAN"),
}

// Classify returns the plan label for orderID.
//
// # Description
//
// Classify is pure and total. The identifier is trimmed first and blank
// input yields "". Unrecognized shapes also yield "".
//
// # Examples
//
//	plan.Classify("NEW-102x")  // "NEW-102"
//	plan.Classify("tomcat-1")  // "PPM"
//	plan.Classify("newish")    // "NEW"
//	plan.Classify("XYZ")       // ""
func Classify(orderID string) string {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return LabelEmpty
	}
	upper := strings.ToUpper(id)
	for _, r := range rules {
		if label, ok := r.match(id, upper); ok {
			return label
		}
	}
	return LabelEmpty
}
