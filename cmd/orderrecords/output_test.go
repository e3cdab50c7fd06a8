// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPrinter_PlainForNonTerminal(t *testing.T) {
	var buf bytes.Buffer
	assert.True(t, newPrinter(&buf, false).plain)
	assert.True(t, newPrinter(&buf, true).plain)
}

func TestPrinter_Plain(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf, plain: true}

	p.Title("ignored")
	p.Muted("ignored")
	p.Success("done")
	p.Field("k", "v")
	p.Row(false, "a", "b")
	p.Row(true, "c", "d")

	assert.Equal(t, "OK: done\nk=v\na\tb\nc\td\t*\n", buf.String())
}

func TestPrinter_Styled(t *testing.T) {
	var buf bytes.Buffer
	p := &printer{out: &buf, plain: false}

	p.Title("Sprint schedule")
	p.Success("done")
	p.Field("file", "/tmp/x.xlsx")
	p.Row(true, "Sprint-385")

	out := buf.String()
	assert.Contains(t, out, "Sprint schedule")
	assert.Contains(t, out, iconSuccess)
	assert.Contains(t, out, "/tmp/x.xlsx")
	assert.Contains(t, out, iconArrow)
	assert.NotContains(t, out, "OK:")
}
