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
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Palette
var (
	colorTealBright  = lipgloss.Color("#2CD7C7")
	colorTealPrimary = lipgloss.Color("#20B9B4")
	colorSlate       = lipgloss.Color("#2C4A54")
)

var styles = struct {
	Title     lipgloss.Style
	Label     lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Highlight lipgloss.Style
}{
	Title:     lipgloss.NewStyle().Bold(true).Foreground(colorTealBright),
	Label:     lipgloss.NewStyle().Foreground(colorTealPrimary).Width(12),
	Muted:     lipgloss.NewStyle().Foreground(colorSlate),
	Success:   lipgloss.NewStyle().Foreground(colorTealBright),
	Highlight: lipgloss.NewStyle().Foreground(colorTealBright).Bold(true),
}

const (
	iconSuccess = "✓"
	iconArrow   = "→"
)

// printer writes command output. Plain output is line-oriented and stable
// for scripts; styled output is used on terminals.
type printer struct {
	out   io.Writer
	plain bool
}

func newPrinter(out io.Writer, forcePlain bool) *printer {
	return &printer{out: out, plain: forcePlain || !isTerminal(out)}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (p *printer) Title(text string) {
	if p.plain {
		return
	}
	fmt.Fprintln(p.out, styles.Title.Render(text))
}

func (p *printer) Success(text string) {
	if p.plain {
		fmt.Fprintf(p.out, "OK: %s\n", text)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", styles.Success.Render(iconSuccess), styles.Success.Render(text))
}

func (p *printer) Muted(text string) {
	if p.plain {
		return
	}
	fmt.Fprintln(p.out, styles.Muted.Render(text))
}

// Field prints one key/value line.
func (p *printer) Field(key, value string) {
	if p.plain {
		fmt.Fprintf(p.out, "%s=%s\n", key, value)
		return
	}
	fmt.Fprintf(p.out, "%s %s\n", styles.Label.Render(key), value)
}

// Row prints a tab-separated row; marked rows are highlighted.
func (p *printer) Row(marked bool, cols ...string) {
	line := strings.Join(cols, "\t")
	switch {
	case p.plain && marked:
		fmt.Fprintf(p.out, "%s\t*\n", line)
	case p.plain:
		fmt.Fprintln(p.out, line)
	case marked:
		fmt.Fprintf(p.out, "%s %s\n", styles.Highlight.Render(iconArrow), styles.Highlight.Render(line))
	default:
		fmt.Fprintf(p.out, "  %s\n", line)
	}
}
