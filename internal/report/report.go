// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package report renders the results of a build run for people.
package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/matt-FFFFFF/parabuild/internal/color"
	"github.com/matt-FFFFFF/parabuild/internal/parallel"
	"github.com/muesli/termenv"
)

const detailIndent = "     "

// Options controls what is included in the report.
type Options struct {
	IncludeStdErr bool // stderr of failed assets
	IncludeStdOut bool // stdout of failed assets
	Colour        bool
}

// DefaultOptions shows stderr of failures, coloured when the terminal supports it.
func DefaultOptions() Options {
	return Options{
		IncludeStdErr: true,
		Colour:        color.Enabled(),
	}
}

// errorer is implemented by handles that know why a process did not succeed.
type errorer interface {
	Err() error
}

// outputer is implemented by handles that keep standard output.
type outputer interface {
	Output() string
}

type styles struct {
	success lipgloss.Style
	failed  lipgloss.Style
	label   lipgloss.Style
	detail  lipgloss.Style
	errHead lipgloss.Style
	summary lipgloss.Style
	warning lipgloss.Style
}

func newStyles(w io.Writer, colour bool) styles {
	r := lipgloss.NewRenderer(w)
	if colour {
		r.SetColorProfile(termenv.ANSI)
	} else {
		r.SetColorProfile(termenv.Ascii)
	}

	return styles{
		success: r.NewStyle().Foreground(lipgloss.Color("10")),
		failed:  r.NewStyle().Foreground(lipgloss.Color("9")),
		label:   r.NewStyle().Bold(true),
		detail:  r.NewStyle().Foreground(lipgloss.Color("8")),
		errHead: r.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		summary: r.NewStyle().Bold(true),
		warning: r.NewStyle().Foreground(lipgloss.Color("11")).Bold(true),
	}
}

// Write renders one line per finished asset followed by a summary line.
func Write(w io.Writer, res *parallel.Results, opts Options) error {
	s := newStyles(w, opts.Colour)
	sb := &strings.Builder{}

	if res.IsEmpty() {
		sb.WriteString(s.warning.Render("no assets to build"))
		sb.WriteByte('\n')

		_, err := io.WriteString(w, sb.String())

		return err
	}

	for _, jr := range res.Successes() {
		fmt.Fprintf(sb, "%s %s\n", s.success.Render("✓"), s.label.Render(jr.Job.Name()))
	}

	for _, jr := range res.Errors() {
		writeFailure(sb, s, jr, opts)
	}

	sb.WriteString(summary(res, s))
	sb.WriteByte('\n')

	_, err := io.WriteString(w, sb.String())

	return err
}

func writeFailure(sb *strings.Builder, s styles, jr parallel.JobResult, opts Options) {
	fmt.Fprintf(sb, "%s %s", s.failed.Render("✗"), s.label.Render(jr.Job.Name()))

	if jr.Handle == nil {
		sb.WriteByte('\n')
		return
	}

	if code := jr.Handle.ExitCode(); code != 0 {
		fmt.Fprintf(sb, " (exit code: %d)", code)
	}

	sb.WriteByte('\n')

	if e, ok := jr.Handle.(errorer); ok && e.Err() != nil {
		fmt.Fprintf(sb, "  %s %s\n", s.errHead.Render("➜ Error:"), e.Err().Error())
	}

	if opts.IncludeStdOut {
		if o, ok := jr.Handle.(outputer); ok {
			writeDetail(sb, s, s.detail.Render("➜ Output:"), o.Output())
		}
	}

	if opts.IncludeStdErr {
		writeDetail(sb, s, s.errHead.Render("➜ Error Output:"), jr.Handle.ErrorOutput())
	}
}

func writeDetail(sb *strings.Builder, s styles, heading, text string) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return
	}

	fmt.Fprintf(sb, "  %s\n", heading)

	for _, line := range strings.Split(text, "\n") {
		sb.WriteString(detailIndent)
		sb.WriteString(s.detail.Render(strings.TrimRight(line, "\r")))
		sb.WriteByte('\n')
	}
}

// summary returns the counts line, e.g. "3 succeeded, 1 failed, 2 not executed (timed out) in 1.5s".
func summary(res *parallel.Results, s styles) string {
	counts := fmt.Sprintf("%d succeeded, %d failed, %d not executed",
		len(res.Successes()), len(res.Errors()), res.NotExecutedCount())

	line := s.summary.Render(counts)

	switch res.Outcome() {
	case parallel.OutcomeCompleted, parallel.OutcomeEmpty:
	default:
		line += " " + s.warning.Render("("+res.Outcome().String()+")")
	}

	if d := res.Elapsed(); d > 0 {
		line += " in " + d.Round(time.Millisecond).String()
	}

	return line
}
