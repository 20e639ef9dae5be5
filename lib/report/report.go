// Copyright 2026 The Loom Authors
// SPDX-License-Identifier: Apache-2.0

// Package report renders the end-of-run provisioning summary. Output
// is styled for terminals and degrades to plain text on pipes, so a
// captured run reads the same as an interactive one minus the color.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/moderndatateam/loom/lib/provision"
)

// Renderer writes provisioning summaries to one output stream with a
// color profile fixed at construction time.
type Renderer struct {
	out     io.Writer
	header  lipgloss.Style
	label   lipgloss.Style
	passed  lipgloss.Style
	failed  lipgloss.Style
	skipped lipgloss.Style
}

// NewRenderer returns a Renderer writing to out. Color is enabled only
// when out is a terminal; everything else gets the ASCII profile, which
// emits no escape sequences at all.
func NewRenderer(out io.Writer) *Renderer {
	profile := termenv.Ascii
	if file, ok := out.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		profile = termenv.ANSI256
	}
	// SetColorProfile is required on top of WithProfile: the renderer
	// re-detects from the environment unless the profile is explicit.
	renderer := lipgloss.NewRenderer(out, termenv.WithProfile(profile))
	renderer.SetColorProfile(profile)

	return &Renderer{
		out:     out,
		header:  renderer.NewStyle().Bold(true),
		label:   renderer.NewStyle().Foreground(lipgloss.Color("245")),
		passed:  renderer.NewStyle().Foreground(lipgloss.Color("114")),
		failed:  renderer.NewStyle().Foreground(lipgloss.Color("196")),
		skipped: renderer.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Render writes the summary: repository coordinates, the branch list,
// and one status line per integration.
func (r *Renderer) Render(report provision.Report) {
	fmt.Fprintln(r.out)
	fmt.Fprintln(r.out, r.header.Render("Provisioning summary"))
	fmt.Fprintf(r.out, "  %s %s\n", r.labelText("repository:"), report.RepoName)
	if report.RemoteURL != "" {
		fmt.Fprintf(r.out, "  %s %s\n", r.labelText("remote:"), report.RemoteURL)
	}
	if len(report.Branches) > 0 {
		fmt.Fprintf(r.out, "  %s %s\n", r.labelText("branches:"), strings.Join(report.Branches, ", "))
	}

	fmt.Fprintln(r.out)
	for _, result := range report.Results {
		status, detail := r.statusLine(result)
		line := fmt.Sprintf("  %s  %-15s", status, string(result.Name))
		if detail != "" {
			line += "  " + detail
		}
		fmt.Fprintln(r.out, strings.TrimRight(line, " "))
	}

	fmt.Fprintln(r.out)
	if failed := report.FailedCount(); failed > 0 {
		fmt.Fprintln(r.out, r.failed.Render(fmt.Sprintf("%d integration(s) failed; the repository itself is ready.", failed)))
		return
	}
	fmt.Fprintln(r.out, "All integrations succeeded.")
}

// labelText pads the label before styling so escape sequences never
// count against the column width.
func (r *Renderer) labelText(label string) string {
	return r.label.Render(fmt.Sprintf("%-12s", label))
}

func (r *Renderer) statusLine(result provision.IntegrationResult) (status, detail string) {
	switch {
	case !result.Attempted:
		return r.skipped.Render("[skip]"), ""
	case result.Succeeded:
		return r.passed.Render("[ok  ]"), ""
	default:
		return r.failed.Render("[fail]"), result.Reason
	}
}
