package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

const ruleWidth = 40

// PrettyOptions controls the console report.
type PrettyOptions struct {
	// Color enables ANSI colors for category headers.
	Color bool
	// Context prints the trimmed source line under each diagnostic.
	Context bool
	// ContextWidth truncates context excerpts to this many display columns.
	// Zero means 100.
	ContextWidth int
}

func categoryColor(cat Category, enabled bool) *color.Color {
	var c *color.Color
	switch cat {
	case EntityError:
		c = color.New(color.FgRed)
	case TagError:
		c = color.New(color.FgYellow)
	default:
		c = color.New(color.FgCyan)
	}
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func center(s string, width int) string {
	pad := width - runewidth.StringWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad/2) + s
}

// WritePretty writes the grouped console report for a batch of documents,
// followed by a summary line.
func WritePretty(w io.Writer, files []File, opts PrettyOptions) {
	width := opts.ContextWidth
	if width <= 0 {
		width = 100
	}
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, center("VALIDATION REPORT", ruleWidth))
	fmt.Fprintln(w, rule)

	total := 0
	for _, f := range files {
		c := f.Report.Classify()
		n := c.Total()
		total += n
		if n == 0 {
			fmt.Fprintf(w, "\n✔ %s: CLEAN - No issues found\n", f.Name)
			continue
		}
		fmt.Fprintf(w, "\n✘ %s: %d ISSUES FOUND\n", f.Name, n)

		for _, cat := range Categories {
			diags := c.Bucket(cat)
			if len(diags) == 0 {
				continue
			}
			hdr := categoryColor(cat, opts.Color)
			fmt.Fprintln(w)
			hdr.Fprintf(w, "══ %s ERRORS (%d) ══", cat, len(diags))
			fmt.Fprintln(w)
			for _, d := range diags {
				fmt.Fprintf(w, "  Line %4d, Col %3d │ %s\n", d.Line, d.Column, d.Message)
				if opts.Context && d.Line > 0 && d.Line <= len(f.Lines) {
					excerpt := strings.TrimSpace(f.Lines[d.Line-1])
					fmt.Fprintf(w, "       Context: '%s'\n", runewidth.Truncate(excerpt, width, "..."))
				}
				fmt.Fprintln(w)
			}
		}
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "SUMMARY: %d files scanned, %d total issues\n", len(files), total)
	fmt.Fprintln(w, rule)
}
