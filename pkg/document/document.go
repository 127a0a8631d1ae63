// Package document holds the raw text of one dialect document. The raw
// text is the only source of truth for the line and column numbers shown
// to authors; every derived stream is line-count-preserving against it.
package document

import "strings"

// Document is immutable raw text plus its line decomposition.
type Document struct {
	Name  string
	text  string
	lines []string
}

// New creates a Document from already-decoded text.
func New(name, text string) *Document {
	return &Document{
		Name:  name,
		text:  text,
		lines: SplitLines(text),
	}
}

// Text returns the raw document text.
func (d *Document) Text() string {
	return d.text
}

// Lines returns the document's lines without their terminators.
func (d *Document) Lines() []string {
	return d.lines
}

// Line returns the 1-indexed line n.
func (d *Document) Line(n int) (string, bool) {
	if n < 1 || n > len(d.lines) {
		return "", false
	}
	return d.lines[n-1], true
}

// SplitLines splits text on \n, dropping a trailing \r from each line. A
// final newline does not start an extra empty line.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// LineCount returns the number of lines SplitLines would produce.
func LineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(strings.TrimSuffix(text, "\n"), "\n") + 1
}
