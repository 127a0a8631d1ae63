package report

import (
	"fmt"
	"io"
)

// File pairs a document's report with the source lines needed to print
// context excerpts.
type File struct {
	Name   string
	Lines  []string
	Report *Report
}

// WriteText writes plain validation output for one document to w.
func (r *Report) WriteText(w io.Writer) {
	c := r.Classify()
	for _, cat := range Categories {
		for _, d := range c.Bucket(cat) {
			d.Category = cat
			fmt.Fprintln(w, d.String())
		}
	}
	if r.IsClean() {
		fmt.Fprintln(w, "No issues found.")
	} else {
		fmt.Fprintf(w, "Check finished. Entity: %d, Tag: %d, Structural: %d\n",
			len(c.Entity), len(c.Tag), len(c.Structural))
	}
}
