package report

import (
	"encoding/json"
	"io"
)

// JSONEntry is one diagnostic in the JSON output, without its category
// since the enclosing bucket names it.
type JSONEntry struct {
	CheckID string `json:"check_id,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column"`
	Message string `json:"message"`
}

// JSONFile is the JSON structure written for one document.
type JSONFile struct {
	File       string      `json:"file,omitempty"`
	Clean      bool        `json:"clean"`
	IssueCount int         `json:"issue_count"`
	Entity     []JSONEntry `json:"repent"`
	Tag        []JSONEntry `json:"reptag"`
	Structural []JSONEntry `json:"checksgm"`
}

// JSONOutput is the JSON structure written for a batch.
type JSONOutput struct {
	Files        []JSONFile `json:"files"`
	FilesScanned int        `json:"files_scanned"`
	TotalIssues  int        `json:"total_issues"`
}

func toEntries(diags []Diagnostic) []JSONEntry {
	out := make([]JSONEntry, 0, len(diags))
	for _, d := range diags {
		out = append(out, JSONEntry{CheckID: d.CheckID, Line: d.Line, Column: d.Column, Message: d.Message})
	}
	return out
}

func (r *Report) jsonFile(name string) JSONFile {
	c := r.Classify()
	return JSONFile{
		File:       name,
		Clean:      r.IsClean(),
		IssueCount: c.Total(),
		Entity:     toEntries(c.Entity),
		Tag:        toEntries(c.Tag),
		Structural: toEntries(c.Structural),
	}
}

// WriteJSON writes the report for a single document in JSON format to w.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r.jsonFile(""))
}

// WriteJSON writes the reports of a batch in JSON format to w.
func WriteJSON(w io.Writer, files []File) error {
	out := JSONOutput{Files: make([]JSONFile, 0, len(files))}
	for _, f := range files {
		jf := f.Report.jsonFile(f.Name)
		out.Files = append(out.Files, jf)
		out.TotalIssues += jf.IssueCount
	}
	out.FilesScanned = len(files)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
