package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport() *Report {
	r := NewReport()
	r.Add(Diagnostic{Line: 3, Column: 7, Message: "tag mismatch: misnested tag </a>, expected </b>"})
	r.AddAt(EntityError, CheckUnescapedAmp, 1, 4, "Unescaped '&' found; use '&amp;'")
	r.Add(Diagnostic{Line: 9, Column: 1, Message: "unexpected EOF"})
	r.AddAt(TagError, CheckUnknownTag, 2, 1, "Unknown tag <blink>")
	return r
}

func TestCategoryFromMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want Category
	}{
		{"invalid character entity &foo;", EntityError},
		{"unescaped & in text", EntityError},
		{"expected semicolon after entity", EntityError},
		{"Tag mismatch: misnested tag </a>, expected </b>", TagError},
		{"element <b> closed by </a>: misnested", TagError},
		{"unexpected end element, no start tag", TagError},
		{"unexpected EOF", StructuralError},
		{"", StructuralError},
		// Entity keywords win when both appear.
		{"tag mismatch near unescaped ampersand", EntityError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CategoryFromMessage(tt.msg), tt.msg)
	}
}

func TestClassifyKeepsExplicitCategoryAndOrder(t *testing.T) {
	c := sampleReport().Classify()

	require.Len(t, c.Entity, 1)
	require.Len(t, c.Tag, 2)
	require.Len(t, c.Structural, 1)
	assert.Equal(t, 4, c.Total())

	// Discovery order within a bucket.
	assert.Equal(t, 3, c.Tag[0].Line)
	assert.Equal(t, CheckUnknownTag, c.Tag[1].CheckID)
	assert.Equal(t, TagError, c.Tag[0].Category)
	assert.Equal(t, "unexpected EOF", c.Structural[0].Message)
}

func TestClassifyExplicitCategoryBypassesHeuristic(t *testing.T) {
	// The message would classify as entity-class by keyword.
	d := Diagnostic{Category: StructuralError, Message: "unescaped ampersand in file name"}
	c := Classify([]Diagnostic{d})
	assert.Len(t, c.Structural, 1)
	assert.Empty(t, c.Entity)
}

func TestReportCounts(t *testing.T) {
	r := sampleReport()
	assert.Equal(t, 4, r.Count())
	assert.Equal(t, 2, r.CountOf(TagError))
	assert.Equal(t, 1, r.CountCheck(CheckUnknownTag))
	assert.False(t, r.IsClean())
	assert.True(t, NewReport().IsClean())
}

func TestDiagnosticString(t *testing.T) {
	d := Diagnostic{Category: EntityError, CheckID: CheckInvalidEntity, Line: 2, Column: 5, Message: "Invalid entity '&foo;'"}
	assert.Equal(t, "REPENT(ENT-001) line 2, col 5: Invalid entity '&foo;'", d.String())

	var err error = Diagnostic{Line: 1, Column: 1, Message: "unexpected EOF"}
	assert.Equal(t, "CHECKSGM line 1, col 1: unexpected EOF", err.Error())
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	sampleReport().WriteText(&buf)
	out := buf.String()

	assert.Contains(t, out, "REPENT(ENT-002) line 1, col 4")
	assert.Contains(t, out, "REPTAG line 3, col 7: tag mismatch")
	assert.Contains(t, out, "Check finished. Entity: 1, Tag: 2, Structural: 1")
	// Entity bucket is printed before tag bucket.
	assert.Less(t, strings.Index(out, "REPENT"), strings.Index(out, "REPTAG"))

	buf.Reset()
	NewReport().WriteText(&buf)
	assert.Equal(t, "No issues found.\n", buf.String())
}

func TestWriteJSONBatch(t *testing.T) {
	files := []File{
		{Name: "a.fnt", Report: sampleReport()},
		{Name: "b.fnt", Report: NewReport()},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, files))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, 2, out.FilesScanned)
	assert.Equal(t, 4, out.TotalIssues)
	require.Len(t, out.Files, 2)
	assert.False(t, out.Files[0].Clean)
	assert.Len(t, out.Files[0].Tag, 2)
	assert.True(t, out.Files[1].Clean)
	assert.NotNil(t, out.Files[1].Entity)
}

func TestWriteCheckstyle(t *testing.T) {
	files := []File{{Name: "a.fnt", Report: sampleReport()}}
	var buf bytes.Buffer
	require.NoError(t, WriteCheckstyle(&buf, files))

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(buf.Bytes()))
	root := doc.SelectElement("checkstyle")
	require.NotNil(t, root)
	file := root.SelectElement("file")
	require.NotNil(t, file)
	assert.Equal(t, "a.fnt", file.SelectAttrValue("name", ""))

	errs := file.SelectElements("error")
	require.Len(t, errs, 4)
	assert.Equal(t, "fntverify.repent.ENT-002", errs[0].SelectAttrValue("source", ""))
	assert.Equal(t, "4", errs[0].SelectAttrValue("column", ""))
	assert.Equal(t, "fntverify.checksgm", errs[3].SelectAttrValue("source", ""))
}

func TestWritePretty(t *testing.T) {
	files := []File{
		{Name: "a.fnt", Report: sampleReport(), Lines: []string{"  AT&T rules  ", "<blink>", "x", "", "", "", "", "", ""}},
		{Name: "b.fnt", Report: NewReport()},
	}
	var buf bytes.Buffer
	WritePretty(&buf, files, PrettyOptions{Context: true})
	out := buf.String()

	assert.Contains(t, out, "VALIDATION REPORT")
	assert.Contains(t, out, "✘ a.fnt: 4 ISSUES FOUND")
	assert.Contains(t, out, "✔ b.fnt: CLEAN - No issues found")
	assert.Contains(t, out, "══ REPENT ERRORS (1) ══")
	assert.Contains(t, out, "══ REPTAG ERRORS (2) ══")
	assert.Contains(t, out, "  Line    1, Col   4 │ Unescaped '&' found")
	assert.Contains(t, out, "Context: 'AT&T rules'")
	assert.Contains(t, out, "SUMMARY: 2 files scanned, 4 total issues")
	assert.NotContains(t, out, "\x1b[", "colors must be off")
}

func TestWritePrettyTruncatesContext(t *testing.T) {
	r := NewReport()
	r.AddAt(EntityError, CheckUnescapedGT, 1, 1, "Unescaped '>' found; use '&gt;'")
	files := []File{{Name: "long.fnt", Report: r, Lines: []string{strings.Repeat("x", 50)}}}

	var buf bytes.Buffer
	WritePretty(&buf, files, PrettyOptions{Context: true, ContextWidth: 10})
	assert.Contains(t, buf.String(), "Context: 'xxxxxxx...'")
}
