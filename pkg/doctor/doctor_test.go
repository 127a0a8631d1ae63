package doctor

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/adammathes/fntverify/pkg/report"
	"github.com/adammathes/fntverify/pkg/validate"
)

func newValidator(t *testing.T) *validate.Validator {
	t.Helper()
	v, err := validate.New(nil, validate.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return v
}

// createDoc writes text to a temp document and returns its path.
func createDoc(t *testing.T, text string, mode os.FileMode) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chapter.fnt")
	if err := os.WriteFile(path, []byte(text), mode); err != nil {
		t.Fatal(err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRepairStrayCharacters(t *testing.T) {
	input := createDoc(t, "<p>Q&A 1 < 2 and 3 > 2</p>\n", 0644)

	res, err := Repair(newValidator(t), input, "")
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != input+".fixed" {
		t.Errorf("output = %q, want %q", res.Output, input+".fixed")
	}
	if res.BeforeReport.IsClean() {
		t.Fatal("expected issues before repair")
	}
	if !res.AfterReport.IsClean() {
		t.Errorf("expected clean after repair, got %v", res.AfterReport.Diagnostics)
	}

	want := []Fix{
		{CheckID: report.CheckUnescapedAmp, Line: 1, Column: 5},
		{CheckID: report.CheckUnescapedLT, Line: 1, Column: 10},
		{CheckID: report.CheckUnescapedGT, Line: 1, Column: 20},
	}
	if len(res.Fixes) != len(want) {
		t.Fatalf("got %d fixes, want %d: %v", len(res.Fixes), len(want), res.Fixes)
	}
	for i, fix := range res.Fixes {
		if fix.CheckID != want[i].CheckID || fix.Line != want[i].Line || fix.Column != want[i].Column {
			t.Errorf("fix %d = %+v, want %+v", i, fix, want[i])
		}
		if fix.Description == "" {
			t.Errorf("fix %d has no description", i)
		}
	}

	got := readFile(t, res.Output)
	if got != "<p>Q&amp;A 1 &lt; 2 and 3 &gt; 2</p>\n" {
		t.Errorf("repaired text = %q", got)
	}
	if readFile(t, input) != "<p>Q&A 1 < 2 and 3 > 2</p>\n" {
		t.Error("input was modified")
	}
}

func TestRepairKnownEntities(t *testing.T) {
	input := createDoc(t, "<p>caf&eacute; &bogus; &mdash;</p>\n", 0644)

	res, err := Repair(newValidator(t), input, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fixes) != 1 || res.Fixes[0].CheckID != report.CheckInvalidEntity {
		t.Fatalf("fixes = %+v, want one %s", res.Fixes, report.CheckInvalidEntity)
	}
	if !strings.Contains(res.Fixes[0].Description, "&#233;") {
		t.Errorf("description = %q", res.Fixes[0].Description)
	}

	got := readFile(t, res.Output)
	if got != "<p>caf&#233; &bogus; &mdash;</p>\n" {
		t.Errorf("repaired text = %q", got)
	}
	// &bogus; has no code point and needs an author.
	if n := res.AfterReport.CountCheck(report.CheckInvalidEntity); n != 1 {
		t.Errorf("after: %d invalid entities, want 1", n)
	}
}

func TestRepairCleanDocument(t *testing.T) {
	input := createDoc(t, "<p>Nothing to do &mdash; at all.</p>\n", 0644)

	res, err := Repair(newValidator(t), input, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fixes) != 0 || res.Output != "" {
		t.Errorf("expected no fixes and no output, got %+v", res)
	}
	if _, err := os.Stat(input + ".fixed"); !os.IsNotExist(err) {
		t.Error("a clean document must not produce a .fixed file")
	}
}

func TestRepairTagDefectsUntouched(t *testing.T) {
	input := createDoc(t, "<p><blink>x</blink></p>\n", 0644)

	res, err := Repair(newValidator(t), input, "")
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Fixes) != 0 {
		t.Errorf("expected no fixes, got %+v", res.Fixes)
	}
	if res.AfterReport.CountCheck(report.CheckUnknownTag) != 1 {
		t.Error("unknown tag should still be reported")
	}
}

func TestRepairExplicitOutputKeepsFormat(t *testing.T) {
	input := createDoc(t, "<p>A&B</p>\r\n<p>ok</p>\r\n", 0600)
	output := filepath.Join(t.TempDir(), "out.fnt")

	res, err := Repair(newValidator(t), input, output)
	if err != nil {
		t.Fatal(err)
	}
	if res.Output != output {
		t.Errorf("output = %q, want %q", res.Output, output)
	}
	if got := readFile(t, output); got != "<p>A&amp;B</p>\r\n<p>ok</p>\r\n" {
		t.Errorf("repaired text = %q", got)
	}
	if runtime.GOOS != "windows" {
		info, err := os.Stat(output)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("mode = %v, want 0600", info.Mode().Perm())
		}
	}
}

func TestRepairMissingInput(t *testing.T) {
	_, err := Repair(newValidator(t), filepath.Join(t.TempDir(), "missing.fnt"), "")
	if err == nil {
		t.Fatal("expected error for missing input")
	}
}

func TestApplyDropsOverlaps(t *testing.T) {
	lines := []string{"&eacute;&", "keep"}
	pending := edits{
		1: {
			{off: 8, n: 1, with: "&amp;", fix: Fix{Column: 9}},
			{off: 0, n: 8, with: "&#233;", fix: Fix{Column: 1}},
			{off: 3, n: 1, with: "X", fix: Fix{Column: 4}},
		},
	}
	fixes := pending.apply(lines)
	if len(fixes) != 2 {
		t.Fatalf("got %d fixes, want 2: %+v", len(fixes), fixes)
	}
	if fixes[0].Column != 1 || fixes[1].Column != 9 {
		t.Errorf("fixes out of order: %+v", fixes)
	}
	if lines[0] != "&#233;&amp;" || lines[1] != "keep" {
		t.Errorf("lines = %q", lines)
	}
}

func TestByteOffset(t *testing.T) {
	tests := []struct {
		line string
		col  int
		want int
	}{
		{"abc", 1, 0},
		{"abc", 3, 2},
		{"é&", 2, 2},
		{"ab", 5, -1},
		{"ab", 0, -1},
	}
	for _, tt := range tests {
		if got := byteOffset(tt.line, tt.col); got != tt.want {
			t.Errorf("byteOffset(%q, %d) = %d, want %d", tt.line, tt.col, got, tt.want)
		}
	}
}

func TestJoinLines(t *testing.T) {
	lines := []string{"a", "b"}
	tests := []struct {
		original string
		want     string
	}{
		{"x\ny", "a\nb"},
		{"x\ny\n", "a\nb\n"},
		{"x\r\ny\r\n", "a\r\nb\r\n"},
	}
	for _, tt := range tests {
		if got := joinLines(lines, tt.original); got != tt.want {
			t.Errorf("joinLines(%q) = %q, want %q", tt.original, got, tt.want)
		}
	}
}
