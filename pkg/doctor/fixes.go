package doctor

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adammathes/fntverify/pkg/entity"
	"github.com/adammathes/fntverify/pkg/report"
)

// Fix describes a single repair applied to the document.
type Fix struct {
	CheckID     string
	Description string
	Line        int
	Column      int
}

var strayReplacements = map[string]struct {
	char        byte
	replacement string
}{
	report.CheckUnescapedAmp: {'&', "&amp;"},
	report.CheckUnescapedLT:  {'<', "&lt;"},
	report.CheckUnescapedGT:  {'>', "&gt;"},
}

// edit replaces n bytes at byte offset off of a line.
type edit struct {
	off  int
	n    int
	with string
	fix  Fix
}

// edits holds pending replacements by 1-indexed line. Every offset refers
// to the unmodified line.
type edits map[int][]edit

// fixStrayCharacters escapes every &, < and > the entity checker flagged.
// Fixes ENT-002, ENT-003 and ENT-004.
func fixStrayCharacters(lines []string, r *report.Report, pending edits) {
	for _, d := range r.Diagnostics {
		rep, ok := strayReplacements[d.CheckID]
		if !ok {
			continue
		}
		line, ok := lineAt(lines, d.Line)
		if !ok {
			continue
		}
		off := byteOffset(line, d.Column)
		if off < 0 || off >= len(line) || line[off] != rep.char {
			continue
		}
		pending[d.Line] = append(pending[d.Line], edit{off: off, n: 1, with: rep.replacement, fix: Fix{
			CheckID:     d.CheckID,
			Description: fmt.Sprintf("escaped '%c' as '%s'", rep.char, rep.replacement),
			Line:        d.Line,
			Column:      d.Column,
		}})
	}
}

// fixKnownEntities rewrites flagged entities that have a code point in the
// resolver table to numeric references, which are always accepted.
// Fixes ENT-001.
func fixKnownEntities(lines []string, r *report.Report, pending edits) {
	for _, d := range r.Diagnostics {
		if d.CheckID != report.CheckInvalidEntity {
			continue
		}
		line, ok := lineAt(lines, d.Line)
		if !ok {
			continue
		}
		off := byteOffset(line, d.Column)
		if off < 0 || off >= len(line) {
			continue
		}
		name, ok := entity.NamedAt(line[off:])
		if !ok {
			continue
		}
		cp, ok := entity.CodePoint(name)
		if !ok {
			continue
		}
		ref := fmt.Sprintf("&#%d;", cp)
		pending[d.Line] = append(pending[d.Line], edit{off: off, n: len(name) + 2, with: ref, fix: Fix{
			CheckID:     d.CheckID,
			Description: fmt.Sprintf("replaced '&%s;' with '%s'", name, ref),
			Line:        d.Line,
			Column:      d.Column,
		}})
	}
}

// apply rewrites lines in place, right to left within each line so
// earlier offsets stay valid. Overlapping edits keep the leftmost one.
// Applied fixes are returned in document order.
func (pending edits) apply(lines []string) []Fix {
	lineNums := make([]int, 0, len(pending))
	for n := range pending {
		lineNums = append(lineNums, n)
	}
	sort.Ints(lineNums)

	var fixes []Fix
	for _, n := range lineNums {
		es := pending[n]
		sort.Slice(es, func(i, j int) bool { return es[i].off < es[j].off })
		kept := es[:0]
		end := 0
		for _, e := range es {
			if e.off < end {
				continue
			}
			kept = append(kept, e)
			end = e.off + e.n
		}
		line := lines[n-1]
		for i := len(kept) - 1; i >= 0; i-- {
			e := kept[i]
			line = line[:e.off] + e.with + line[e.off+e.n:]
		}
		lines[n-1] = line
		for _, e := range kept {
			fixes = append(fixes, e.fix)
		}
	}
	return fixes
}

func lineAt(lines []string, n int) (string, bool) {
	if n < 1 || n > len(lines) {
		return "", false
	}
	return lines[n-1], true
}

// byteOffset converts a 1-indexed character column to a byte offset.
func byteOffset(line string, col int) int {
	if col < 1 {
		return -1
	}
	off := 0
	for c := 1; c < col; c++ {
		if off >= len(line) {
			return -1
		}
		_, size := utf8.DecodeRuneInString(line[off:])
		off += size
	}
	return off
}

// joinLines restores the original line ending and final newline.
func joinLines(lines []string, original string) string {
	sep := "\n"
	if strings.Contains(original, "\r\n") {
		sep = "\r\n"
	}
	text := strings.Join(lines, sep)
	if strings.HasSuffix(original, "\n") {
		text += sep
	}
	return text
}
