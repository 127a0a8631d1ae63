// Package normalize rewrites the dialect's non-XML constructs into
// well-formed markup. Every transform here works one line at a time and
// never adds or removes a newline, so line numbers in the output match the
// raw document exactly.
package normalize

import (
	"regexp"
	"sort"
	"strings"
)

// Default dialect constructs.
var (
	DefaultPageMarker       = "Page"
	DefaultFootnotePrefixes = []string{"fnr", "fnt", "fmt"}
)

// Normalizer rewrites page markers and footnote shorthand tags.
type Normalizer struct {
	pageMarker string
	page       *regexp.Regexp
	footnote   *regexp.Regexp
}

// New builds a Normalizer for the given page marker tag name (e.g. "Page"
// in <Page 12>) and footnote shorthand prefixes (e.g. "fnr" in <fnr3>).
// Empty arguments select the defaults.
func New(pageMarker string, prefixes []string) *Normalizer {
	if pageMarker == "" {
		pageMarker = DefaultPageMarker
	}
	if len(prefixes) == 0 {
		prefixes = DefaultFootnotePrefixes
	}

	quoted := make([]string, 0, len(prefixes))
	for _, p := range prefixes {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	// Longest first so a prefix never shadows a longer one in the alternation.
	sort.Slice(quoted, func(i, j int) bool { return len(quoted[i]) > len(quoted[j]) })

	n := &Normalizer{
		pageMarker: pageMarker,
		page:       regexp.MustCompile(`(?i)<\s*` + regexp.QuoteMeta(pageMarker) + `\s+\d+\s*>`),
	}
	if len(quoted) > 0 {
		n.footnote = regexp.MustCompile(`(?i)<\s*((?:` + strings.Join(quoted, "|") +
			`)(?:\*|\d+)?)(?:\s[^<>]*)?>`)
	}
	return n
}

// Normalize rewrites text line by line. <Page 12> becomes <Page/>, and
// footnote shorthand such as <FNR3 id="x"> or <fnt*> becomes the lower-cased
// self-closing <fnr3/> or <fnt/>. The wildcard marker is dropped since it is
// not a legal name character.
func (n *Normalizer) Normalize(text string) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = n.NormalizeLine(line)
	}
	return strings.Join(lines, "\n")
}

// NormalizeLine applies both rewrites to a single line.
func (n *Normalizer) NormalizeLine(line string) string {
	if !strings.Contains(line, "<") {
		return line
	}
	line = n.page.ReplaceAllLiteralString(line, "<"+n.pageMarker+"/>")
	if n.footnote == nil {
		return line
	}
	return n.footnote.ReplaceAllStringFunc(line, func(m string) string {
		name := n.footnote.FindStringSubmatch(m)[1]
		return "<" + strings.ToLower(strings.TrimSuffix(name, "*")) + "/>"
	})
}
