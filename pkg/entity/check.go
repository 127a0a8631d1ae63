package entity

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/adammathes/fntverify/pkg/document"
	"github.com/adammathes/fntverify/pkg/report"
)

// Checker detects invalid named entities and stray &, < and > in raw,
// untransformed document text.
type Checker struct {
	allowed map[string]bool
}

// NewChecker returns a Checker accepting the default allowed entities plus
// the given custom names.
func NewChecker(custom []string) *Checker {
	allowed := make(map[string]bool, len(defaultAllowed)+len(custom))
	for name := range defaultAllowed {
		allowed[name] = true
	}
	for _, name := range custom {
		name = strings.Trim(strings.TrimSpace(name), "&;")
		if name != "" {
			allowed[name] = true
		}
	}
	return &Checker{allowed: allowed}
}

// Allowed reports whether name may appear as &name; in a document.
func (c *Checker) Allowed(name string) bool {
	return c.allowed[name]
}

// Check scans every raw line of doc. Columns are 1-indexed characters
// within the raw line.
func (c *Checker) Check(doc *document.Document) []report.Diagnostic {
	var diags []report.Diagnostic
	var st scanState
	for n, line := range doc.Lines() {
		diags = append(diags, c.checkLine(line, n+1, &st)...)
	}
	return diags
}

func (c *Checker) checkLine(line string, lineNum int, st *scanState) []report.Diagnostic {
	var diags []report.Diagnostic
	add := func(checkID string, i int, msg string) {
		diags = append(diags, report.Diagnostic{
			Category: report.EntityError,
			CheckID:  checkID,
			Line:     lineNum,
			Column:   column(line, i),
			Message:  msg,
		})
	}

	for i := strings.IndexByte(line, '&'); i >= 0; i = nextByte(line, '&', i) {
		if name, ok := NamedAt(line[i:]); ok && !c.allowed[name] {
			add(report.CheckInvalidEntity, i, fmt.Sprintf("Invalid entity '&%s;'", name))
		}
	}

	for i := strings.IndexByte(line, '&'); i >= 0; i = nextByte(line, '&', i) {
		if TokenLen(line[i:]) > 0 || spacedAmpersand(line, i) {
			continue
		}
		add(report.CheckUnescapedAmp, i, "Unescaped '&' found; use '&amp;'")
	}

	st.scan(line, func(i int, ch byte) {
		if ch == '<' {
			add(report.CheckUnescapedLT, i, "Unescaped '<' found; use '&lt;'")
		} else {
			add(report.CheckUnescapedGT, i, "Unescaped '>' found; use '&gt;'")
		}
	})
	return diags
}

// spacedAmpersand reports whether the & at i is the "A & B" citation idiom
// or opens the line followed by a space.
func spacedAmpersand(line string, i int) bool {
	if i+1 >= len(line) || line[i+1] != ' ' {
		return false
	}
	return i == 0 || line[i-1] == ' '
}

func nextByte(s string, b byte, after int) int {
	j := strings.IndexByte(s[after+1:], b)
	if j < 0 {
		return -1
	}
	return after + 1 + j
}

func column(line string, i int) int {
	return utf8.RuneCountInString(line[:i]) + 1
}

// scanState carries an unterminated tag, comment or CDATA section from one
// line into the next. quote is the open attribute quote inside a tag.
type scanState struct {
	inTag     bool
	quote     byte
	inComment bool
	inCDATA   bool
}

const cdataOpen = "<![CDATA["

// scan reports every < that does not open a tag-like construct and every >
// that does not close one.
func (st *scanState) scan(line string, stray func(i int, ch byte)) {
	i := 0
	for i < len(line) {
		switch {
		case st.inComment:
			k := strings.Index(line[i:], "-->")
			if k < 0 {
				return
			}
			i += k + 3
			st.inComment = false
		case st.inCDATA:
			k := strings.Index(line[i:], "]]>")
			if k < 0 {
				return
			}
			i += k + 3
			st.inCDATA = false
		case st.inTag:
			k := st.tagEnd(line[i:])
			if k < 0 {
				return
			}
			st.inTag = false
			if line[i+k] == '<' {
				i += k
				continue
			}
			i += k + 1
		case line[i] == '<':
			switch {
			case strings.HasPrefix(line[i:], "<!--"):
				st.inComment = true
				i += 4
				continue
			case strings.HasPrefix(line[i:], cdataOpen):
				st.inCDATA = true
				i += len(cdataOpen)
				continue
			case !opensTag(line[i+1:]):
				stray(i, '<')
				i++
				continue
			}
			st.inTag = true
			k := st.tagEnd(line[i+1:])
			if k < 0 {
				return
			}
			st.inTag = false
			if line[i+1+k] == '<' {
				stray(i, '<')
				i += 1 + k
				continue
			}
			i += k + 2
		case line[i] == '>':
			stray(i, '>')
			i++
		default:
			k := strings.IndexAny(line[i:], "<>")
			if k < 0 {
				return
			}
			i += k
		}
	}
}

// tagEnd returns the index in s of the > closing the current tag, or of a <
// that interrupts it, skipping quoted attribute values. It returns -1 when
// the tag continues past s, leaving any open quote in st.
func (st *scanState) tagEnd(s string) int {
	for j := 0; j < len(s); j++ {
		c := s[j]
		switch {
		case st.quote != 0:
			if c == st.quote {
				st.quote = 0
			}
		case (c == '"' || c == '\'') && attrValueStart(s[:j]):
			st.quote = c
		case c == '<' || c == '>':
			return j
		}
	}
	return -1
}

// attrValueStart reports whether a quote following prefix opens an
// attribute value, that is whether prefix ends in = and optional spaces.
func attrValueStart(prefix string) bool {
	prefix = strings.TrimRight(prefix, " \t")
	return strings.HasSuffix(prefix, "=")
}

// spacedMarker matches the text after < of a marker written with leading
// whitespace, such as "< Page 12>" or "< fnr3>".
var spacedMarker = regexp.MustCompile(`^[ \t]+[A-Za-z_][A-Za-z0-9_.:-]*(?:[ \t]+\d+)?[ \t]*>`)

// opensTag reports whether the text following a < looks like the start of
// an element, end tag, processing instruction or declaration.
func opensTag(s string) bool {
	if s == "" {
		return false
	}
	switch s[0] {
	case '/', '!':
		return len(s) > 1 && isNameStart(s[1])
	case '?':
		return true
	case ' ', '\t':
		return spacedMarker.MatchString(s)
	}
	return isNameStart(s[0])
}

func isNameStart(b byte) bool {
	return b == '_' || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
