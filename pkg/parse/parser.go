// Package parse builds an element tree from fully normalized, sanitized and
// resolved content with a strict, non-recovering XML parser.
package parse

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/adammathes/fntverify/pkg/entity"
	"github.com/adammathes/fntverify/pkg/report"
)

var xmlBuiltins = map[string]bool{"amp": true, "lt": true, "gt": true, "quot": true, "apos": true}

// Parse wraps content in a synthetic root and parses it. On success it
// returns the tree and no diagnostics. On failure it returns a nil tree and
// the parser's errors, deduplicated by position and categorized by message.
// Positions are 1-indexed in content's own coordinates.
func Parse(content string) (*Tree, []report.Diagnostic) {
	open, close := "<"+RootName+">", "</"+RootName+">"
	wrapped := open + escapeForXML(content) + close
	p := &parser{
		dec: xml.NewDecoder(strings.NewReader(wrapped)),
		idx: newLineIndex(wrapped, len(open)),
	}
	p.dec.Strict = true
	// Content is already UTF-8; a stale encoding declaration must not fail the parse.
	p.dec.CharsetReader = func(_ string, r io.Reader) (io.Reader, error) { return r, nil }

	tree, err := p.run()
	if err == nil {
		return tree, nil
	}
	return nil, p.errs.diagnostics()
}

type parser struct {
	dec   *xml.Decoder
	idx   *lineIndex
	stack []*Node
	errs  collector
}

func (p *parser) run() (*Tree, error) {
	var tree *Tree
	for {
		off := p.dec.InputOffset()
		tok, err := p.dec.RawToken()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.syntaxError(err)
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			line, col := p.idx.position(off)
			name := qualified(t.Name)
			if tree == nil {
				root := &Node{Name: name}
				tree = &Tree{Root: root}
				p.stack = append(p.stack, root)
				continue
			}
			if len(p.stack) == 0 {
				return nil, p.afterRoot(line, col)
			}
			parent := p.stack[len(p.stack)-1]
			n := &Node{Name: name, Line: line, Column: col, Parent: parent}
			parent.Children = append(parent.Children, n)
			p.stack = append(p.stack, n)
		case xml.EndElement:
			if err := p.closeElement(qualified(t.Name), off); err != nil {
				return nil, err
			}
		}
	}
	if tree == nil || len(p.stack) != 0 {
		line, col := p.idx.position(p.dec.InputOffset())
		p.errs.add(line, col, "unexpected end of document")
		return nil, errors.New("unexpected end of document")
	}
	return tree, nil
}

// closeElement pops the open element matching name, failing on the first
// mismatch like any strict parser would.
func (p *parser) closeElement(name string, off int64) error {
	line, col := p.idx.position(off)
	if len(p.stack) == 0 {
		return p.afterRoot(line, col)
	}
	top := p.stack[len(p.stack)-1]
	if top.Name == name {
		top.EndLine, top.EndColumn = line, col
		p.stack = p.stack[:len(p.stack)-1]
		return nil
	}

	var msg string
	switch {
	case name == RootName:
		line, col = top.Line, top.Column
		msg = fmt.Sprintf("tag mismatch: element <%s> is never closed", top.Name)
	case top.IsRoot():
		msg = fmt.Sprintf("tag mismatch: closing tag </%s> has no matching start tag", name)
	default:
		msg = fmt.Sprintf("tag mismatch: misnested tag </%s>, expected </%s>", name, top.Name)
	}
	p.errs.add(line, col, msg)
	return errors.New(msg)
}

// afterRoot reports markup following a premature close of the synthetic
// root, which the content can do by spelling out its end tag.
func (p *parser) afterRoot(line, col int) error {
	const msg = "content after document root"
	p.errs.add(line, col, msg)
	return errors.New(msg)
}

func (p *parser) syntaxError(err error) {
	line, col := p.idx.position(p.dec.InputOffset())
	var se *xml.SyntaxError
	if !errors.As(err, &se) {
		p.errs.add(0, 0, "unexpected error: "+err.Error())
		return
	}
	if se.Line != line {
		line, col = se.Line, 0
	}
	p.errs.add(line, col, se.Msg)
}

func qualified(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// escapeForXML escapes every & that does not begin a numeric reference or
// an XML built-in entity. After sanitizing and resolving, the only such
// ampersands left are the dialect's accepted idioms and entities unknown to
// the resolver; both are the Checker's business, not the parser's.
func escapeForXML(content string) string {
	if !strings.Contains(content, "&") {
		return content
	}
	var b strings.Builder
	b.Grow(len(content) + 16)
	last := 0
	for i := 0; i < len(content); i++ {
		if content[i] != '&' {
			continue
		}
		if n := entity.TokenLen(content[i:]); n > 0 {
			name, named := entity.NamedAt(content[i:])
			if !named || xmlBuiltins[name] {
				continue
			}
		}
		b.WriteString(content[last:i])
		b.WriteString("&amp;")
		last = i + 1
	}
	b.WriteString(content[last:])
	return b.String()
}

// collector gathers parser diagnostics, keeping the first per position.
type collector struct {
	seen  map[[2]int]bool
	diags []report.Diagnostic
}

func (c *collector) add(line, col int, msg string) {
	if c.seen == nil {
		c.seen = make(map[[2]int]bool)
	}
	key := [2]int{line, col}
	if c.seen[key] {
		return
	}
	c.seen[key] = true
	c.diags = append(c.diags, report.Diagnostic{
		Category: report.CategoryFromMessage(msg),
		CheckID:  report.CheckSyntax,
		Line:     line,
		Column:   col,
		Message:  msg,
	})
}

func (c *collector) diagnostics() []report.Diagnostic {
	return c.diags
}

// lineIndex maps byte offsets in the wrapped text back to 1-indexed line
// and character column in the unwrapped content.
type lineIndex struct {
	text   string
	starts []int
	shift  int
}

func newLineIndex(text string, shift int) *lineIndex {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &lineIndex{text: text, starts: starts, shift: shift}
}

func (x *lineIndex) position(off int64) (line, col int) {
	o := int(off)
	if o > len(x.text) {
		o = len(x.text)
	}
	line = sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > o })
	col = utf8.RuneCountInString(x.text[x.starts[line-1]:o]) + 1
	if line == 1 {
		col -= x.shift
	}
	if col < 1 {
		col = 1
	}
	return line, col
}
