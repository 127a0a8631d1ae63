// Package tags checks a parsed element tree against a tag vocabulary,
// nesting discipline and parent/child rules.
package tags

import (
	"fmt"

	"github.com/adammathes/fntverify/pkg/parse"
	"github.com/adammathes/fntverify/pkg/report"
)

// Validator runs the unknown-tag, nesting and relationship passes. It holds
// no per-document state and is safe for concurrent use.
type Validator struct {
	allowed    map[string]bool
	nonClosing PatternSet
	rules      Rules
}

// NewValidator builds a Validator. An empty allowed list disables the
// unknown-tag pass.
func NewValidator(allowed []string, nonClosing PatternSet, rules Rules) *Validator {
	set := make(map[string]bool, len(allowed))
	for _, name := range allowed {
		set[name] = true
	}
	return &Validator{allowed: set, nonClosing: nonClosing, rules: rules}
}

// Validate runs all three passes over tree, in order. A nil tree yields no
// diagnostics.
func (v *Validator) Validate(tree *parse.Tree) []report.Diagnostic {
	if tree == nil {
		return nil
	}
	events := tree.Events()
	var diags []report.Diagnostic
	diags = append(diags, v.checkUnknown(events)...)
	diags = append(diags, v.checkNesting(events)...)
	diags = append(diags, v.checkRelationships(tree)...)
	return diags
}

func (v *Validator) checkUnknown(events []parse.Event) []report.Diagnostic {
	if len(v.allowed) == 0 {
		return nil
	}
	var diags []report.Diagnostic
	for _, e := range events {
		if e.Kind != parse.Start || v.allowed[e.Node.Name] || v.nonClosing.Match(e.Node.Name) {
			continue
		}
		diags = append(diags, tagError(report.CheckUnknownTag, e,
			fmt.Sprintf("Unknown tag <%s>", e.Node.Name)))
	}
	return diags
}

// checkNesting replays the event stream against its own stack of open
// tags. Non-closing tags are never pushed, and an end event for one only
// removes it if it happens to be open. A mismatched end tag is reported
// without popping, so the expected tag stays open for later events.
func (v *Validator) checkNesting(events []parse.Event) []report.Diagnostic {
	var diags []report.Diagnostic
	var stack []string
	for _, e := range events {
		name := e.Node.Name
		nonClosing := v.nonClosing.Match(name)
		if e.Kind == parse.Start {
			if !nonClosing {
				stack = append(stack, name)
			}
			continue
		}
		if nonClosing {
			stack = removeLast(stack, name)
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1] != name {
			expected := "(none)"
			if len(stack) > 0 {
				expected = "</" + stack[len(stack)-1] + ">"
			}
			diags = append(diags, tagError(report.CheckMisnestedTag, e,
				fmt.Sprintf("Misnested tag </%s>, expected %s", name, expected)))
			continue
		}
		stack = stack[:len(stack)-1]
	}
	return diags
}

func (v *Validator) checkRelationships(tree *parse.Tree) []report.Diagnostic {
	if len(v.rules) == 0 {
		return nil
	}
	var diags []report.Diagnostic
	for _, n := range tree.Nodes() {
		rule, ok := v.rules.For(n.Name)
		if !ok {
			continue
		}
		parent := n.ParentName()
		start := parse.Event{Kind: parse.Start, Node: n}
		if rule.RequiredParent != "" && parent != rule.RequiredParent {
			diags = append(diags, tagError(report.CheckRequiredParent, start,
				fmt.Sprintf("<%s> must be inside <%s>", n.Name, rule.RequiredParent)))
		}
		if rule.ForbiddenParent != "" && parent == rule.ForbiddenParent {
			diags = append(diags, tagError(report.CheckForbiddenParent, start,
				fmt.Sprintf("<%s> must not be inside <%s>", n.Name, rule.ForbiddenParent)))
		}
	}
	return diags
}

func tagError(checkID string, e parse.Event, msg string) report.Diagnostic {
	return report.Diagnostic{
		Category: report.TagError,
		CheckID:  checkID,
		Line:     e.Line(),
		Column:   e.Column(),
		Message:  msg,
	}
}

func removeLast(stack []string, name string) []string {
	for i := len(stack) - 1; i >= 0; i-- {
		if stack[i] == name {
			return append(stack[:i], stack[i+1:]...)
		}
	}
	return stack
}
