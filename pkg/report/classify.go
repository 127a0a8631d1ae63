package report

import "strings"

// Keyword lists used to bucket freeform parser messages. Entity keywords
// win over tag keywords.
var (
	entityKeywords = []string{
		"entity reference",
		"character entity",
		"unescaped",
		"no name",
		"ampersand",
		"less-than",
		"greater-than",
		"semicolon",
	}
	tagKeywords = []string{
		"tag mismatch",
		"misnested",
		"start tag",
	}
)

// CategoryFromMessage buckets a third-party parser message by inspecting
// its text. Diagnostics produced by this module's own validators carry an
// explicit category and never go through here.
func CategoryFromMessage(msg string) Category {
	lower := strings.ToLower(msg)
	for _, kw := range entityKeywords {
		if strings.Contains(lower, kw) {
			return EntityError
		}
	}
	for _, kw := range tagKeywords {
		if strings.Contains(lower, kw) {
			return TagError
		}
	}
	return StructuralError
}

// Classified holds diagnostics partitioned into the three reporting
// buckets, each in discovery order.
type Classified struct {
	Entity     []Diagnostic `json:"entity"`
	Tag        []Diagnostic `json:"tag"`
	Structural []Diagnostic `json:"structural"`
}

// Bucket returns the diagnostics for cat.
func (c Classified) Bucket(cat Category) []Diagnostic {
	switch cat {
	case EntityError:
		return c.Entity
	case TagError:
		return c.Tag
	case StructuralError:
		return c.Structural
	}
	return nil
}

// Total returns the number of classified diagnostics.
func (c Classified) Total() int {
	return len(c.Entity) + len(c.Tag) + len(c.Structural)
}

// Classify assigns every diagnostic to exactly one bucket. Explicit
// categories are kept; uncategorized entries are bucketed by message text.
// No deduplication happens across sources.
func Classify(diags []Diagnostic) Classified {
	var c Classified
	for _, d := range diags {
		if d.Category == Uncategorized {
			d.Category = CategoryFromMessage(d.Message)
		}
		switch d.Category {
		case EntityError:
			c.Entity = append(c.Entity, d)
		case TagError:
			c.Tag = append(c.Tag, d)
		default:
			c.Structural = append(c.Structural, d)
		}
	}
	return c
}

// Classify partitions the report's diagnostics into buckets.
func (r *Report) Classify() Classified {
	return Classify(r.Diagnostics)
}
