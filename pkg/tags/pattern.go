package tags

import (
	"fmt"
	"regexp"
	"strings"
)

var validPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_.:-]*\*?$`)

// Pattern matches tag names that never take a closing tag. Matching is
// case-insensitive. Three forms are accepted:
//
//	name*    any tag starting with name, including name itself
//	name3    name followed by one or more digits
//	name     exactly name
type Pattern struct {
	raw string
	re  *regexp.Regexp
}

// ParsePattern compiles a single pattern.
func ParsePattern(s string) (Pattern, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Pattern{}, fmt.Errorf("empty non-closing tag pattern")
	}
	if !validPattern.MatchString(s) {
		return Pattern{}, fmt.Errorf("invalid non-closing tag pattern %q", s)
	}

	var expr string
	switch base := strings.TrimRight(s, "0123456789"); {
	case strings.HasSuffix(s, "*"):
		expr = regexp.QuoteMeta(strings.TrimSuffix(s, "*")) + `.*`
	case base != s:
		expr = regexp.QuoteMeta(base) + `\d+`
	default:
		expr = regexp.QuoteMeta(s)
	}
	return Pattern{raw: s, re: regexp.MustCompile(`(?i)^` + expr + `$`)}, nil
}

// Match reports whether name is covered by the pattern.
func (p Pattern) Match(name string) bool {
	return p.re != nil && p.re.MatchString(name)
}

func (p Pattern) String() string { return p.raw }

// PatternSet is an ordered set of patterns.
type PatternSet []Pattern

// ParsePatterns compiles every pattern, failing on the first bad one.
func ParsePatterns(patterns []string) (PatternSet, error) {
	set := make(PatternSet, 0, len(patterns))
	for _, s := range patterns {
		p, err := ParsePattern(s)
		if err != nil {
			return nil, err
		}
		set = append(set, p)
	}
	return set, nil
}

// Match reports whether any pattern in the set covers name.
func (s PatternSet) Match(name string) bool {
	for _, p := range s {
		if p.Match(name) {
			return true
		}
	}
	return false
}
