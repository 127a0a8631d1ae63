package tags

import "strings"

// Rule constrains the immediate parent of a tag. An empty field means no
// constraint. A top-level element's parent is "".
type Rule struct {
	RequiredParent  string `mapstructure:"required_parent" yaml:"required_parent,omitempty" json:"required_parent,omitempty"`
	ForbiddenParent string `mapstructure:"forbidden_parent" yaml:"forbidden_parent,omitempty" json:"forbidden_parent,omitempty"`
}

// Rules maps tag names to their parent constraints. Lookups ignore case so
// keys lower-cased by a config loader still apply.
type Rules map[string]Rule

// For returns the rule for tag name, if any.
func (r Rules) For(name string) (Rule, bool) {
	if rule, ok := r[name]; ok {
		return rule, true
	}
	for k, rule := range r {
		if strings.EqualFold(k, name) {
			return rule, true
		}
	}
	return Rule{}, false
}
