package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatternMatch(t *testing.T) {
	tests := []struct {
		pattern string
		tag     string
		want    bool
	}{
		{"fnr*", "fnr", true},
		{"fnr*", "fnr12", true},
		{"fnr*", "FNRx", true},
		{"fnr*", "fn", false},
		{"fnt3", "fnt3", true},
		{"fnt3", "fnt42", true},
		{"fnt3", "fnt", false},
		{"fnt3", "fntx", false},
		{"Page", "page", true},
		{"Page", "Pages", false},
		{"br", "br", true},
		{"br", "b", false},
		{"x.y", "x.y", true},
		{"x.y", "xzy", false},
	}
	for _, tt := range tests {
		p, err := ParsePattern(tt.pattern)
		require.NoError(t, err, tt.pattern)
		assert.Equal(t, tt.want, p.Match(tt.tag), "%s vs %s", tt.pattern, tt.tag)
	}
}

func TestParsePatternErrors(t *testing.T) {
	for _, bad := range []string{"", "   ", "*", "fn*r", "1abc", "a b", "<p>"} {
		_, err := ParsePattern(bad)
		assert.Error(t, err, "%q", bad)
	}

	p, err := ParsePattern("  fnr*  ")
	require.NoError(t, err)
	assert.Equal(t, "fnr*", p.String())
}

func TestZeroPatternMatchesNothing(t *testing.T) {
	var p Pattern
	assert.False(t, p.Match("anything"))
}

func TestParsePatterns(t *testing.T) {
	set, err := ParsePatterns([]string{"Page", "fnr*", "br"})
	require.NoError(t, err)
	require.Len(t, set, 3)
	assert.True(t, set.Match("fnr7"))
	assert.True(t, set.Match("PAGE"))
	assert.False(t, set.Match("p"))

	_, err = ParsePatterns([]string{"ok", "not ok"})
	assert.ErrorContains(t, err, `"not ok"`)

	var empty PatternSet
	assert.False(t, empty.Match("br"))
}

func TestRulesFor(t *testing.T) {
	rules := Rules{
		"fnt": {RequiredParent: "FN"},
		"Img": {ForbiddenParent: "sup"},
	}

	r, ok := rules.For("fnt")
	require.True(t, ok)
	assert.Equal(t, "FN", r.RequiredParent)

	r, ok = rules.For("FNT")
	require.True(t, ok)
	assert.Equal(t, "FN", r.RequiredParent)

	r, ok = rules.For("img")
	require.True(t, ok)
	assert.Equal(t, "sup", r.ForbiddenParent)

	_, ok = rules.For("p")
	assert.False(t, ok)

	_, ok = Rules(nil).For("p")
	assert.False(t, ok)
}
