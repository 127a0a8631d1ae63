package normalize

import (
	"strings"

	"github.com/adammathes/fntverify/pkg/entity"
)

// SanitizeAmpersands escapes every & that is not safe to hand to an XML
// parser. An & is left alone when it:
//   - begins an entity reference (&name;, &#NNN;, &#xHEX;)
//   - has a space on both sides (the "A & B" citation idiom)
//   - opens a line and is followed by a space
//   - is followed by closing punctuation , . ; : )
//
// Everything else becomes &amp;. Applying the function to its own output
// changes nothing.
func SanitizeAmpersands(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text) + 16)
	last := 0
	for i := 0; i < len(text); i++ {
		if text[i] != '&' || safeAmpersand(text, i) {
			continue
		}
		b.WriteString(text[last:i])
		b.WriteString("&amp;")
		last = i + 1
	}
	b.WriteString(text[last:])
	return b.String()
}

func safeAmpersand(text string, i int) bool {
	if entity.TokenLen(text[i:]) > 0 {
		return true
	}
	var before, after byte
	if i > 0 {
		before = text[i-1]
	}
	if i+1 < len(text) {
		after = text[i+1]
	}
	switch {
	case before == ' ' && after == ' ':
		return true
	case (i == 0 || before == '\n') && after == ' ':
		return true
	}
	return strings.IndexByte(",.;:)", after) >= 0
}
