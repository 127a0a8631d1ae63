package entity

import (
	"strconv"
	"strings"
)

// Resolve replaces every named entity reference found in the table with a
// numeric character reference. Unknown names are left untouched; deciding
// whether an entity is allowed is the Checker's job, not the Resolver's.
// Only the reference itself is rewritten, so line count is preserved.
func Resolve(text string) string {
	if !strings.Contains(text, "&") {
		return text
	}
	var b strings.Builder
	b.Grow(len(text))
	for i := 0; i < len(text); {
		j := strings.IndexByte(text[i:], '&')
		if j < 0 {
			b.WriteString(text[i:])
			break
		}
		b.WriteString(text[i : i+j])
		i += j
		n := TokenLen(text[i:])
		if n == 0 {
			b.WriteByte('&')
			i++
			continue
		}
		if name, ok := NamedAt(text[i:]); ok {
			if cp, ok := numeric[name]; ok {
				b.WriteString("&#")
				b.WriteString(strconv.Itoa(cp))
				b.WriteByte(';')
				i += n
				continue
			}
		}
		b.WriteString(text[i : i+n])
		i += n
	}
	return b.String()
}
