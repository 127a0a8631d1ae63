package entity

// TokenLen returns the byte length of the entity reference that starts at
// s[0], or 0 if s does not start with one. Recognized forms are &name;
// (ASCII letters and digits), &#NNN; and &#xHEX;.
func TokenLen(s string) int {
	if len(s) < 3 || s[0] != '&' {
		return 0
	}
	i := 1
	if s[1] == '#' {
		i = 2
		isDigit := isDecimal
		if i < len(s) && (s[i] == 'x' || s[i] == 'X') {
			i++
			isDigit = isHex
		}
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		if i == start || i >= len(s) || s[i] != ';' {
			return 0
		}
		return i + 1
	}
	for i < len(s) && isAlnum(s[i]) {
		i++
	}
	if i == 1 || i >= len(s) || s[i] != ';' {
		return 0
	}
	return i + 1
}

// NamedAt returns the name of the named entity reference starting at s[0].
// Numeric references are not named.
func NamedAt(s string) (string, bool) {
	n := TokenLen(s)
	if n == 0 || s[1] == '#' {
		return "", false
	}
	return s[1 : n-1], true
}

func isDecimal(b byte) bool { return b >= '0' && b <= '9' }

func isHex(b byte) bool {
	return isDecimal(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func isAlnum(b byte) bool {
	return isDecimal(b) || (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}
