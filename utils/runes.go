package utils

func ReverseRunes(s string) []rune {
	runes := []rune(s)
	for i, j := 0, len(runes)-1; i < j; i, j = i+1, j-1 {
		runes[i], runes[j] = runes[j], runes[i]
	}
	return runes
}

func IsWhiteSpace(ch rune) bool {
	return ch == ' ' || ch == '\t' || ch == '\r'
}

// IsBlank reports whether the line contains only spaces, tabs and carriage returns.
func IsBlank(line string) bool {
	for _, ch := range line {
		if !IsWhiteSpace(ch) {
			return false
		}
	}
	return true
}
