package importer

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// fold lower-cases s and strips diacritics so "Tâche" and "tache" compare equal
func fold(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if isASCII(s) {
		return s
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return folded
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// hasWordPrefix reports whether one of the keywords starts a word of s
func hasWordPrefix(s string, keywords []string) bool {
	for _, k := range keywords {
		for from := 0; from+len(k) <= len(s); {
			i := strings.Index(s[from:], k)
			if i < 0 {
				break
			}
			i += from
			if i == 0 || !isWordRune(lastRune(s[:i])) {
				return true
			}
			from = i + 1
		}
	}
	return false
}

func lastRune(s string) rune {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
