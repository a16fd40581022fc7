package skills

import (
	"strings"
	"unicode"
)

// Normalize lowercases text and splits it into alphanumeric tokens.
// Any rune that is not a letter or digit is a separator, so "Node.js" yields
// ["node", "js"]. Blank input yields an empty sequence.
func Normalize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), isSeparator)
}

func isSeparator(r rune) bool {
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// normalizeTerm returns the single-space joined token form of a term.
func normalizeTerm(term string) string {
	return strings.Join(Normalize(term), " ")
}

// isSuffixSymbol reports runes that belong to a skill name when they trail a
// word, as in "C++" and "C#".
func isSuffixSymbol(r rune) bool {
	return r == '+' || r == '#'
}

// wordTokens is Normalize for word matching. A run of '+' or '#' that ends a
// word stays attached to it, so "C", "C++" and "C#" are distinct tokens. A run
// followed by a letter or digit ("a+b") still separates.
func wordTokens(text string) []string {
	runes := []rune(strings.ToLower(text))
	var tokens []string
	var current []rune
	flush := func() {
		if len(current) > 0 {
			tokens = append(tokens, string(current))
			current = current[:0]
		}
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			current = append(current, r)
		case isSuffixSymbol(r) && len(current) > 0:
			j := i
			for j < len(runes) && isSuffixSymbol(runes[j]) {
				j++
			}
			if j == len(runes) || isSeparator(runes[j]) {
				current = append(current, runes[i:j]...)
			}
			flush()
			i = j - 1
		default:
			flush()
		}
	}
	flush()
	return tokens
}
