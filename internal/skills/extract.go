package skills

import (
	"fmt"
	"strings"
)

// MatchMode selects how a term is located in text.
type MatchMode string

const (
	// MatchSubstring reports a term when it appears anywhere in the text,
	// including inside a longer word: "Java" is found in "JavaScript".
	// This favors recall and is the default.
	MatchSubstring MatchMode = "substring"
	// MatchWord reports a term only when its tokens appear as whole,
	// consecutive tokens of the text. Trailing '+' and '#' are part of a
	// token, so "C++" does not report "C".
	MatchWord MatchMode = "word"
)

// ParseMatchMode parses a mode name. The empty string selects MatchSubstring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchWord:
		return MatchWord, nil
	default:
		return "", fmt.Errorf("unknown match mode %q (want %q or %q)", s, MatchSubstring, MatchWord)
	}
}

// pattern holds the precomputed spellings of one canonical term.
type pattern struct {
	canonical string
	// lowercased name and aliases
	literals []string
	// normalized token sequences of name and aliases
	tokens [][]string
	// wordTokens sequences of name and aliases, used by MatchWord
	words [][]string
}

// Extractor finds vocabulary terms in text. It is immutable and safe for concurrent use.
type Extractor struct {
	vocab    *Vocabulary
	mode     MatchMode
	patterns []pattern
}

// NewExtractor precomputes match patterns for every term of v.
func NewExtractor(v *Vocabulary, mode MatchMode) *Extractor {
	if mode == "" {
		mode = MatchSubstring
	}
	e := &Extractor{vocab: v, mode: mode}
	if v == nil {
		return e
	}

	e.patterns = make([]pattern, 0, len(v.terms))
	for _, t := range v.terms {
		p := pattern{canonical: t.Name}
		for _, spelling := range append([]string{t.Name}, t.Aliases...) {
			p.literals = append(p.literals, strings.ToLower(spelling))
			if toks := Normalize(spelling); len(toks) > 0 {
				p.tokens = append(p.tokens, toks)
			}
			if words := wordTokens(spelling); len(words) > 0 {
				p.words = append(p.words, words)
			}
		}
		e.patterns = append(e.patterns, p)
	}
	return e
}

// Vocabulary returns the vocabulary the extractor was built from.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocab
}

// Mode returns the extractor's match mode.
func (e *Extractor) Mode() MatchMode {
	return e.mode
}

// Extract returns the canonical names of all terms mentioned in text.
// It never fails; empty text or an empty vocabulary yields an empty set.
func (e *Extractor) Extract(text string) Set {
	found := make(Set)
	if strings.TrimSpace(text) == "" || len(e.patterns) == 0 {
		return found
	}

	if e.mode == MatchWord {
		words := wordTokens(text)
		for _, p := range e.patterns {
			for _, seq := range p.words {
				if containsSequence(words, seq) {
					found.Add(p.canonical)
					break
				}
			}
		}
		return found
	}

	lower := strings.ToLower(text)
	joined := strings.Join(Normalize(text), " ")
	for _, p := range e.patterns {
		if p.matchesSubstring(lower, joined) {
			found.Add(p.canonical)
		}
	}
	return found
}

// matchesSubstring applies the containment policy. A spelling that spans
// several tokens ("node.js", "spring boot") is also looked up in the token
// stream so punctuation and hyphen variants ("Node JS", "spring-boot") match.
func (p pattern) matchesSubstring(lower, joined string) bool {
	for _, lit := range p.literals {
		if strings.Contains(lower, lit) {
			return true
		}
	}
	for _, seq := range p.tokens {
		if len(seq) > 1 && strings.Contains(joined, strings.Join(seq, " ")) {
			return true
		}
	}
	return false
}

// containsSequence reports whether seq occurs as consecutive elements of tokens.
func containsSequence(tokens, seq []string) bool {
	if len(seq) == 0 || len(seq) > len(tokens) {
		return false
	}
outer:
	for i := 0; i+len(seq) <= len(tokens); i++ {
		for j := range seq {
			if tokens[i+j] != seq[j] {
				continue outer
			}
		}
		return true
	}
	return false
}

// Extract finds the terms of v in text using substring matching.
func Extract(text string, v *Vocabulary) Set {
	return NewExtractor(v, MatchSubstring).Extract(text)
}
