// Package skills recognizes canonical skill terms in free text.
//
// A Vocabulary is an immutable value. Callers build one (or take Default)
// and pass it to every extraction, so jobs screened with different
// vocabularies never share state.
package skills

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/candidate-screener/internal/schemas"
)

// Term is a canonical skill name with optional aliases that also count as a mention.
type Term struct {
	Name    string   `json:"name"`
	Aliases []string `json:"aliases,omitempty"`
}

// Vocabulary is the closed set of skill terms the screener can recognize.
type Vocabulary struct {
	terms []Term
	// lowercased name or alias -> canonical name
	lookup map[string]string
}

// defaultTerms mirrors the skill list job descriptions have always been parsed against.
var defaultTerms = []Term{
	{Name: "JavaScript"},
	{Name: "React", Aliases: []string{"reactjs"}},
	{Name: "Node.js", Aliases: []string{"nodejs"}},
	{Name: "Python"},
	{Name: "Java"},
	{Name: "SQL"},
	{Name: "AWS"},
	{Name: "Docker"},
	{Name: "TypeScript"},
	{Name: "Git"},
	{Name: "REST APIs", Aliases: []string{"restful"}},
	{Name: "MongoDB"},
	{Name: "PostgreSQL", Aliases: []string{"postgres"}},
	{Name: "Linux"},
	{Name: "Agile"},
	{Name: "Scrum"},
	{Name: "HTML"},
	{Name: "CSS"},
	{Name: "Angular"},
	{Name: "Vue.js", Aliases: []string{"vuejs"}},
	{Name: "Express"},
	{Name: "Spring Boot", Aliases: []string{"springboot"}},
}

// Default returns the built-in vocabulary.
func Default() *Vocabulary {
	v, err := NewVocabulary(defaultTerms)
	if err != nil {
		panic(fmt.Sprintf("default vocabulary is invalid: %v", err))
	}
	return v
}

// NewVocabulary validates and copies terms into a Vocabulary.
// Blank names and aliases are dropped. A name or alias that collides
// (case-insensitively) with an earlier one is an error, and so is one with no
// letters or digits or one whose word tokens equal another term's ("Node.js"
// and "node js"), since word matching could not tell them apart.
func NewVocabulary(terms []Term) (*Vocabulary, error) {
	v := &Vocabulary{
		terms:  make([]Term, 0, len(terms)),
		lookup: make(map[string]string, len(terms)),
	}
	// joined word tokens -> canonical name
	words := make(map[string]string, len(terms))
	claimWords := func(spelling, canonical string) error {
		toks := wordTokens(spelling)
		if len(toks) == 0 {
			return fmt.Errorf("skill term %q has no letters or digits", spelling)
		}
		key := strings.Join(toks, " ")
		if existing, ok := words[key]; ok && existing != canonical {
			return fmt.Errorf("skill term %q is indistinguishable from %q when matching words", spelling, existing)
		}
		words[key] = canonical
		return nil
	}

	for _, t := range terms {
		name := strings.TrimSpace(t.Name)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if existing, ok := v.lookup[key]; ok {
			return nil, fmt.Errorf("duplicate skill term %q (already defined by %q)", name, existing)
		}
		v.lookup[key] = name
		if err := claimWords(name, name); err != nil {
			return nil, err
		}

		term := Term{Name: name}
		for _, alias := range t.Aliases {
			alias = strings.TrimSpace(alias)
			if alias == "" {
				continue
			}
			aliasKey := strings.ToLower(alias)
			if existing, ok := v.lookup[aliasKey]; ok {
				return nil, fmt.Errorf("alias %q of %q collides with %q", alias, name, existing)
			}
			v.lookup[aliasKey] = name
			if err := claimWords(alias, name); err != nil {
				return nil, err
			}
			term.Aliases = append(term.Aliases, alias)
		}
		v.terms = append(v.terms, term)
	}

	return v, nil
}

// vocabularyFile is the on-disk JSON layout of a vocabulary.
type vocabularyFile struct {
	Terms []Term `json:"terms"`
}

// ParseVocabulary decodes a JSON vocabulary document after validating it against its schema.
func ParseVocabulary(data []byte) (*Vocabulary, error) {
	if err := schemas.Validate(schemas.Vocabulary, data); err != nil {
		return nil, err
	}

	var f vocabularyFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to unmarshal vocabulary JSON: %w", err)
	}
	return NewVocabulary(f.Terms)
}

// LoadVocabulary reads a vocabulary JSON file. An empty path returns Default.
func LoadVocabulary(path string) (*Vocabulary, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary file %s: %w", path, err)
	}

	v, err := ParseVocabulary(data)
	if err != nil {
		return nil, fmt.Errorf("invalid vocabulary file %s: %w", path, err)
	}
	return v, nil
}

// Terms returns a copy of the vocabulary's terms in definition order.
func (v *Vocabulary) Terms() []Term {
	if v == nil {
		return nil
	}
	out := make([]Term, len(v.terms))
	for i, t := range v.terms {
		out[i] = Term{Name: t.Name, Aliases: append([]string(nil), t.Aliases...)}
	}
	return out
}

// Names returns the canonical names in definition order.
func (v *Vocabulary) Names() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.terms))
	for i, t := range v.terms {
		out[i] = t.Name
	}
	return out
}

// Len returns the number of canonical terms.
func (v *Vocabulary) Len() int {
	if v == nil {
		return 0
	}
	return len(v.terms)
}

// Contains reports whether name is a canonical term (exact match).
func (v *Vocabulary) Contains(name string) bool {
	if v == nil {
		return false
	}
	canonical, ok := v.lookup[strings.ToLower(name)]
	return ok && canonical == name
}

// Canonical resolves a name or alias, case-insensitively, to its canonical term.
func (v *Vocabulary) Canonical(name string) (string, bool) {
	if v == nil {
		return "", false
	}
	canonical, ok := v.lookup[strings.ToLower(strings.TrimSpace(name))]
	return canonical, ok
}
