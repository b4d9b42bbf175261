package scoring

import (
	"fmt"
	"strings"
	"unicode"
)

// TokenMode selects how much of a document survives normalisation.
type TokenMode string

const (
	// TokenModeFull keeps every word that is not a stop word.
	TokenModeFull TokenMode = "full"
	// TokenModeFocused keeps only lexicon terms, repeating them by weight.
	TokenModeFocused TokenMode = "focused"
)

// ParseTokenMode accepts "full" or "focused"; empty means full.
func ParseTokenMode(s string) (TokenMode, error) {
	switch TokenMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", TokenModeFull:
		return TokenModeFull, nil
	case TokenModeFocused:
		return TokenModeFocused, nil
	}
	return "", fmt.Errorf("scoring: unknown token mode %q", s)
}

// Tokenizer turns free text and keyword phrases into normalised tokens.
// Multi-word phrases are split into their words, so "machine learning" and a
// posting mentioning "machine learning" share the tokens "machine" and
// "learning". The same rules apply to candidates and jobs. A Tokenizer is
// safe for concurrent use.
type Tokenizer struct {
	mode TokenMode
}

func NewTokenizer(mode TokenMode) *Tokenizer {
	if mode == "" {
		mode = TokenModeFull
	}
	return &Tokenizer{mode: mode}
}

func (t *Tokenizer) Mode() TokenMode { return t.mode }

// Normalize tokenizes free text. Empty input yields an empty slice.
func (t *Tokenizer) Normalize(text string) []string {
	if strings.TrimSpace(text) == "" {
		return []string{}
	}
	out := make([]string, 0, len(text)/6)
	var word strings.Builder
	flush := func() {
		if word.Len() == 0 {
			return
		}
		out = t.emit(out, word.String())
		word.Reset()
	}
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '+' || r == '#' || r == '.' {
			word.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()
	return out
}

// NormalizeKeywords tokenizes each phrase and concatenates the results.
func (t *Tokenizer) NormalizeKeywords(phrases []string) []string {
	out := []string{}
	for _, p := range phrases {
		out = append(out, t.Normalize(p)...)
	}
	return out
}

func (t *Tokenizer) emit(out []string, raw string) []string {
	term, ok := canonical(raw)
	if !ok {
		return out
	}
	if t.mode != TokenModeFocused {
		return append(out, term)
	}
	for i := lexiconWeight(term); i > 0; i-- {
		out = append(out, term)
	}
	return out
}

// canonical resolves aliases and drops stop words and punctuation-only runs.
func canonical(raw string) (string, bool) {
	if alias, ok := aliases[raw]; ok {
		return alias, true
	}
	term := strings.Trim(raw, ".")
	if alias, ok := aliases[term]; ok {
		return alias, true
	}
	if term == "" || strings.Trim(term, "+#") == "" {
		return "", false
	}
	if _, stop := stopWords[term]; stop {
		return "", false
	}
	return term, true
}
