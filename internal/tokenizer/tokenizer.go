// Package tokenizer turns free text into the token sets used for indexing
// and querying: whole words plus fixed-width character n-grams.
package tokenizer

import (
	"strings"
	"unicode"

	"github.com/utafrali/catalogsearch/internal/domain"
)

// DefaultN is the n-gram width used for documents and queries.
const DefaultN = 3

// Set is an unordered collection of distinct tokens.
type Set map[string]struct{}

// Add inserts a token.
func (s Set) Add(token string) { s[token] = struct{}{} }

// Has reports whether the token is present.
func (s Set) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Normalize lowercases text, turns every rune that is not a letter or digit
// into a space, and collapses whitespace runs. Normalize(Normalize(x)) == Normalize(x).
func Normalize(text string) string {
	mapped := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)
	return strings.Join(strings.Fields(mapped), " ")
}

// Tokenize returns the words of the normalized text and every n-rune window
// of its space-free form. Text whose space-free form is shorter than n yields
// words only. A non-positive n means DefaultN.
func Tokenize(text string, n int) Set {
	if n <= 0 {
		n = DefaultN
	}

	tokens := make(Set)
	words := strings.Fields(Normalize(text))
	for _, w := range words {
		tokens.Add(w)
	}

	compact := []rune(strings.Join(words, ""))
	for i := 0; i+n <= len(compact); i++ {
		tokens.Add(string(compact[i : i+n]))
	}
	return tokens
}

// DocumentTokens tokenizes every searchable field of doc.
func DocumentTokens(doc *domain.IndexedDocument) Set {
	return Tokenize(doc.SearchableText(), DefaultN)
}
