// Package trends detects emergent trending topics: it clusters
// co-occurring significant terms across a content batch and compares
// cluster frequencies against a historical baseline.
package trends

import (
	"strings"
	"unicode"
)

// DefaultMinTermLength is the minimum length of a significant term.
const DefaultMinTermLength = 3

// defaultStopwords are discarded during term extraction. The list covers
// common English function words plus the filler terms that dominate news
// and abstract boilerplate.
var defaultStopwords = []string{
	"the", "and", "for", "are", "but", "not", "you", "all", "any", "can",
	"had", "her", "was", "one", "our", "out", "day", "get", "has", "him",
	"his", "how", "man", "new", "now", "old", "see", "two", "way", "who",
	"boy", "did", "its", "let", "put", "say", "she", "too", "use", "that",
	"with", "have", "this", "will", "your", "from", "they", "know", "want",
	"been", "good", "much", "some", "time", "very", "when", "come", "here",
	"just", "like", "long", "make", "many", "more", "only", "over", "such",
	"take", "than", "them", "well", "were", "what", "about", "after",
	"again", "before", "being", "between", "both", "could", "does", "down",
	"during", "each", "further", "into", "itself", "most", "other", "same",
	"should", "their", "there", "these", "those", "through", "under",
	"until", "where", "which", "while", "would", "also", "said", "says",
	"study", "found", "recent", "researchers",
}

// Tokenizer extracts significant terms from item text: lowercase,
// punctuation stripped, stopwords and short terms discarded.
type Tokenizer struct {
	minLen    int
	stopwords map[string]struct{}
}

// NewTokenizer creates a tokenizer. minLen <= 0 selects the default
// minimum term length; extraStopwords extend the built-in list.
func NewTokenizer(minLen int, extraStopwords []string) *Tokenizer {
	if minLen <= 0 {
		minLen = DefaultMinTermLength
	}

	stop := make(map[string]struct{}, len(defaultStopwords)+len(extraStopwords))
	for _, w := range defaultStopwords {
		stop[w] = struct{}{}
	}
	for _, w := range extraStopwords {
		stop[strings.ToLower(w)] = struct{}{}
	}

	return &Tokenizer{minLen: minLen, stopwords: stop}
}

// Terms returns the significant terms of text in order of appearance,
// with repeats preserved so callers can count frequencies.
func (t *Tokenizer) Terms(text string) []string {
	normalized := normalizeText(text)

	var terms []string
	for _, word := range strings.Fields(normalized) {
		if len(word) < t.minLen {
			continue
		}
		if _, ok := t.stopwords[word]; ok {
			continue
		}
		terms = append(terms, word)
	}
	return terms
}

// UniqueTerms returns the set of significant terms of text.
func (t *Tokenizer) UniqueTerms(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, term := range t.Terms(text) {
		set[term] = struct{}{}
	}
	return set
}

// normalizeText lowercases and replaces every non-alphanumeric rune with
// a space, preserving word boundaries.
func normalizeText(text string) string {
	text = strings.ToLower(text)

	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteByte(' ')
		}
	}
	return result.String()
}
