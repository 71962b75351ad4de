package search

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	minKeywordLength = 3
	maxKeywords      = 5
)

var nonWordRunes = regexp.MustCompile(`[^\wáéíóúüñ]`)

// stopWords are common Spanish and English words excluded from keyword
// extraction.
var stopWords = map[string]struct{}{
	// Spanish
	"el": {}, "la": {}, "los": {}, "las": {}, "un": {}, "una": {}, "unos": {}, "unas": {},
	"y": {}, "o": {}, "pero": {}, "porque": {}, "que": {}, "de": {}, "en": {}, "a": {},
	"con": {}, "por": {}, "para": {}, "como": {}, "se": {}, "su": {}, "sus": {}, "mi": {},
	"mis": {}, "tu": {}, "tus": {}, "es": {}, "son": {}, "al": {}, "del": {}, "lo": {},
	"he": {}, "ha": {}, "han": {}, "este": {}, "esta": {}, "estos": {}, "estas": {},
	"ese": {}, "esa": {}, "esos": {}, "esas": {},
	// English
	"the": {}, "of": {}, "and": {}, "to": {}, "in": {}, "is": {}, "it": {}, "you": {},
	"that": {}, "was": {}, "for": {}, "on": {}, "are": {}, "with": {}, "as": {}, "at": {},
	"be": {}, "this": {}, "have": {}, "from": {}, "or": {}, "had": {}, "by": {}, "not": {},
	"but": {}, "what": {}, "all": {}, "were": {}, "when": {}, "we": {}, "there": {},
	"can": {}, "an": {}, "your": {}, "which": {}, "their": {}, "if": {}, "will": {},
	"one": {}, "about": {}, "how": {}, "up": {}, "them": {},
}

// ExtractKeywords derives up to five search keywords from a channel's title
// and description: lower-case, tokenize on whitespace, strip non-word runes,
// drop short and stop words, then rank by frequency. Ties keep
// first-occurrence order so the result is deterministic.
func ExtractKeywords(title, description string) []string {
	text := strings.ToLower(title + " " + description)
	tokens := strings.Fields(text)

	counts := make(map[string]int)
	order := make([]string, 0, len(tokens))

	for _, token := range tokens {
		word := nonWordRunes.ReplaceAllString(token, "")

		// Rune count, not byte length: accented Spanish tokens like "día"
		// are three characters but more bytes.
		if utf8.RuneCountInString(word) <= minKeywordLength {
			continue
		}

		if _, ok := stopWords[word]; ok {
			continue
		}

		if counts[word] == 0 {
			order = append(order, word)
		}

		counts[word]++
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})

	if len(order) > maxKeywords {
		order = order[:maxKeywords]
	}

	return order
}
