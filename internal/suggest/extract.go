package suggest

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
)

const maxSuggestions = 5

var (
	fencedJSONRe  = regexp.MustCompile("(?s)```json\\s*(.*?)```")
	keywordListRe = regexp.MustCompile(`(?s)"keywords"\s*:\s*(\[.*?\])`)
)

// Suggestion is one generated search keyword with the model's relevance
// assessment.
type Suggestion struct {
	Keyword       string `json:"keyword"`
	RelevanceTier string `json:"relevanceTier,omitempty"`
	Description   string `json:"description,omitempty"`
}

// UnmarshalJSON accepts both the object form and a bare string, because
// models regularly flatten the list to plain strings despite the prompt.
func (s *Suggestion) UnmarshalJSON(data []byte) error {
	var keyword string
	if err := json.Unmarshal(data, &keyword); err == nil {
		s.Keyword = keyword

		return nil
	}

	type suggestion Suggestion

	var full suggestion
	if err := json.Unmarshal(data, &full); err != nil {
		return err
	}

	*s = Suggestion(full)

	return nil
}

// ExtractSuggestions pulls the keyword list out of a model response. Models
// wrap JSON in markdown fences or prose more often than not, so extraction
// tries three forms in order: a fenced json block, each balanced object in
// the raw text, and finally a regex anchored on the "keywords" field.
func ExtractSuggestions(content string) ([]Suggestion, error) {
	if m := fencedJSONRe.FindStringSubmatch(content); m != nil {
		if suggestions, ok := parseSuggestionJSON(m[1]); ok {
			return suggestions, nil
		}
	}

	for start := strings.Index(content, "{"); start >= 0; {
		end := matchingBrace(content, start)
		if end < 0 {
			break
		}

		if suggestions, ok := parseSuggestionJSON(content[start : end+1]); ok {
			return suggestions, nil
		}

		next := strings.Index(content[end+1:], "{")
		if next < 0 {
			break
		}

		start = end + 1 + next
	}

	if m := keywordListRe.FindStringSubmatch(content); m != nil {
		var suggestions []Suggestion
		if err := json.Unmarshal([]byte(m[1]), &suggestions); err == nil {
			if cleaned := cleanSuggestions(suggestions); len(cleaned) > 0 {
				return cleaned, nil
			}
		}
	}

	return nil, fmt.Errorf("no keyword list in model response: %w", apperrors.ErrGenerationParse)
}

// matchingBrace returns the index of the brace closing the object opened at
// start, or -1 when the object never closes. Braces inside string literals
// do not count.
func matchingBrace(s string, start int) int {
	depth := 0
	inString := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if inString {
			switch c {
			case '\\':
				i++
			case '"':
				inString = false
			}

			continue
		}

		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}

	return -1
}

func parseSuggestionJSON(raw string) ([]Suggestion, bool) {
	var payload struct {
		Keywords []Suggestion `json:"keywords"`
	}

	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, false
	}

	cleaned := cleanSuggestions(payload.Keywords)
	if len(cleaned) == 0 {
		return nil, false
	}

	return cleaned, true
}

func cleanSuggestions(suggestions []Suggestion) []Suggestion {
	out := make([]Suggestion, 0, len(suggestions))

	for _, suggestion := range suggestions {
		suggestion.Keyword = strings.TrimSpace(suggestion.Keyword)
		if suggestion.Keyword == "" {
			continue
		}

		out = append(out, suggestion)

		if len(out) == maxSuggestions {
			break
		}
	}

	return out
}
