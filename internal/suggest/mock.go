package suggest

import (
	"context"
	"strings"
)

const mockRelevanceTier = "Medium"

// mockClient derives suggestions from the sample titles without any network
// call. Used when no API key is configured and in tests.
type mockClient struct{}

func newMockClient() *mockClient {
	return &mockClient{}
}

func (c *mockClient) GenerateKeywords(_ context.Context, sourceKeyword string, samples []ChannelSample) ([]Suggestion, error) {
	seen := map[string]struct{}{strings.ToLower(sourceKeyword): {}}
	suggestions := make([]Suggestion, 0, maxSuggestions)

	for _, sample := range samples {
		for _, word := range strings.Fields(strings.ToLower(sample.Title)) {
			if len(word) <= 3 {
				continue
			}

			if _, ok := seen[word]; ok {
				continue
			}

			seen[word] = struct{}{}
			suggestions = append(suggestions, Suggestion{
				Keyword:       word,
				RelevanceTier: mockRelevanceTier,
				Description:   "taken from the title of " + sample.Title,
			})

			if len(suggestions) == maxSuggestions {
				return suggestions, nil
			}
		}
	}

	return suggestions, nil
}
