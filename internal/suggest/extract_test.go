package suggest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
)

func keywordsOf(suggestions []Suggestion) []string {
	out := make([]string, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, s.Keyword)
	}

	return out
}

func TestExtractSuggestions(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{
			name: "fenced json block with object entries",
			content: "Here you go:\n```json\n{\"keywords\": [" +
				"{\"keyword\": \"cooking\", \"relevanceTier\": \"High\", \"description\": \"core topic\"}," +
				"{\"keyword\": \"recipes\", \"relevanceTier\": \"Medium\"}]}\n```",
			want: []string{"cooking", "recipes"},
		},
		{
			name:    "bare json object",
			content: `{"keywords": [{"keyword": "vlogs"}, {"keyword": "travel"}]}`,
			want:    []string{"vlogs", "travel"},
		},
		{
			name:    "plain string entries",
			content: `{"keywords": ["gaming", "retro"]}`,
			want:    []string{"gaming", "retro"},
		},
		{
			name:    "object embedded in prose",
			content: `Sure! The result is {"keywords": [{"keyword": "gaming"}]} as requested.`,
			want:    []string{"gaming"},
		},
		{
			name: "second object in prose carries the keywords",
			content: `I considered {"topic": "cooking"} first, ` +
				`but settled on {"keywords": [{"keyword": "recipes"}]} instead.`,
			want: []string{"recipes"},
		},
		{
			name:    "braces inside string values",
			content: `{"keywords": [{"keyword": "emotes", "description": "channels about {faces}"}]}`,
			want:    []string{"emotes"},
		},
		{
			name:    "keywords field inside broken json",
			content: `{"keywords": [{"keyword": "music"}, {"keyword": "guitar"}], "note": "unterminated`,
			want:    []string{"music", "guitar"},
		},
		{
			name:    "trims and drops empty entries",
			content: `{"keywords": [" cooking ", "", "baking"]}`,
			want:    []string{"cooking", "baking"},
		},
		{
			name:    "caps at five keywords",
			content: `{"keywords": ["a1", "b2", "c3", "d4", "e5", "f6", "g7"]}`,
			want:    []string{"a1", "b2", "c3", "d4", "e5"},
		},
		{
			name:    "no json at all",
			content: "I could not produce keywords for that.",
			wantErr: true,
		},
		{
			name:    "empty keyword list",
			content: `{"keywords": []}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractSuggestions(tt.content)
			if tt.wantErr {
				require.ErrorIs(t, err, apperrors.ErrGenerationParse)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, keywordsOf(got))
		})
	}
}

func TestExtractSuggestionsKeepsTierAndDescription(t *testing.T) {
	got, err := ExtractSuggestions(`{"keywords": [{"keyword": "cooking", "relevanceTier": "High", "description": "core topic"}]}`)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "High", got[0].RelevanceTier)
	require.Equal(t, "core topic", got[0].Description)
}

func TestMockClientGenerateKeywords(t *testing.T) {
	client := newMockClient()

	got, err := client.GenerateKeywords(context.Background(), "cooking", []ChannelSample{
		{Title: "Cooking with Maria", SubscriberCount: 1000},
		{Title: "Easy Vegan Recipes", SubscriberCount: 2000},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"with", "maria", "easy", "vegan", "recipes"}, keywordsOf(got))
	require.Equal(t, mockRelevanceTier, got[0].RelevanceTier)
}
