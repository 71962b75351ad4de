// Package suggest generates follow-up search keywords from a result set with
// an LLM. The model sees a small sample of the found channels and the keyword
// that produced them, and answers with a JSON keyword list.
package suggest

import (
	"context"

	"github.com/rs/zerolog"
)

const (
	maxSampleChannels    = 10
	maxDescriptionLength = 200

	apiKeyMock = "mock"
)

// ChannelSample is the slice of a found channel the model gets to see.
type ChannelSample struct {
	Title           string
	Description     string
	SubscriberCount int64
}

// Client generates search keyword suggestions.
type Client interface {
	GenerateKeywords(ctx context.Context, sourceKeyword string, samples []ChannelSample) ([]Suggestion, error)
}

// Config configures the suggestion client.
type Config struct {
	APIKey string
	Model  string
	RPS    float64
}

// New returns an OpenAI-backed client, or a mock when no API key is
// configured so the rest of the pipeline works without credentials.
func New(cfg Config, logger *zerolog.Logger) Client {
	if cfg.APIKey == "" || cfg.APIKey == apiKeyMock {
		logger.Info().Msg("no LLM API key configured, using mock keyword suggestions")

		return newMockClient()
	}

	return newOpenAIClient(cfg, logger)
}
