package suggest

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

const (
	defaultModel = openai.GPT4oMini
	defaultRPS   = 1
	limiterBurst = 1

	promptHeader = "You analyze YouTube channels found for the search keyword %q. " +
		"Based on the channels below, propose up to 5 new search keywords that would " +
		"find similar channels. Answer with JSON only, in the form " +
		"{\"keywords\": [{\"keyword\": \"...\", \"relevanceTier\": \"High|Medium|Low\", " +
		"\"description\": \"why, under 100 chars\"}]}.\n\n"
)

type openaiClient struct {
	client  *openai.Client
	model   string
	limiter *rate.Limiter
	logger  *zerolog.Logger
}

func newOpenAIClient(cfg Config, logger *zerolog.Logger) *openaiClient {
	model := cfg.Model
	if model == "" {
		model = defaultModel
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = defaultRPS
	}

	return &openaiClient{
		client:  openai.NewClient(cfg.APIKey),
		model:   model,
		limiter: rate.NewLimiter(rate.Limit(rps), limiterBurst),
		logger:  logger,
	}
}

func (c *openaiClient) GenerateKeywords(ctx context.Context, sourceKeyword string, samples []ChannelSample) ([]Suggestion, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("suggestion rate limiter: %w", err)
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: buildPrompt(sourceKeyword, samples),
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	content := resp.Choices[0].Message.Content
	c.logger.Debug().Str("content", content).Msg("suggestion response")

	return ExtractSuggestions(content)
}

func buildPrompt(sourceKeyword string, samples []ChannelSample) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(promptHeader, sourceKeyword))

	if len(samples) > maxSampleChannels {
		samples = samples[:maxSampleChannels]
	}

	for i, sample := range samples {
		sb.WriteString(fmt.Sprintf("[%d] %s (%d subscribers): %s\n",
			i+1, sample.Title, sample.SubscriberCount, truncate(sample.Description, maxDescriptionLength)))
	}

	return sb.String()
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	runes := []rune(s)

	return string(runes[:max]) + "..."
}
