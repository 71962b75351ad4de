package search

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const (
	defaultMaxResults        = 50
	defaultRelatedMaxResults = 20
	defaultMaxTargetCount    = 500
)

// HandleResolver resolves a @handle to a channel id.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (string, error)
}

// Service orchestrates the aggregation pipeline for keyword and
// related-channel searches.
type Service struct {
	aggregator *Aggregator
	details    *DetailEnricher
	activity   *ActivityEnricher
	resolver   HandleResolver
	maxTarget  int
	logger     *zerolog.Logger
}

// NewService wires the pipeline stages together. maxTarget caps the
// user-requested result count (0 uses the default of 500).
func NewService(aggregator *Aggregator, details *DetailEnricher, activity *ActivityEnricher, resolver HandleResolver, maxTarget int, logger *zerolog.Logger) *Service {
	if maxTarget <= 0 {
		maxTarget = defaultMaxTargetCount
	}

	return &Service{
		aggregator: aggregator,
		details:    details,
		activity:   activity,
		resolver:   resolver,
		maxTarget:  maxTarget,
		logger:     logger,
	}
}

// Search runs a keyword search: validate, aggregate pages, enrich details,
// optionally attach last-upload activity.
func (s *Service) Search(ctx context.Context, query Query) (*Result, error) {
	query, err := s.normalizeQuery(query)
	if err != nil {
		return nil, err
	}

	summaries, total, err := s.aggregator.FetchUpTo(ctx, query, query.MaxResults)
	if err != nil {
		return nil, err
	}

	if len(summaries) == 0 {
		return &Result{Channels: []youtube.Channel{}, TotalResults: 0, Query: query}, nil
	}

	channels, err := s.enrich(ctx, summaries, query.WithLastVideo)
	if err != nil {
		return nil, err
	}

	return &Result{Channels: channels, TotalResults: total, Query: query}, nil
}

// Related runs a related-channel search from a reference channel URL: parse
// the URL, resolve handles, extract keywords from the source channel's text,
// then search with the top keywords and drop the source channel itself.
func (s *Service) Related(ctx context.Context, channelURL string, maxResults int, withLastVideo bool) (*RelatedResult, error) {
	ref, err := ParseChannelURL(channelURL)
	if err != nil {
		return nil, err
	}

	channelID := ref.ID
	if channelID == "" {
		channelID, err = s.resolver.ResolveHandle(ctx, ref.Handle)
		if err != nil {
			return nil, err
		}
	}

	source, err := s.fetchSourceChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}

	keywords := ExtractKeywords(source.Title, source.Description)
	if len(keywords) == 0 {
		return nil, fmt.Errorf("%w: no keywords extractable from channel %s", apperrors.ErrInvalidInput, channelID)
	}

	original := SourceChannel{ID: channelID, Title: source.Title, Keywords: keywords}

	if maxResults <= 0 {
		maxResults = defaultRelatedMaxResults
	}

	summaries, _, err := s.aggregator.FetchUpTo(ctx, Query{Keyword: relatedQuery(keywords)}, maxResults)
	if err != nil {
		return nil, err
	}

	// The source channel usually ranks first for its own keywords.
	filtered := make([]youtube.Summary, 0, len(summaries))

	for _, summary := range summaries {
		if summary.ID != channelID {
			filtered = append(filtered, summary)
		}
	}

	if len(filtered) == 0 {
		return &RelatedResult{Channels: []youtube.Channel{}, OriginalChannel: original}, nil
	}

	channels, err := s.enrich(ctx, filtered, withLastVideo)
	if err != nil {
		return nil, err
	}

	return &RelatedResult{Channels: channels, OriginalChannel: original}, nil
}

func (s *Service) enrich(ctx context.Context, summaries []youtube.Summary, withLastVideo bool) ([]youtube.Channel, error) {
	ids := make([]string, len(summaries))
	for i, summary := range summaries {
		ids[i] = summary.ID
	}

	channels, err := s.details.FetchDetails(ctx, ids)
	if err != nil {
		return nil, err
	}

	if withLastVideo {
		channels, err = s.activity.AttachLastActivity(ctx, channels)
		if err != nil {
			return nil, err
		}
	}

	return channels, nil
}

func (s *Service) fetchSourceChannel(ctx context.Context, channelID string) (*youtube.Channel, error) {
	channels, err := s.details.FetchDetails(ctx, []string{channelID})
	if err != nil {
		return nil, err
	}

	if len(channels) == 0 {
		return nil, fmt.Errorf("%w: channel %s", apperrors.ErrNotFound, channelID)
	}

	return &channels[0], nil
}

func (s *Service) normalizeQuery(query Query) (Query, error) {
	if query.Keyword == "" {
		return query, fmt.Errorf("%w: keyword is required", apperrors.ErrInvalidInput)
	}

	if query.RelevanceLanguage != "" {
		if _, err := language.Parse(query.RelevanceLanguage); err != nil {
			return query, fmt.Errorf("%w: relevanceLanguage %q", apperrors.ErrInvalidInput, query.RelevanceLanguage)
		}
	}

	if query.MaxResults <= 0 {
		query.MaxResults = defaultMaxResults
	}

	if query.MaxResults > s.maxTarget {
		query.MaxResults = s.maxTarget
	}

	return query, nil
}
