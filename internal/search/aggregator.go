// Package search implements the result aggregation pipeline: paging the
// upstream search endpoint, enriching summaries into full channel records,
// and optionally attaching last-upload activity.
package search

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/JoaquinMayer/youtube-channel-search/internal/observability"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const defaultPageSize = 50

// SearchSource is the upstream paged search endpoint.
type SearchSource interface {
	SearchChannels(ctx context.Context, params youtube.SearchParams) (*youtube.SearchPage, error)
}

// Aggregator assembles a bounded result set from the paged search source.
type Aggregator struct {
	source   SearchSource
	pageSize int
	logger   *zerolog.Logger
}

// NewAggregator creates a page aggregator. pageSize should be the upstream
// maximum (50); smaller values only waste quota.
func NewAggregator(source SearchSource, pageSize int, logger *zerolog.Logger) *Aggregator {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}

	return &Aggregator{source: source, pageSize: pageSize, logger: logger}
}

// FetchUpTo pages through search results until targetCount items are
// accumulated, the source runs out of pages, or a page comes back empty.
// Every request asks for a full page even when fewer items remain to reach
// the target; the overshoot is truncated afterwards. The upstream paginates
// without overlap, so results are never deduplicated here.
//
// The returned total is the upstream's estimate from the first page only.
func (a *Aggregator) FetchUpTo(ctx context.Context, query Query, targetCount int) ([]youtube.Summary, int, error) {
	if targetCount <= 0 {
		return nil, 0, nil
	}

	var (
		summaries []youtube.Summary
		pageToken string
		total     int
		pages     int
	)

	for len(summaries) < targetCount {
		page, err := a.source.SearchChannels(ctx, youtube.SearchParams{
			Query:             query.Keyword,
			RegionCode:        query.RegionCode,
			Order:             query.Order,
			RelevanceLanguage: query.RelevanceLanguage,
			PageToken:         pageToken,
			MaxResults:        a.pageSize,
		})
		if err != nil {
			return nil, 0, err
		}

		pages++

		observability.SearchPagesFetched.Inc()

		if pages == 1 {
			total = page.TotalResults
		}

		if len(page.Items) == 0 {
			break
		}

		summaries = append(summaries, page.Items...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			break
		}
	}

	if len(summaries) > targetCount {
		summaries = summaries[:targetCount]
	}

	a.logger.Debug().
		Str("query", query.Keyword).
		Int("pages", pages).
		Int("count", len(summaries)).
		Int("total_estimate", total).
		Msg("search pages aggregated")

	return summaries, total, nil
}
