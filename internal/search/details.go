package search

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const defaultBatchSize = 50

// DetailSource is the upstream batch detail-lookup endpoint.
type DetailSource interface {
	ChannelDetails(ctx context.Context, ids []string) ([]youtube.Channel, error)
}

// DetailEnricher turns summary ids into full channel records.
type DetailEnricher struct {
	source    DetailSource
	batchSize int
	logger    *zerolog.Logger
}

// NewDetailEnricher creates a detail enricher. batchSize should be the
// upstream maximum lookup size (50).
func NewDetailEnricher(source DetailSource, batchSize int, logger *zerolog.Logger) *DetailEnricher {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &DetailEnricher{source: source, batchSize: batchSize, logger: logger}
}

// FetchDetails looks up full records for ids in fixed-size batches. Batches
// run sequentially to stay inside provider rate limits, and any batch failure
// fails the whole call. Within a batch the provider-returned order is
// trusted; records are concatenated in batch order.
func (e *DetailEnricher) FetchDetails(ctx context.Context, ids []string) ([]youtube.Channel, error) {
	channels := make([]youtube.Channel, 0, len(ids))

	for start := 0; start < len(ids); start += e.batchSize {
		end := min(start+e.batchSize, len(ids))

		batch, err := e.source.ChannelDetails(ctx, ids[start:end])
		if err != nil {
			return nil, err
		}

		channels = append(channels, batch...)
	}

	e.logger.Debug().Int("requested", len(ids)).Int("returned", len(channels)).Msg("channel details fetched")

	return channels, nil
}
