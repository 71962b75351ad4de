package search

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
	"github.com/JoaquinMayer/youtube-channel-search/internal/observability"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

// ActivitySource looks up the most recent upload of one channel.
type ActivitySource interface {
	LatestVideo(ctx context.Context, channelID string) (*youtube.Video, error)
}

// ActivityEnricher attaches last-upload activity to channel records with one
// concurrent lookup per record.
type ActivityEnricher struct {
	source      ActivitySource
	concurrency int
	logger      *zerolog.Logger
}

// NewActivityEnricher creates an activity enricher. concurrency bounds the
// number of in-flight lookups; 0 or less means unbounded, matching the
// original one-lookup-per-record fan-out.
func NewActivityEnricher(source ActivitySource, concurrency int, logger *zerolog.Logger) *ActivityEnricher {
	return &ActivityEnricher{source: source, concurrency: concurrency, logger: logger}
}

// AttachLastActivity returns a copy of channels with last-upload fields
// attached where a lookup succeeded. Ordinary lookup failures are logged and
// leave the fields absent; they never fail the batch. Quota exhaustion is the
// exception: once every in-flight lookup has settled the whole call fails
// with ErrQuotaExceeded, because continuing to fan out lookups against an
// exhausted quota only burns the error budget.
//
// The output always matches the input in order and length.
func (e *ActivityEnricher) AttachLastActivity(ctx context.Context, channels []youtube.Channel) ([]youtube.Channel, error) {
	out := make([]youtube.Channel, len(channels))
	copy(out, channels)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		quotaErr  error
		semaphore chan struct{}
	)

	if e.concurrency > 0 {
		semaphore = make(chan struct{}, e.concurrency)
	}

	for i := range out {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			if semaphore != nil {
				semaphore <- struct{}{}
				defer func() { <-semaphore }()
			}

			video, err := e.source.LatestVideo(ctx, out[i].ID)
			if err != nil {
				if apperrors.Is(err, apperrors.ErrQuotaExceeded) {
					observability.ActivityLookups.WithLabelValues("quota").Inc()

					mu.Lock()
					quotaErr = err
					mu.Unlock()

					return
				}

				observability.ActivityLookups.WithLabelValues("error").Inc()

				e.logger.Warn().Err(err).Str("channel_id", out[i].ID).Msg("last video lookup failed")

				return
			}

			if video == nil {
				observability.ActivityLookups.WithLabelValues("empty").Inc()

				return
			}

			observability.ActivityLookups.WithLabelValues("success").Inc()

			publishedAt := video.PublishedAt
			out[i].LastVideoDate = &publishedAt
			out[i].LastVideoID = video.ID
			out[i].LastVideoTitle = video.Title
		}(i)
	}

	wg.Wait()

	if quotaErr != nil {
		return nil, quotaErr
	}

	return out, nil
}
