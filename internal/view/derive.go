// Package view derives the displayed record set from aggregate search state.
// Everything here is pure: the caller re-runs Derive after any filter, sort
// or visited-set change instead of maintaining a reactive graph.
package view

import (
	"sort"
	"time"

	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

// SortField selects the sort key of the derived view.
type SortField string

const (
	SortNone        SortField = ""
	SortSubscribers SortField = "subscriberCount"
	SortVideos      SortField = "videoCount"
	SortViews       SortField = "viewCount"
	SortLastVideo   SortField = "lastVideoDate"
)

const defaultActivityMonths = 12

// Options are the filter and sort inputs of one derivation.
type Options struct {
	MinSubscribers int64

	// ActiveOnly drops channels without an upload in the last ActivityMonths.
	// A channel with no last-video date counts as inactive, whether the
	// lookup failed or was never requested.
	ActiveOnly     bool
	ActivityMonths int
	Now            time.Time

	HideVisited bool
	Visited     map[string]struct{}

	SortBy         SortField
	SortDescending bool
}

// Derive applies the filter chain and sort to records and returns a new
// slice. Filter order is fixed: subscriber threshold, then activity recency,
// then visited exclusion; the sort always runs last. Inputs are never
// mutated.
func Derive(records []youtube.Channel, opts Options) []youtube.Channel {
	out := make([]youtube.Channel, 0, len(records))

	cutoff := activityCutoff(opts)

	for _, record := range records {
		if record.SubscriberCount < opts.MinSubscribers {
			continue
		}

		if opts.ActiveOnly {
			if record.LastVideoDate == nil || record.LastVideoDate.Before(cutoff) {
				continue
			}
		}

		if opts.HideVisited {
			if _, visited := opts.Visited[record.ID]; visited {
				continue
			}
		}

		out = append(out, record)
	}

	if opts.SortBy != SortNone {
		sort.SliceStable(out, func(i, j int) bool {
			less := compare(out[i], out[j], opts.SortBy)
			if opts.SortDescending {
				return !less && compare(out[j], out[i], opts.SortBy)
			}

			return less
		})
	}

	return out
}

func activityCutoff(opts Options) time.Time {
	months := opts.ActivityMonths
	if months <= 0 {
		months = defaultActivityMonths
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	return now.AddDate(0, -months, 0)
}

// compare reports whether a sorts strictly before b ascending on field.
// Absent dates compare as the epoch.
func compare(a, b youtube.Channel, field SortField) bool {
	switch field {
	case SortSubscribers:
		return a.SubscriberCount < b.SubscriberCount
	case SortVideos:
		return a.VideoCount < b.VideoCount
	case SortViews:
		return a.ViewCount < b.ViewCount
	case SortLastVideo:
		return dateOrEpoch(a).Before(dateOrEpoch(b))
	default:
		return false
	}
}

func dateOrEpoch(c youtube.Channel) time.Time {
	if c.LastVideoDate == nil {
		return time.Unix(0, 0).UTC()
	}

	return *c.LastVideoDate
}
