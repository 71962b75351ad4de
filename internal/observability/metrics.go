package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	SearchRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelsearch_requests_total",
		Help: "The total number of search requests by kind and status",
	}, []string{"kind", "status"})

	SearchPagesFetched = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channelsearch_upstream_pages_total",
		Help: "The total number of upstream search pages fetched",
	})

	SearchDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "channelsearch_request_duration_seconds",
		Help:    "Duration of search requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	QuotaExceededTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "channelsearch_quota_exceeded_total",
		Help: "The total number of requests that hit upstream quota exhaustion",
	})

	ActivityLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelsearch_activity_lookups_total",
		Help: "The total number of last-video lookups by outcome",
	}, []string{"outcome"})

	SuggestionRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "channelsearch_suggestion_requests_total",
		Help: "The total number of keyword generation requests by status",
	}, []string{"status"})

	HistoryEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "channelsearch_history_entries",
		Help: "Current number of persisted history entries per list",
	}, []string{"list"})
)
