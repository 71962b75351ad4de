package search

import "github.com/JoaquinMayer/youtube-channel-search/internal/youtube"

// Query holds the parameters of one search. It is immutable once a search
// starts and is archived next to its results.
type Query struct {
	Keyword           string `json:"keyword"`
	RegionCode        string `json:"regionCode,omitempty"`
	Order             string `json:"order,omitempty"`
	RelevanceLanguage string `json:"relevanceLanguage,omitempty"`
	MaxResults        int    `json:"maxResults"`
	WithLastVideo     bool   `json:"withLastVideo,omitempty"`
}

// Result is the aggregate state of one completed search. Channels keep the
// upstream relevance order; TotalResults is the upstream estimate, which may
// exceed the materialized count.
type Result struct {
	Channels     []youtube.Channel `json:"channels"`
	TotalResults int               `json:"totalResults"`
	Query        Query             `json:"query"`
}

// SourceChannel identifies the reference channel of a related-channel search.
type SourceChannel struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Keywords []string `json:"keywords"`
}

// RelatedResult is the aggregate state of one related-channel search.
type RelatedResult struct {
	Channels        []youtube.Channel `json:"channels"`
	OriginalChannel SourceChannel     `json:"originalChannel"`
}
