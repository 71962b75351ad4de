package youtube

import "time"

// Summary is a search result before detail enrichment. It carries only what
// the search endpoint returns per channel.
type Summary struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
}

// Channel is a fully enriched channel record.
type Channel struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	ThumbnailURL    string `json:"thumbnailUrl"`
	SubscriberCount int64  `json:"subscriberCount"`
	VideoCount      int64  `json:"videoCount"`
	ViewCount       int64  `json:"viewCount"`

	// Last-activity fields, absent until attached by the activity enricher.
	// A nil LastVideoDate means "no activity found or not looked up",
	// distinct from a lookup failure which is logged and also left absent.
	LastVideoDate  *time.Time `json:"lastVideoDate,omitempty"`
	LastVideoID    string     `json:"lastVideoId,omitempty"`
	LastVideoTitle string     `json:"lastVideoTitle,omitempty"`
}

// Video is the most recent upload of a channel.
type Video struct {
	ID          string
	Title       string
	PublishedAt time.Time
}

// SearchPage is one page of channel search results.
type SearchPage struct {
	Items         []Summary
	NextPageToken string
	TotalResults  int
}

// SearchParams are the upstream search request parameters.
type SearchParams struct {
	Query             string
	RegionCode        string
	Order             string
	RelevanceLanguage string
	PageToken         string
	MaxResults        int
}
