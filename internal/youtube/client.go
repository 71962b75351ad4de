// Package youtube implements the YouTube Data API v3 client used for channel
// search, batched channel detail lookups and latest-upload lookups.
//
// Quota handling: the API reports quota exhaustion as HTTP 403 with a reason
// of quotaExceeded or dailyLimitExceeded (or a message mentioning "quota").
// That classification rule lives here so callers only ever see
// errors.ErrQuotaExceeded or errors.ErrUpstream.
package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
)

const (
	defaultTimeout = 30 * time.Second
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	searchPath   = "/search"
	channelsPath = "/channels"

	resultKindChannel = "channel"
	resultKindVideo   = "video"
	orderDate         = "date"

	reasonQuotaExceeded      = "quotaExceeded"
	reasonDailyLimitExceeded = "dailyLimitExceeded"
)

// Config holds configuration for the API client.
type Config struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
	RPS     float64
}

// Client talks to the YouTube Data API v3.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *zerolog.Logger
}

// New creates a new API client.
func New(cfg Config, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rps := cfg.RPS
	if rps <= 0 {
		rps = 10
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), 5),
		logger:  logger,
	}
}

// SearchChannels fetches one page of channel search results.
func (c *Client) SearchChannels(ctx context.Context, params SearchParams) (*SearchPage, error) {
	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("type", resultKindChannel)
	values.Set("q", params.Query)
	values.Set("maxResults", strconv.Itoa(params.MaxResults))

	if params.RegionCode != "" {
		values.Set("regionCode", params.RegionCode)
	}

	if params.Order != "" {
		values.Set("order", params.Order)
	}

	if params.RelevanceLanguage != "" {
		values.Set("relevanceLanguage", params.RelevanceLanguage)
	}

	if params.PageToken != "" {
		values.Set("pageToken", params.PageToken)
	}

	body, err := c.get(ctx, searchPath, values)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse search response: %v", apperrors.ErrUpstream, err)
	}

	page := &SearchPage{
		Items:         make([]Summary, 0, len(resp.Items)),
		NextPageToken: resp.NextPageToken,
		TotalResults:  resp.PageInfo.TotalResults,
	}

	for _, item := range resp.Items {
		if item.ID.ChannelID == "" {
			continue
		}

		page.Items = append(page.Items, Summary{
			ID:      item.ID.ChannelID,
			Title:   item.Snippet.Title,
			Snippet: item.Snippet.Description,
		})
	}

	return page, nil
}

// ChannelDetails fetches full records for up to 50 channel ids in one request.
// Provider-returned order is trusted; the caller matches records positionally.
func (c *Client) ChannelDetails(ctx context.Context, ids []string) ([]Channel, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	values := url.Values{}
	values.Set("part", "snippet,statistics")
	values.Set("id", strings.Join(ids, ","))

	body, err := c.get(ctx, channelsPath, values)
	if err != nil {
		return nil, err
	}

	var resp channelsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse channels response: %v", apperrors.ErrUpstream, err)
	}

	channels := make([]Channel, 0, len(resp.Items))

	for _, item := range resp.Items {
		channels = append(channels, Channel{
			ID:              item.ID,
			Title:           item.Snippet.Title,
			Description:     item.Snippet.Description,
			ThumbnailURL:    item.Snippet.Thumbnails.Medium.URL,
			SubscriberCount: parseCount(item.Statistics.SubscriberCount),
			VideoCount:      parseCount(item.Statistics.VideoCount),
			ViewCount:       parseCount(item.Statistics.ViewCount),
		})
	}

	return channels, nil
}

// ResolveHandle finds the channel id behind a @handle via a single search
// request. Returns apperrors.ErrNotFound when no channel matches.
func (c *Client) ResolveHandle(ctx context.Context, handle string) (string, error) {
	page, err := c.SearchChannels(ctx, SearchParams{
		Query:      "@" + handle,
		MaxResults: 1,
	})
	if err != nil {
		return "", err
	}

	if len(page.Items) == 0 {
		return "", fmt.Errorf("%w: channel @%s", apperrors.ErrNotFound, handle)
	}

	return page.Items[0].ID, nil
}

// LatestVideo returns the most recent upload of a channel, or nil when the
// channel has no videos.
func (c *Client) LatestVideo(ctx context.Context, channelID string) (*Video, error) {
	values := url.Values{}
	values.Set("part", "snippet")
	values.Set("type", resultKindVideo)
	values.Set("channelId", channelID)
	values.Set("order", orderDate)
	values.Set("maxResults", "1")

	body, err := c.get(ctx, searchPath, values)
	if err != nil {
		return nil, err
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: parse latest video response: %v", apperrors.ErrUpstream, err)
	}

	if len(resp.Items) == 0 {
		return nil, nil
	}

	item := resp.Items[0]

	publishedAt, err := time.Parse(time.RFC3339, item.Snippet.PublishedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: parse publishedAt %q: %v", apperrors.ErrUpstream, item.Snippet.PublishedAt, err)
	}

	return &Video{
		ID:          item.ID.VideoID,
		Title:       item.Snippet.Title,
		PublishedAt: publishedAt,
	}, nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: rate limiter: %v", apperrors.ErrUpstream, err)
	}

	values.Set("key", c.apiKey)
	reqURL := c.baseURL + path + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", apperrors.ErrUpstream, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstream, err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", apperrors.ErrUpstream, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, c.classifyError(resp.StatusCode, body)
	}

	return body, nil
}

// classifyError maps an API error response to the error taxonomy. The quota
// check matches the reason code first, then falls back to a message substring
// because the API uses 403 for several unrelated conditions.
func (c *Client) classifyError(status int, body []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)

	if status == http.StatusForbidden && isQuotaError(apiErr) {
		c.logger.Warn().Str("reason", firstReason(apiErr)).Msg("youtube api quota exhausted")

		return fmt.Errorf("%w: %s", apperrors.ErrQuotaExceeded, apiErr.Error.Message)
	}

	c.logger.Error().Int("status", status).Str("message", apiErr.Error.Message).Msg("youtube api error")

	return fmt.Errorf("%w: status %d: %s", apperrors.ErrUpstream, status, apiErr.Error.Message)
}

func isQuotaError(apiErr apiErrorResponse) bool {
	for _, e := range apiErr.Error.Errors {
		if e.Reason == reasonQuotaExceeded || e.Reason == reasonDailyLimitExceeded {
			return true
		}
	}

	return strings.Contains(strings.ToLower(apiErr.Error.Message), "quota")
}

func firstReason(apiErr apiErrorResponse) string {
	if len(apiErr.Error.Errors) > 0 {
		return apiErr.Error.Errors[0].Reason
	}

	return ""
}

// parseCount parses a numeric statistics string, defaulting to 0. The API
// omits subscriberCount entirely for channels that hide it.
func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}

	return n
}

// Wire types.

type searchResponse struct {
	Items         []searchItem `json:"items"`
	NextPageToken string       `json:"nextPageToken"`
	PageInfo      pageInfo     `json:"pageInfo"`
}

type pageInfo struct {
	TotalResults int `json:"totalResults"`
}

type searchItem struct {
	ID      searchItemID `json:"id"`
	Snippet snippet      `json:"snippet"`
}

type searchItemID struct {
	Kind      string `json:"kind"`
	ChannelID string `json:"channelId"`
	VideoID   string `json:"videoId"`
}

type snippet struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	PublishedAt string     `json:"publishedAt"`
	Thumbnails  thumbnails `json:"thumbnails"`
}

type thumbnails struct {
	Medium thumbnail `json:"medium"`
}

type thumbnail struct {
	URL string `json:"url"`
}

type channelsResponse struct {
	Items []channelItem `json:"items"`
}

type channelItem struct {
	ID         string     `json:"id"`
	Snippet    snippet    `json:"snippet"`
	Statistics statistics `json:"statistics"`
}

type statistics struct {
	SubscriberCount string `json:"subscriberCount"`
	VideoCount      string `json:"videoCount"`
	ViewCount       string `json:"viewCount"`
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
	} `json:"error"`
}
