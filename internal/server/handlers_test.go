package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
	"github.com/JoaquinMayer/youtube-channel-search/internal/search"
	"github.com/JoaquinMayer/youtube-channel-search/internal/store"
	"github.com/JoaquinMayer/youtube-channel-search/internal/suggest"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

type fakeUpstream struct {
	searchErr  error
	detailsErr error
	channels   []youtube.Channel
	latest     map[string]*youtube.Video
}

func (f *fakeUpstream) SearchChannels(_ context.Context, _ youtube.SearchParams) (*youtube.SearchPage, error) {
	if f.searchErr != nil {
		return nil, f.searchErr
	}

	items := make([]youtube.Summary, 0, len(f.channels))
	for _, ch := range f.channels {
		items = append(items, youtube.Summary{ID: ch.ID, Title: ch.Title})
	}

	return &youtube.SearchPage{Items: items, TotalResults: len(items)}, nil
}

func (f *fakeUpstream) ChannelDetails(_ context.Context, ids []string) ([]youtube.Channel, error) {
	if f.detailsErr != nil {
		return nil, f.detailsErr
	}

	out := make([]youtube.Channel, 0, len(ids))

	for _, id := range ids {
		for _, ch := range f.channels {
			if ch.ID == id {
				out = append(out, ch)
			}
		}
	}

	return out, nil
}

func (f *fakeUpstream) LatestVideo(_ context.Context, channelID string) (*youtube.Video, error) {
	return f.latest[channelID], nil
}

func (f *fakeUpstream) ResolveHandle(_ context.Context, handle string) (string, error) {
	for _, ch := range f.channels {
		if strings.EqualFold(ch.Title, handle) {
			return ch.ID, nil
		}
	}

	return "", fmt.Errorf("handle %s: %w", handle, apperrors.ErrNotFound)
}

type fakeSuggester struct {
	suggestions []suggest.Suggestion
	err         error
}

func (f *fakeSuggester) GenerateKeywords(_ context.Context, _ string, _ []suggest.ChannelSample) ([]suggest.Suggestion, error) {
	return f.suggestions, f.err
}

type testEnv struct {
	engine   *gin.Engine
	upstream *fakeUpstream
	handler  *Handler
}

func newTestEnv(t *testing.T, upstream *fakeUpstream, suggester suggest.Client) *testEnv {
	t.Helper()

	return newTestEnvMonths(t, upstream, suggester, 12)
}

func newTestEnvMonths(t *testing.T, upstream *fakeUpstream, suggester suggest.Client, activityMonths int) *testEnv {
	t.Helper()

	logger := zerolog.Nop()
	ctx := context.Background()
	backend := store.NewMemoryBackend()

	history, err := store.NewHistoryStore(ctx, backend, store.KeySearchHistory, 20, &logger)
	require.NoError(t, err)

	relatedHistory, err := store.NewRelatedHistoryStore(ctx, backend, store.KeyRelatedHistory, 20, &logger)
	require.NoError(t, err)

	visited, err := store.NewVisitedStore(ctx, backend, store.KeyVisitedChannels, &logger)
	require.NoError(t, err)

	service := search.NewService(
		search.NewAggregator(upstream, 50, &logger),
		search.NewDetailEnricher(upstream, 50, &logger),
		search.NewActivityEnricher(upstream, 0, &logger),
		upstream,
		500,
		&logger,
	)

	handler := NewHandler(service, search.NewSession(), history, relatedHistory, visited, suggester, backend, activityMonths, &logger)

	return &testEnv{engine: New(handler, &logger), upstream: upstream, handler: handler}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	rec := httptest.NewRecorder()
	e.engine.ServeHTTP(rec, req)

	return rec
}

func testChannels() []youtube.Channel {
	return []youtube.Channel{
		{ID: "UC1", Title: "Cooking with Maria", Description: "Recipes", SubscriberCount: 1000},
		{ID: "UC2", Title: "Tech Reviews", Description: "Gadgets", SubscriberCount: 5000},
	}
}

func TestSearchChannels(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Len(t, result.Channels, 2)
	require.Equal(t, 2, result.TotalResults)
	require.Equal(t, "cooking", result.Query.Keyword)

	// Successful searches are archived.
	rec = env.do(http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var listing struct {
		Entries []store.HistoryEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Entries, 1)
}

func TestSearchChannelsRequiresKeyword(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchChannelsQuotaExceeded(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{searchErr: fmt.Errorf("search: %w", apperrors.ErrQuotaExceeded)}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, true, payload["quotaExceeded"])
}

func TestSearchChannelsUpstreamFailure(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{searchErr: fmt.Errorf("search: %w", apperrors.ErrUpstream)}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestSearchChannelsWithLastVideo(t *testing.T) {
	published := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	upstream := &fakeUpstream{
		channels: testChannels(),
		latest:   map[string]*youtube.Video{"UC1": {ID: "vid1", Title: "Paella", PublishedAt: published}},
	}
	env := newTestEnv(t, upstream, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking&withLastVideo=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result search.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotNil(t, result.Channels[0].LastVideoDate)
	require.Equal(t, "vid1", result.Channels[0].LastVideoID)
	require.Nil(t, result.Channels[1].LastVideoDate)
}

func TestRelatedChannels(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/related-channels?channelUrl=https://youtube.com/channel/UC1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var result search.RelatedResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.Equal(t, "UC1", result.OriginalChannel.ID)

	// The source channel never appears in its own related results.
	for _, ch := range result.Channels {
		require.NotEqual(t, "UC1", ch.ID)
	}
}

func TestRelatedChannelsBadURL(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/related-channels?channelUrl=https://example.com/watch", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.do(http.MethodGet, "/api/related-channels", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRelatedChannelsUnknownChannel(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/related-channels?channelUrl=https://youtube.com/channel/UCmissing", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerateKeywords(t *testing.T) {
	suggester := &fakeSuggester{suggestions: []suggest.Suggestion{
		{Keyword: "recipes", RelevanceTier: "High"},
		{Keyword: "baking", RelevanceTier: "Medium"},
	}}
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, suggester)

	body := `{"sourceKeyword": "cooking", "channels": [{"title": "Cooking with Maria", "subscriberCount": 1000}]}`
	rec := env.do(http.MethodPost, "/api/generate-keywords", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Keywords []suggest.Suggestion `json:"keywords"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Len(t, payload.Keywords, 2)
	require.Equal(t, "recipes", payload.Keywords[0].Keyword)
	require.Equal(t, "High", payload.Keywords[0].RelevanceTier)
}

func TestGenerateKeywordsRequiresChannels(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodPost, "/api/generate-keywords", `{"sourceKeyword": "cooking", "channels": []}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerateKeywordsParseFailure(t *testing.T) {
	suggester := &fakeSuggester{err: fmt.Errorf("no keyword list: %w", apperrors.ErrGenerationParse)}
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, suggester)

	body := `{"sourceKeyword": "cooking", "channels": [{"title": "Cooking with Maria"}]}`
	rec := env.do(http.MethodPost, "/api/generate-keywords", body)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHistoryLifecycle(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/history", "")

	var listing struct {
		Entries []store.HistoryEntry `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	require.Len(t, listing.Entries, 1)

	id := listing.Entries[0].ID

	rec = env.do(http.MethodGet, "/api/history/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Loading an entry restores it as the current session state.
	require.NotNil(t, env.handler.session.Current())

	rec = env.do(http.MethodDelete, "/api/history/"+id, "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/history/"+id, "")
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(http.MethodDelete, "/api/history", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestVisitedLifecycle(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodPost, "/api/visited/UC1", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/visited", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		IDs []string `json:"ids"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	require.Equal(t, []string{"UC1"}, payload.IDs)

	rec = env.do(http.MethodDelete, "/api/visited", "")
	require.Equal(t, http.StatusNoContent, rec.Code)
}

func TestExportCSV(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodPost, "/api/visited/UC2", "")
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/export.csv", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	require.Equal(t, "id,title,description,url,subscribers,videos,views,last_video_date,last_video_id,last_video_title,visited", lines[0])
	require.Contains(t, lines[1], "UC1")
	require.Contains(t, lines[2], "true")
}

func TestExportCSVFiltersBySubscribers(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/api/export.csv?minSubscribers=2000", "")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "UC2")
}

func TestExportCSVConfiguredActivityCutoff(t *testing.T) {
	recent := time.Now().AddDate(0, -1, 0)
	stale := time.Now().AddDate(0, -6, 0)
	upstream := &fakeUpstream{channels: []youtube.Channel{
		{ID: "UC1", Title: "Fresh", SubscriberCount: 100, LastVideoDate: &recent},
		{ID: "UC2", Title: "Dormant", SubscriberCount: 100, LastVideoDate: &stale},
	}}
	env := newTestEnvMonths(t, upstream, &fakeSuggester{}, 3)

	rec := env.do(http.MethodGet, "/api/youtube-search?keyword=cooking", "")
	require.Equal(t, http.StatusOK, rec.Code)

	// Without an activityMonths parameter the configured cutoff applies.
	rec = env.do(http.MethodGet, "/api/export.csv?activeOnly=true", "")
	require.Equal(t, http.StatusOK, rec.Code)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.Contains(t, lines[1], "UC1")

	// An explicit parameter still overrides it.
	rec = env.do(http.MethodGet, "/api/export.csv?activeOnly=true&activityMonths=12", "")
	require.Equal(t, http.StatusOK, rec.Code)

	lines = strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
}

func TestHealthEndpoints(t *testing.T) {
	env := newTestEnv(t, &fakeUpstream{channels: testChannels()}, &fakeSuggester{})

	rec := env.do(http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodGet, "/readyz", "")
	require.Equal(t, http.StatusOK, rec.Code)
}
