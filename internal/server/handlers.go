package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/JoaquinMayer/youtube-channel-search/internal/core/errors"
	"github.com/JoaquinMayer/youtube-channel-search/internal/observability"
	"github.com/JoaquinMayer/youtube-channel-search/internal/search"
	"github.com/JoaquinMayer/youtube-channel-search/internal/store"
	"github.com/JoaquinMayer/youtube-channel-search/internal/suggest"
	"github.com/JoaquinMayer/youtube-channel-search/internal/view"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const (
	kindKeyword = "keyword"
	kindRelated = "related"

	statusOK    = "ok"
	statusError = "error"
	statusQuota = "quota"
)

// Handler holds the wired pipeline behind the HTTP routes.
type Handler struct {
	service        *search.Service
	session        *search.Session
	history        *store.HistoryStore
	relatedHistory *store.RelatedHistoryStore
	visited        *store.VisitedStore
	suggester      suggest.Client
	backend        store.Backend
	activityMonths int
	logger         *zerolog.Logger
}

// NewHandler creates the API handler. activityMonths is the configured
// default for the activity cutoff when a request does not override it.
func NewHandler(
	service *search.Service,
	session *search.Session,
	history *store.HistoryStore,
	relatedHistory *store.RelatedHistoryStore,
	visited *store.VisitedStore,
	suggester suggest.Client,
	backend store.Backend,
	activityMonths int,
	logger *zerolog.Logger,
) *Handler {
	return &Handler{
		service:        service,
		session:        session,
		history:        history,
		relatedHistory: relatedHistory,
		visited:        visited,
		suggester:      suggester,
		backend:        backend,
		activityMonths: activityMonths,
		logger:         logger,
	}
}

// SearchChannels runs a keyword search and archives the result set.
func (h *Handler) SearchChannels(c *gin.Context) {
	query := search.Query{
		Keyword:           c.Query("keyword"),
		RegionCode:        c.Query("regionCode"),
		Order:             c.Query("order"),
		RelevanceLanguage: c.Query("relevanceLanguage"),
		MaxResults:        intQuery(c, "maxResults", 0),
		WithLastVideo:     boolQuery(c, "withLastVideo"),
	}

	start := time.Now()
	generation := h.session.Begin()

	result, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		observability.SearchRequests.WithLabelValues(kindKeyword, statusLabel(err)).Inc()
		h.respondError(c, err)

		return
	}

	observability.SearchRequests.WithLabelValues(kindKeyword, statusOK).Inc()
	observability.SearchDuration.WithLabelValues(kindKeyword).Observe(time.Since(start).Seconds())

	if h.session.Apply(generation, result) {
		// Only non-empty result sets are worth archiving.
		if len(result.Channels) > 0 {
			if _, err := h.history.Save(c.Request.Context(), result); err != nil {
				h.logger.Warn().Err(err).Msg("failed to archive search result")
			}
		}
	} else {
		h.logger.Debug().Uint64("generation", generation).Msg("discarding superseded search result")
	}

	c.JSON(http.StatusOK, result)
}

// RelatedChannels finds channels similar to a reference channel URL.
func (h *Handler) RelatedChannels(c *gin.Context) {
	channelURL := c.Query("channelUrl")
	if channelURL == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channelUrl is required"})

		return
	}

	maxResults := intQuery(c, "maxResults", 0)
	withLastVideo := boolQuery(c, "withLastVideo")

	start := time.Now()
	generation := h.session.Begin()

	result, err := h.service.Related(c.Request.Context(), channelURL, maxResults, withLastVideo)
	if err != nil {
		observability.SearchRequests.WithLabelValues(kindRelated, statusLabel(err)).Inc()
		h.respondError(c, err)

		return
	}

	observability.SearchRequests.WithLabelValues(kindRelated, statusOK).Inc()
	observability.SearchDuration.WithLabelValues(kindRelated).Observe(time.Since(start).Seconds())

	if h.session.ApplyRelated(generation, result) {
		if len(result.Channels) > 0 {
			if _, err := h.relatedHistory.Save(c.Request.Context(), channelURL, result); err != nil {
				h.logger.Warn().Err(err).Msg("failed to archive related search result")
			}
		}
	} else {
		h.logger.Debug().Uint64("generation", generation).Msg("discarding superseded related result")
	}

	c.JSON(http.StatusOK, result)
}

type generateKeywordsRequest struct {
	SourceKeyword string `json:"sourceKeyword"`
	Channels      []struct {
		Title           string `json:"title"`
		Description     string `json:"description"`
		SubscriberCount int64  `json:"subscriberCount"`
	} `json:"channels"`
}

// GenerateKeywords asks the suggestion model for follow-up search keywords.
func (h *Handler) GenerateKeywords(c *gin.Context) {
	var req generateKeywordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})

		return
	}

	if len(req.Channels) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "channels are required"})

		return
	}

	samples := make([]suggest.ChannelSample, 0, len(req.Channels))
	for _, ch := range req.Channels {
		samples = append(samples, suggest.ChannelSample{
			Title:           ch.Title,
			Description:     ch.Description,
			SubscriberCount: ch.SubscriberCount,
		})
	}

	suggestions, err := h.suggester.GenerateKeywords(c.Request.Context(), req.SourceKeyword, samples)
	if err != nil {
		observability.SuggestionRequests.WithLabelValues(statusError).Inc()
		h.respondError(c, err)

		return
	}

	observability.SuggestionRequests.WithLabelValues(statusOK).Inc()
	c.JSON(http.StatusOK, gin.H{"keywords": suggestions})
}

// ListHistory returns the archived search result sets, newest first.
func (h *Handler) ListHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.history.List()})
}

// LoadHistoryEntry restores an archived result set as the current session
// state.
func (h *Handler) LoadHistoryEntry(c *gin.Context) {
	entry, err := h.history.Load(c.Param("id"))
	if err != nil {
		h.respondError(c, err)

		return
	}

	h.session.Replace(&search.Result{
		Channels:     entry.Channels,
		TotalResults: entry.TotalResults,
		Query:        entry.Query,
	})

	c.JSON(http.StatusOK, entry)
}

// DeleteHistoryEntry removes one archived result set.
func (h *Handler) DeleteHistoryEntry(c *gin.Context) {
	if err := h.history.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ClearHistory drops the whole search archive.
func (h *Handler) ClearHistory(c *gin.Context) {
	if err := h.history.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ListRelatedHistory returns the archived related-channel result sets.
func (h *Handler) ListRelatedHistory(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"entries": h.relatedHistory.List()})
}

// LoadRelatedHistoryEntry restores an archived related-channel result set as
// the current session state.
func (h *Handler) LoadRelatedHistoryEntry(c *gin.Context) {
	entry, err := h.relatedHistory.Load(c.Param("id"))
	if err != nil {
		h.respondError(c, err)

		return
	}

	h.session.ReplaceRelated(&search.RelatedResult{
		Channels:        entry.Channels,
		OriginalChannel: entry.OriginalChannel,
	})

	c.JSON(http.StatusOK, entry)
}

// DeleteRelatedHistoryEntry removes one archived related result set.
func (h *Handler) DeleteRelatedHistoryEntry(c *gin.Context) {
	if err := h.relatedHistory.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ClearRelatedHistory drops the whole related-channel archive.
func (h *Handler) ClearRelatedHistory(c *gin.Context) {
	if err := h.relatedHistory.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ListVisited returns the visited channel ids in insertion order.
func (h *Handler) ListVisited(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ids": h.visited.IDs()})
}

// MarkVisited adds a channel id to the visited set.
func (h *Handler) MarkVisited(c *gin.Context) {
	if err := h.visited.Mark(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ClearVisited drops the whole visited set.
func (h *Handler) ClearVisited(c *gin.Context) {
	if err := h.visited.Clear(c.Request.Context()); err != nil {
		h.respondError(c, err)

		return
	}

	c.Status(http.StatusNoContent)
}

// ExportCSV writes the current derived view as a CSV download. Filter and
// sort parameters mirror the view options.
func (h *Handler) ExportCSV(c *gin.Context) {
	records := h.currentChannels()

	opts := view.Options{
		MinSubscribers: int64(intQuery(c, "minSubscribers", 0)),
		ActiveOnly:     boolQuery(c, "activeOnly"),
		ActivityMonths: intQuery(c, "activityMonths", h.activityMonths),
		HideVisited:    boolQuery(c, "hideVisited"),
		Visited:        h.visited.Set(),
		SortBy:         view.SortField(c.Query("sortBy")),
		SortDescending: boolQuery(c, "sortDesc"),
	}

	derived := view.Derive(records, opts)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="channels.csv"`)
	c.Status(http.StatusOK)

	if err := view.WriteCSV(c.Writer, derived, h.visited.Set()); err != nil {
		h.logger.Error().Err(err).Msg("csv export failed")
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness by probing the durable mirror.
func (h *Handler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if _, err := h.backend.Load(ctx, store.KeyVisitedChannels); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})

		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// currentChannels returns the channels of the current session state, from
// either a keyword search or a related-channel search.
func (h *Handler) currentChannels() []youtube.Channel {
	if result := h.session.Current(); result != nil {
		return result.Channels
	}

	if related := h.session.CurrentRelated(); related != nil {
		return related.Channels
	}

	return nil
}

func (h *Handler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrQuotaExceeded):
		observability.QuotaExceededTotal.Inc()
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "YouTube API quota exceeded", "quotaExceeded": true})
	case errors.Is(err, apperrors.ErrGenerationParse):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "could not parse keyword suggestions"})
	default:
		h.logger.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func statusLabel(err error) string {
	if errors.Is(err, apperrors.ErrQuotaExceeded) {
		return statusQuota
	}

	return statusError
}

func intQuery(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return value
}

func boolQuery(c *gin.Context, key string) bool {
	value, err := strconv.ParseBool(c.Query(key))
	if err != nil {
		return false
	}

	return value
}
