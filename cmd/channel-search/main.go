package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/JoaquinMayer/youtube-channel-search/internal/config"
	"github.com/JoaquinMayer/youtube-channel-search/internal/search"
	"github.com/JoaquinMayer/youtube-channel-search/internal/server"
	"github.com/JoaquinMayer/youtube-channel-search/internal/store"
	"github.com/JoaquinMayer/youtube-channel-search/internal/suggest"
	"github.com/JoaquinMayer/youtube-channel-search/internal/youtube"
)

const activitySourceFeed = "feed"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := newLogger(cfg.AppEnv)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, err := store.OpenSQLite(cfg.SQLitePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open mirror database")
	}
	defer backend.Close()

	handler, err := buildHandler(ctx, cfg, backend, &logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build application")
	}

	engine := server.New(handler, &logger)

	if err := server.Run(ctx, engine, cfg.HTTPPort, &logger); err != nil {
		if errors.Is(err, context.Canceled) {
			logger.Info().Msg("application stopped")

			return
		}

		logger.Fatal().Err(err).Msg("application error")
	}
}

func buildHandler(ctx context.Context, cfg *config.Config, backend store.Backend, logger *zerolog.Logger) (*server.Handler, error) {
	client := youtube.New(youtube.Config{
		APIKey:  cfg.YouTubeAPIKey,
		BaseURL: cfg.YouTubeBaseURL,
		Timeout: cfg.YouTubeTimeout,
		RPS:     cfg.YouTubeRPS,
	}, logger)

	var activitySource search.ActivitySource = client
	if cfg.ActivitySource == activitySourceFeed {
		activitySource = youtube.NewFeedSource(youtube.FeedConfig{
			BaseURL: cfg.FeedBaseURL,
			Timeout: cfg.FeedTimeout,
		}, logger)

		logger.Info().Msg("using uploads feed as last-activity source")
	}

	service := search.NewService(
		search.NewAggregator(client, cfg.SearchPageSize, logger),
		search.NewDetailEnricher(client, cfg.DetailsBatchSize, logger),
		search.NewActivityEnricher(activitySource, cfg.ActivityConcurrency, logger),
		client,
		cfg.MaxTargetCount,
		logger,
	)

	history, err := store.NewHistoryStore(ctx, backend, store.KeySearchHistory, cfg.HistoryCap, logger)
	if err != nil {
		return nil, err
	}

	relatedHistory, err := store.NewRelatedHistoryStore(ctx, backend, store.KeyRelatedHistory, cfg.HistoryCap, logger)
	if err != nil {
		return nil, err
	}

	visited, err := store.NewVisitedStore(ctx, backend, store.KeyVisitedChannels, logger)
	if err != nil {
		return nil, err
	}

	suggester := suggest.New(suggest.Config{
		APIKey: cfg.LLMAPIKey,
		Model:  cfg.LLMModel,
		RPS:    cfg.LLMRPS,
	}, logger)

	return server.NewHandler(service, search.NewSession(), history, relatedHistory, visited, suggester, backend, cfg.ActivityMonths, logger), nil
}

func newLogger(appEnv string) zerolog.Logger {
	if appEnv == "local" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Timestamp().Logger()
	}

	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
