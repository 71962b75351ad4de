// Package server exposes the search pipeline over HTTP.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

const (
	readTimeout     = 30 * time.Second
	writeTimeout    = 60 * time.Second
	idleTimeout     = 120 * time.Second
	shutdownTimeout = 10 * time.Second
)

// New creates the HTTP engine with all routes configured.
func New(handler *Handler, logger *zerolog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger(logger))
	r.Use(cors())

	r.GET("/healthz", handler.Health)
	r.GET("/readyz", handler.Ready)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	{
		api.GET("/youtube-search", handler.SearchChannels)
		api.GET("/related-channels", handler.RelatedChannels)
		api.POST("/generate-keywords", handler.GenerateKeywords)

		api.GET("/history", handler.ListHistory)
		api.GET("/history/:id", handler.LoadHistoryEntry)
		api.DELETE("/history/:id", handler.DeleteHistoryEntry)
		api.DELETE("/history", handler.ClearHistory)

		api.GET("/related-history", handler.ListRelatedHistory)
		api.GET("/related-history/:id", handler.LoadRelatedHistoryEntry)
		api.DELETE("/related-history/:id", handler.DeleteRelatedHistoryEntry)
		api.DELETE("/related-history", handler.ClearRelatedHistory)

		api.GET("/visited", handler.ListVisited)
		api.POST("/visited/:id", handler.MarkVisited)
		api.DELETE("/visited", handler.ClearVisited)

		api.GET("/export.csv", handler.ExportCSV)
	}

	return r
}

// Run serves the engine until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, engine *gin.Engine, port int, logger *zerolog.Logger) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      engine,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info().Int("port", port).Msg("http server listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}

	logger.Info().Msg("http server stopped")

	return nil
}

func requestLogger(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)

			return
		}

		c.Next()
	}
}
