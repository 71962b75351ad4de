package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv        string `env:"APP_ENV" envDefault:"local"`
	HTTPPort      int    `env:"HTTP_PORT" envDefault:"8080"`
	SQLitePath    string `env:"SQLITE_PATH" envDefault:"./channel-search.db"`
	YouTubeAPIKey string `env:"YOUTUBE_API_KEY,required"`

	// Upstream search behavior
	SearchPageSize   int           `env:"SEARCH_PAGE_SIZE" envDefault:"50"`
	DetailsBatchSize int           `env:"DETAILS_BATCH_SIZE" envDefault:"50"`
	MaxTargetCount   int           `env:"MAX_TARGET_COUNT" envDefault:"500"`
	YouTubeBaseURL   string        `env:"YOUTUBE_BASE_URL" envDefault:"https://www.googleapis.com/youtube/v3"`
	YouTubeTimeout   time.Duration `env:"YOUTUBE_TIMEOUT" envDefault:"30s"`
	YouTubeRPS       float64       `env:"YOUTUBE_RPS" envDefault:"10"`

	// Last-activity enrichment
	ActivitySource      string        `env:"ACTIVITY_SOURCE" envDefault:"api"` // api | feed
	ActivityConcurrency int           `env:"ACTIVITY_CONCURRENCY" envDefault:"0"`
	ActivityMonths      int           `env:"ACTIVITY_MONTHS" envDefault:"12"`
	FeedBaseURL         string        `env:"FEED_BASE_URL" envDefault:"https://www.youtube.com/feeds/videos.xml"`
	FeedTimeout         time.Duration `env:"FEED_TIMEOUT" envDefault:"15s"`

	// History persistence
	HistoryCap int `env:"HISTORY_CAP" envDefault:"20"`

	// Keyword generation
	LLMAPIKey string  `env:"LLM_API_KEY"`
	LLMModel  string  `env:"LLM_MODEL" envDefault:"gpt-4o-mini"`
	LLMRPS    float64 `env:"LLM_RPS" envDefault:"1"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
