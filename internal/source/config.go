package source

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"
)

const defaultHTTPTimeout = 15 * time.Second

type Config struct {
	Type        Type
	GNews       GNewsConfig
	RSS         RSSConfig
	HTTPTimeout time.Duration
}

func LoadEnv() (*Config, error) {
	sourceType := Type(os.Getenv("SOURCE_TYPE"))
	if sourceType == "" {
		sourceType = GNewsType
	}
	if sourceType != GNewsType && sourceType != RSSType && sourceType != StaticType {
		slog.Error("Invalid SOURCE_TYPE environment variable value", "value", sourceType)
		return nil, fmt.Errorf("invalid SOURCE_TYPE value: %s, expected one of %v",
			sourceType, []Type{GNewsType, RSSType, StaticType})
	}

	cfg := &Config{
		Type:        sourceType,
		HTTPTimeout: defaultHTTPTimeout,
	}

	retry := DefaultRetryConfig()
	if v := os.Getenv("FETCH_MAX_RETRIES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid FETCH_MAX_RETRIES value: %s", v)
		}
		retry.MaxRetries = n
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("invalid HTTP_TIMEOUT value: %s", v)
		}
		cfg.HTTPTimeout = d
	}

	switch sourceType {
	case GNewsType:
		cfg.GNews = GNewsConfig{
			BaseURL: os.Getenv("GNEWS_URL"),
			APIKey:  os.Getenv("GNEWS_API_KEY"),
			Lang:    os.Getenv("GNEWS_LANG"),
			Retry:   retry,
		}
		if cfg.GNews.APIKey == "" {
			slog.Error("GNEWS_API_KEY environment variable is not set")
			return nil, fmt.Errorf("GNEWS_API_KEY environment variable is not set")
		}

		var err error
		if cfg.GNews.MaxRequests, err = intEnv("MAX_NUM_REQUESTS"); err != nil {
			return nil, err
		}
		if cfg.GNews.ArticlesPerRequest, err = intEnv("MAX_ARTICLES_PER_REQUEST"); err != nil {
			return nil, err
		}
	case RSSType:
		cfg.RSS = RSSConfig{
			URLTemplate: os.Getenv("RSS_URL_TEMPLATE"),
			UserAgent:   os.Getenv("RSS_USER_AGENT"),
			Retry:       retry,
		}
	}

	return cfg, nil
}

// New builds the configured fetcher. query is used for every provider that
// searches by text; nil falls back to DefaultQuery.
func New(cfg Config, query QueryFunc) (Fetcher, error) {
	client := &http.Client{Timeout: cfg.HTTPTimeout}

	switch cfg.Type {
	case GNewsType:
		gcfg := cfg.GNews
		gcfg.Query = query
		return NewGNews(gcfg, client), nil
	case RSSType:
		rcfg := cfg.RSS
		rcfg.Query = query
		return NewRSS(rcfg, client), nil
	case StaticType:
		slog.Warn("Using static source, no provider will be called")
		return NewStatic(), nil
	default:
		return nil, fmt.Errorf("unsupported source type: %s", cfg.Type)
	}
}

// QueryOverrides uses the override for a ticker when present and
// DefaultQuery otherwise.
func QueryOverrides(overrides map[string]string) QueryFunc {
	return func(ticker string) string {
		if q, ok := overrides[ticker]; ok {
			return q
		}
		return DefaultQuery(ticker)
	}
}

func intEnv(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid %s value: %s", key, v)
	}
	return n, nil
}
