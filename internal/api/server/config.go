package server

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/ticker-news/pkg/config/env"
	"github.com/DjordjeVuckovic/ticker-news/pkg/stringsutil"
)

const DefaultPort = "8080"

type Config struct {
	Port            string
	UseHttp2        bool
	CorsOrigins     []string
	ShutdownTimeout time.Duration
}

// LoadConfig reads PORT, USE_HTTP2, CORS_ORIGINS and SHUTDOWN_TIMEOUT. Any
// .env file must already be loaded.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:        os.Getenv("PORT"),
		UseHttp2:    os.Getenv("USE_HTTP2") == "true",
		CorsOrigins: stringsutil.SplitAndTrim(os.Getenv("CORS_ORIGINS"), ","),
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if n, err := strconv.Atoi(cfg.Port); err != nil || n < 1 || n > 65535 {
		return nil, fmt.Errorf("invalid port %q: must be a number between 1 and 65535", cfg.Port)
	}
	if len(cfg.CorsOrigins) == 0 {
		cfg.CorsOrigins = []string{"*"}
	}

	timeout, err := env.Duration("SHUTDOWN_TIMEOUT", GracefulShutdownTimeout)
	if err != nil {
		return nil, err
	}
	cfg.ShutdownTimeout = timeout

	return cfg, nil
}
