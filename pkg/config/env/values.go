package env

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"
)

// LogLevel parses LOG_LEVEL (debug, info, warn, error). Empty means info.
func LogLevel() (slog.Level, error) {
	var level slog.Level
	v := os.Getenv("LOG_LEVEL")
	if v == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL value: %s", v)
	}
	return level, nil
}

// Duration reads a time.Duration such as "15m" or "168h", or def when unset.
func Duration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s value: %s", key, v)
	}
	return d, nil
}

// Int reads a positive integer, or def when unset.
func Int(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid %s value: %s", key, v)
	}
	return n, nil
}

// Date reads an RFC3339 timestamp or a YYYY-MM-DD date in UTC. Unset
// yields the zero time.
func Date(key string) (time.Time, error) {
	v := os.Getenv(key)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	t, err := time.Parse(time.DateOnly, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid %s value: %s", key, v)
	}
	return t, nil
}
