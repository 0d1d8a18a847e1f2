package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/BinitGoswami/my-placement/internal/model"
)

type Config struct {
	APIURL       string         `validate:"required,url"`                // PLACEMENT_API_URL (default "http://localhost:5000/api")
	StateDir     string         `validate:"required"`                    // PLACEMENT_STATE_DIR (default "<user config dir>/placement")
	PageSize     model.PageSize `validate:"gte=-1"`                      // PLACEMENT_PAGE_SIZE (default 10; "all" = unbounded)
	Debounce     time.Duration  `validate:"gte=0"`                       // PLACEMENT_SEARCH_DEBOUNCE (default 400ms)
	NotifyFor    time.Duration  `validate:"gt=0"`                        // PLACEMENT_NOTIFY_DURATION (default 3s)
	FrozenMarker string         `validate:"required"`                    // PLACEMENT_FROZEN_MARKER (default "frozen")
	Timeout      time.Duration  `validate:"gt=0"`                        // PLACEMENT_TIMEOUT (default 30s)
	RateLimit    float64        `validate:"gte=0"`                       // PLACEMENT_RATE_LIMIT (requests/s, default 0 = unlimited)
	NATSURL      string         `validate:"omitempty,url"`               // PLACEMENT_NATS_URL (optional, empty = no live refresh)
	LogFile      string         `validate:"omitempty"`                   // PLACEMENT_LOG_FILE (optional, empty = stderr)
	LogLevel     string         `validate:"oneof=debug info warn error"` // PLACEMENT_LOG_LEVEL (default "info")
}

// DotEnvFile is read, if present, before the environment. Variables already
// set in the environment win.
const DotEnvFile = ".env"

// Load reads configuration from the environment, after merging DotEnvFile.
func Load() (*Config, error) {
	if err := godotenv.Load(DotEnvFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("reading %s: %w", DotEnvFile, err)
	}

	c := &Config{
		APIURL:       strings.TrimRight(envOrDefault("PLACEMENT_API_URL", "http://localhost:5000/api"), "/"),
		StateDir:     envOrDefault("PLACEMENT_STATE_DIR", defaultStateDir()),
		FrozenMarker: envOrDefault("PLACEMENT_FROZEN_MARKER", "frozen"),
		NATSURL:      os.Getenv("PLACEMENT_NATS_URL"),
		LogFile:      os.Getenv("PLACEMENT_LOG_FILE"),
		LogLevel:     strings.ToLower(envOrDefault("PLACEMENT_LOG_LEVEL", "info")),
	}

	size, err := model.ParsePageSize(envOrDefault("PLACEMENT_PAGE_SIZE", "10"))
	if err != nil {
		return nil, fmt.Errorf("PLACEMENT_PAGE_SIZE: %w", err)
	}
	c.PageSize = size

	for _, d := range []struct {
		key      string
		fallback string
		dst      *time.Duration
	}{
		{"PLACEMENT_SEARCH_DEBOUNCE", "400ms", &c.Debounce},
		{"PLACEMENT_NOTIFY_DURATION", "3s", &c.NotifyFor},
		{"PLACEMENT_TIMEOUT", "30s", &c.Timeout},
	} {
		v, err := time.ParseDuration(envOrDefault(d.key, d.fallback))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = v
	}

	if s := os.Getenv("PLACEMENT_RATE_LIMIT"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("PLACEMENT_RATE_LIMIT: %w", err)
		}
		c.RateLimit = v
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks field constraints, naming the offending variable.
func (c *Config) Validate() error {
	err := validator.New().Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: failed %q", envNames[fe.Field()], fe.Tag()))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

var envNames = map[string]string{
	"APIURL":       "PLACEMENT_API_URL",
	"StateDir":     "PLACEMENT_STATE_DIR",
	"Debounce":     "PLACEMENT_SEARCH_DEBOUNCE",
	"NotifyFor":    "PLACEMENT_NOTIFY_DURATION",
	"FrozenMarker": "PLACEMENT_FROZEN_MARKER",
	"Timeout":      "PLACEMENT_TIMEOUT",
	"RateLimit":    "PLACEMENT_RATE_LIMIT",
	"NATSURL":      "PLACEMENT_NATS_URL",
	"LogLevel":     "PLACEMENT_LOG_LEVEL",
}

func defaultStateDir() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".placement"
	}
	return filepath.Join(dir, "placement")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
