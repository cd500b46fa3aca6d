// Package config loads epimap settings from the environment, optionally
// seeded from a .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/zalepa/epimap/dataset"
	"github.com/zalepa/epimap/geo"
	"github.com/zalepa/epimap/trend"
)

// Config holds all settings. Subcommand flags default to these values.
type Config struct {
	DataFile     string
	PastDataFile string
	DataURL      string
	PastDataURL  string
	DataDir      string

	Marker       string
	RegionColumn string
	Sentinels    []string // always includes dataset.DefaultSentinels
	ExtraRegions []string // "name=lat,lon"

	// NormalizeNames maps official long region names such as "서울특별시"
	// onto table keys. Off, names must match a key exactly.
	NormalizeNames bool

	PastYear     int
	FutureOffset int

	// KnownMetrics is the list of tracked disease columns offered first in
	// the dashboard selector. Preparation never depends on it.
	KnownMetrics []string

	HTTPPort  string
	LogLevel  string
	LogFormat string
	CacheSize int
}

// Load reads configuration from environment variables, applying defaults
// where unset. envFiles are loaded first; with none given, a .env in the
// working directory is used when present.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil {
		if len(envFiles) > 0 || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load env: %w", err)
		}
	}

	pastYear, err := envInt("PAST_YEAR", trend.DefaultPastYear)
	if err != nil {
		return nil, err
	}
	futureOffset, err := envInt("FUTURE_OFFSET", trend.DefaultHorizon)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("CACHE_SIZE", 8)
	if err != nil {
		return nil, err
	}
	normalize, err := envBool("NORMALIZE_NAMES", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		DataFile:     envOrDefault("DATA_FILE", "data.csv"),
		PastDataFile: envOrDefault("PAST_DATA_FILE", "data_past.csv"),
		DataURL:      os.Getenv("DATA_URL"),
		PastDataURL:  os.Getenv("PAST_DATA_URL"),
		DataDir:      envOrDefault("DATA_DIR", "."),
		Marker:       envOrDefault("PERCENT_MARKER", dataset.DefaultMarker),
		RegionColumn: os.Getenv("REGION_COLUMN"),
		Sentinels:    dataset.MergeSentinels(splitList(os.Getenv("SENTINELS"))),
		ExtraRegions: splitSemicolons(os.Getenv("EXTRA_REGION")),
		PastYear:     pastYear,
		FutureOffset: futureOffset,
		KnownMetrics: splitList(os.Getenv("KNOWN_METRICS")),
		HTTPPort:     envOrDefault("HTTP_PORT", "8080"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "text"),
		CacheSize:    cacheSize,

		NormalizeNames: normalize,
	}

	if cfg.FutureOffset <= 0 {
		return nil, errors.New("FUTURE_OFFSET must be positive")
	}
	if cfg.CacheSize <= 0 {
		return nil, errors.New("CACHE_SIZE must be positive")
	}
	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, fmt.Errorf("invalid LOG_FORMAT %q; valid options: json, text", cfg.LogFormat)
	}
	if _, err := cfg.Regions(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Regions returns the default coordinate table extended with ExtraRegions.
func (c *Config) Regions() (geo.Table, error) {
	tbl := geo.Default()
	for _, e := range c.ExtraRegions {
		name, coord, err := geo.ParseEntry(e)
		if err != nil {
			return geo.Table{}, fmt.Errorf("EXTRA_REGION: %w", err)
		}
		tbl = tbl.With(name, coord)
	}
	return tbl, nil
}

// DatasetOptions builds preparation options from the config.
func (c *Config) DatasetOptions() (dataset.Options, error) {
	tbl, err := c.Regions()
	if err != nil {
		return dataset.Options{}, err
	}
	return dataset.Options{
		RegionColumn:   c.RegionColumn,
		Marker:         c.Marker,
		Sentinels:      c.Sentinels,
		NormalizeNames: c.NormalizeNames,
		Regions:        tbl,
	}, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q", key, s)
	}
	return n, nil
}

func envBool(key string, def bool) (bool, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("invalid %s %q", key, s)
	}
	return b, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// splitSemicolons splits region entries, which carry commas of their own.
func splitSemicolons(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
