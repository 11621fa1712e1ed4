package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultURL is the fragment endpoint used when none is configured.
const DefaultURL = "http://localhost:8080/fragment?id={id}"

// Config defines configuration for the glean CLI.
type Config struct {
	URL              string        `yaml:"url"`
	MaxID            int64         `yaml:"max_id"`
	InitialRequests  int           `yaml:"initial_requests"`
	QuietPeriod      time.Duration `yaml:"quiet_period"`
	ExtraRequests    int           `yaml:"extra_requests"`
	BackfillInterval time.Duration `yaml:"backfill_interval"`
	RequestTimeout   time.Duration `yaml:"request_timeout"`
	MaxIdleConns     int           `yaml:"max_idle_conns"`
	RateLimit        float64       `yaml:"rate_limit"`
	RateBurst        int           `yaml:"rate_burst"`
	Progress         bool          `yaml:"progress"`
	Bucket           string        `yaml:"bucket"`
	Object           string        `yaml:"object"`
	MetricsAddr      string        `yaml:"metrics_addr"`
	LogLevel         string        `yaml:"log_level"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		URL:              DefaultURL,
		MaxID:            9223372036854775807,
		InitialRequests:  500,
		QuietPeriod:      50 * time.Millisecond,
		ExtraRequests:    50,
		BackfillInterval: 50 * time.Millisecond,
		RequestTimeout:   10 * time.Second,
		MaxIdleConns:     100,
		LogLevel:         "warn",
	}
}

// yamlConfig is used for YAML unmarshaling with string durations.
type yamlConfig struct {
	URL              string  `yaml:"url"`
	MaxID            int64   `yaml:"max_id"`
	InitialRequests  int     `yaml:"initial_requests"`
	QuietPeriod      string  `yaml:"quiet_period"`
	ExtraRequests    int     `yaml:"extra_requests"`
	BackfillInterval string  `yaml:"backfill_interval"`
	RequestTimeout   string  `yaml:"request_timeout"`
	MaxIdleConns     int     `yaml:"max_idle_conns"`
	RateLimit        float64 `yaml:"rate_limit"`
	RateBurst        int     `yaml:"rate_burst"`
	Progress         bool    `yaml:"progress"`
	Bucket           string  `yaml:"bucket"`
	Object           string  `yaml:"object"`
	MetricsAddr      string  `yaml:"metrics_addr"`
	LogLevel         string  `yaml:"log_level"`
}

// LoadFromFile loads configuration from a YAML file.
func LoadFromFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return Config{}, fmt.Errorf("parse config file: %w", err)
	}

	cfg := Default()

	if yc.URL != "" {
		cfg.URL = yc.URL
	}
	if yc.MaxID != 0 {
		cfg.MaxID = yc.MaxID
	}
	if yc.InitialRequests != 0 {
		cfg.InitialRequests = yc.InitialRequests
	}
	if yc.ExtraRequests != 0 {
		cfg.ExtraRequests = yc.ExtraRequests
	}
	if yc.MaxIdleConns != 0 {
		cfg.MaxIdleConns = yc.MaxIdleConns
	}
	durations := []struct {
		name  string
		value string
		dst   *time.Duration
	}{
		{"quiet_period", yc.QuietPeriod, &cfg.QuietPeriod},
		{"backfill_interval", yc.BackfillInterval, &cfg.BackfillInterval},
		{"request_timeout", yc.RequestTimeout, &cfg.RequestTimeout},
	}
	for _, d := range durations {
		if d.value == "" {
			continue
		}
		v, err := time.ParseDuration(d.value)
		if err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", d.name, err)
		}
		*d.dst = v
	}
	cfg.RateLimit = yc.RateLimit
	cfg.RateBurst = yc.RateBurst
	cfg.Progress = yc.Progress
	cfg.Bucket = yc.Bucket
	cfg.Object = yc.Object
	cfg.MetricsAddr = yc.MetricsAddr
	if yc.LogLevel != "" {
		cfg.LogLevel = yc.LogLevel
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the GLEAN_ prefix.
func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("GLEAN_URL"); v != "" {
		c.URL = v
	}
	if v := os.Getenv("GLEAN_MAX_ID"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse GLEAN_MAX_ID: %w", err)
		}
		c.MaxID = n
	}

	ints := []struct {
		name string
		dst  *int
	}{
		{"GLEAN_INITIAL_REQUESTS", &c.InitialRequests},
		{"GLEAN_EXTRA_REQUESTS", &c.ExtraRequests},
		{"GLEAN_MAX_IDLE_CONNS", &c.MaxIdleConns},
		{"GLEAN_RATE_BURST", &c.RateBurst},
	}
	for _, e := range ints {
		if v := os.Getenv(e.name); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", e.name, err)
			}
			*e.dst = n
		}
	}

	durations := []struct {
		name string
		dst  *time.Duration
	}{
		{"GLEAN_QUIET_PERIOD", &c.QuietPeriod},
		{"GLEAN_BACKFILL_INTERVAL", &c.BackfillInterval},
		{"GLEAN_REQUEST_TIMEOUT", &c.RequestTimeout},
	}
	for _, e := range durations {
		if v := os.Getenv(e.name); v != "" {
			d, err := time.ParseDuration(v)
			if err != nil {
				return fmt.Errorf("parse %s: %w", e.name, err)
			}
			*e.dst = d
		}
	}

	if v := os.Getenv("GLEAN_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse GLEAN_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v := os.Getenv("GLEAN_PROGRESS"); v != "" {
		c.Progress = v == "true" || v == "1"
	}
	if v := os.Getenv("GLEAN_BUCKET"); v != "" {
		c.Bucket = v
	}
	if v := os.Getenv("GLEAN_OBJECT"); v != "" {
		c.Object = v
	}
	if v := os.Getenv("GLEAN_METRICS_ADDR"); v != "" {
		c.MetricsAddr = v
	}
	if v := os.Getenv("GLEAN_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.URL == "" {
		return errors.New("config: url is required")
	}
	if !strings.Contains(c.URL, "{id}") {
		return errors.New("config: url must contain the {id} placeholder")
	}
	if c.MaxID <= 0 {
		return errors.New("config: max_id must be positive")
	}
	if c.InitialRequests <= 0 {
		return errors.New("config: initial_requests must be positive")
	}
	if c.ExtraRequests <= 0 {
		return errors.New("config: extra_requests must be positive")
	}
	if c.QuietPeriod <= 0 {
		return errors.New("config: quiet_period must be positive")
	}
	if c.BackfillInterval <= 0 {
		return errors.New("config: backfill_interval must be positive")
	}
	if c.RequestTimeout < 0 {
		return errors.New("config: request_timeout must not be negative")
	}
	if c.RateLimit < 0 || c.RateBurst < 0 {
		return errors.New("config: rate_limit and rate_burst must not be negative")
	}
	if (c.Bucket == "") != (c.Object == "") {
		return errors.New("config: bucket and object must be set together")
	}
	return nil
}

// Merge merges override values into c, returning a new Config.
//
// When set is non-nil it decides per yaml key whether override carries a
// value, so explicit zero values such as rate_limit 0 or progress false
// still win. A nil set applies only the non-zero fields of override.
func (c Config) Merge(override Config, set func(key string) bool) Config {
	apply := func(key string, nonZero bool) bool {
		if set != nil {
			return set(key)
		}
		return nonZero
	}

	if apply("url", override.URL != "") {
		c.URL = override.URL
	}
	if apply("max_id", override.MaxID != 0) {
		c.MaxID = override.MaxID
	}
	if apply("initial_requests", override.InitialRequests != 0) {
		c.InitialRequests = override.InitialRequests
	}
	if apply("quiet_period", override.QuietPeriod != 0) {
		c.QuietPeriod = override.QuietPeriod
	}
	if apply("extra_requests", override.ExtraRequests != 0) {
		c.ExtraRequests = override.ExtraRequests
	}
	if apply("backfill_interval", override.BackfillInterval != 0) {
		c.BackfillInterval = override.BackfillInterval
	}
	if apply("request_timeout", override.RequestTimeout != 0) {
		c.RequestTimeout = override.RequestTimeout
	}
	if apply("max_idle_conns", override.MaxIdleConns != 0) {
		c.MaxIdleConns = override.MaxIdleConns
	}
	if apply("rate_limit", override.RateLimit != 0) {
		c.RateLimit = override.RateLimit
	}
	if apply("rate_burst", override.RateBurst != 0) {
		c.RateBurst = override.RateBurst
	}
	if apply("progress", override.Progress) {
		c.Progress = override.Progress
	}
	if apply("bucket", override.Bucket != "") {
		c.Bucket = override.Bucket
	}
	if apply("object", override.Object != "") {
		c.Object = override.Object
	}
	if apply("metrics_addr", override.MetricsAddr != "") {
		c.MetricsAddr = override.MetricsAddr
	}
	if apply("log_level", override.LogLevel != "") {
		c.LogLevel = override.LogLevel
	}
	return c
}
