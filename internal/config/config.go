// Package config loads procscope settings from an optional JSON file
// with environment variable overrides, and persists UI state between
// sessions.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/tidwall/gjson"
)

// Defaults.
const (
	DefaultIntervalSeconds = 5
	DefaultWindow          = 30
	DefaultTopK            = 5
	DefaultLogLevel        = "info"
)

// Config holds the monitor settings.
type Config struct {
	// Interval is the sampling period.
	Interval time.Duration

	// Window is the number of retained samples per series.
	Window int

	// TopK is the automatic chart selection size.
	TopK int

	// LogLevel is one of debug, info, warn, error.
	LogLevel string

	// LogFile receives log output. Empty means stderr.
	LogFile string

	// Palette overrides the chart palette with hex colors. Empty
	// keeps the built-in palette.
	Palette []string
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Interval: DefaultIntervalSeconds * time.Second,
		Window:   DefaultWindow,
		TopK:     DefaultTopK,
		LogLevel: DefaultLogLevel,
	}
}

// Load reads configuration from the JSON file at path (skipped when
// path is empty or the file does not exist), then applies environment
// overrides. A .env file in the working directory is honored.
func Load(path string) (Config, error) {
	// Missing .env just means plain environment variables.
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// Defaults apply.
		case err != nil:
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		default:
			if !gjson.ValidBytes(data) {
				return cfg, fmt.Errorf("config %s: invalid JSON", path)
			}
			applyJSON(&cfg, data)
		}
	}

	applyEnv(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyJSON(cfg *Config, data []byte) {
	if v := gjson.GetBytes(data, "interval_seconds"); v.Exists() {
		cfg.Interval = time.Duration(v.Int()) * time.Second
	}
	if v := gjson.GetBytes(data, "window"); v.Exists() {
		cfg.Window = int(v.Int())
	}
	if v := gjson.GetBytes(data, "top_k"); v.Exists() {
		cfg.TopK = int(v.Int())
	}
	if v := gjson.GetBytes(data, "log.level"); v.Exists() {
		cfg.LogLevel = v.String()
	}
	if v := gjson.GetBytes(data, "log.file"); v.Exists() {
		cfg.LogFile = v.String()
	}
	if v := gjson.GetBytes(data, "palette"); v.IsArray() {
		cfg.Palette = nil
		for _, c := range v.Array() {
			cfg.Palette = append(cfg.Palette, c.String())
		}
	}
}

func applyEnv(cfg *Config) {
	if v, ok := envInt("PROCSCOPE_INTERVAL_SECONDS"); ok {
		cfg.Interval = time.Duration(v) * time.Second
	}
	if v, ok := envInt("PROCSCOPE_WINDOW"); ok {
		cfg.Window = v
	}
	if v, ok := envInt("PROCSCOPE_TOP_K"); ok {
		cfg.TopK = v
	}
	if v := os.Getenv("PROCSCOPE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("PROCSCOPE_LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
}

func envInt(key string) (int, bool) {
	v := os.Getenv(key)
	if v == "" {
		return 0, false
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

func (c Config) validate() error {
	if c.Interval < time.Second {
		return fmt.Errorf("interval must be at least 1s, got %v", c.Interval)
	}
	if c.Window < 1 {
		return fmt.Errorf("window must be positive, got %d", c.Window)
	}
	if c.TopK < 1 {
		return fmt.Errorf("top_k must be positive, got %d", c.TopK)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return nil
}
