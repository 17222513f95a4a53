// Package config loads server settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all server settings.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Rules     RulesConfig     `yaml:"rules"`
	Log       LogConfig       `yaml:"log"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// ServerConfig configures the listener and storage paths.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	DBPath          string        `yaml:"db_path"`
	JournalDir      string        `yaml:"journal_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	AIDelay         time.Duration `yaml:"ai_delay"`
}

// RulesConfig holds defaults for newly created games.
type RulesConfig struct {
	VictoryPoints int `yaml:"victory_points"`
	MaxPlayers    int `yaml:"max_players"`
}

// LogConfig configures the slog handler.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // text or json
}

// RateLimitConfig is the per-connection message token bucket.
type RateLimitConfig struct {
	PerSecond float64 `yaml:"per_second"`
	Burst     int     `yaml:"burst"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:            ":30000",
			DBPath:          "data/settlers.db",
			JournalDir:      "data/journal",
			ShutdownTimeout: 5 * time.Second,
			AIDelay:         0,
		},
		Rules: RulesConfig{
			VictoryPoints: 10,
			MaxPlayers:    4,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		RateLimit: RateLimitConfig{
			PerSecond: 20,
			Burst:     40,
		},
	}
}

// Load reads the file at path over the defaults. An empty path returns the
// defaults.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from PORT and DB_PATH, as set by hosting
// platforms.
func (c *Config) ApplyEnv() {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if path := os.Getenv("DB_PATH"); path != "" {
		c.Server.DBPath = path
	}
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return errors.New("server.addr is required")
	}
	if strings.TrimSpace(c.Server.DBPath) == "" {
		return errors.New("server.db_path is required")
	}
	if c.Rules.VictoryPoints < 3 {
		return fmt.Errorf("rules.victory_points must be at least 3, got %d", c.Rules.VictoryPoints)
	}
	if c.Rules.MaxPlayers < 2 || c.Rules.MaxPlayers > 4 {
		return fmt.Errorf("rules.max_players must be between 2 and 4, got %d", c.Rules.MaxPlayers)
	}
	if c.RateLimit.PerSecond <= 0 || c.RateLimit.Burst < 1 {
		return errors.New("rate_limit.per_second and rate_limit.burst must be positive")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return err
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// SlogLevel parses the configured level.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log.level: %w", err)
	}
	return lvl, nil
}

// NewLogger builds a logger writing to f in the configured format.
func (l LogConfig) NewLogger(f *os.File) *slog.Logger {
	lvl, _ := l.SlogLevel()
	opts := &slog.HandlerOptions{Level: lvl}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(f, opts))
	}
	return slog.New(slog.NewTextHandler(f, opts))
}
