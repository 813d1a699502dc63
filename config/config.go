// Package config loads game configuration from an optional YAML file
// with environment-variable overrides. Secrets (the remote write token)
// come from the environment only.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config collects every tunable of the game and the ranking store
type Config struct {
	Game struct {
		MinDelayMs    int `yaml:"min_delay_ms"`
		MaxDelayMs    int `yaml:"max_delay_ms"`
		MinValidScore int `yaml:"min_valid_score"`
		MaxValidScore int `yaml:"max_valid_score"`
	} `yaml:"game"`

	Ranking struct {
		MaxRecords       int    `yaml:"max_records"`
		DisplayCount     int    `yaml:"display_count"`
		CacheTTLSeconds  int    `yaml:"cache_ttl_seconds"`
		RetryBackoffS    int    `yaml:"retry_backoff_seconds"`
		DuplicateWindowS int    `yaml:"duplicate_window_seconds"`
		ScoreToleranceMs int    `yaml:"score_tolerance_ms"`
		MaxDataBytes     int    `yaml:"max_data_bytes"`
		CacheFile        string `yaml:"cache_file"`
		SyncFile         string `yaml:"sync_file"`
	} `yaml:"ranking"`

	Remote struct {
		URL            string `yaml:"url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"remote"`

	Audio struct {
		Volume float64 `yaml:"volume"`
		Muted  bool    `yaml:"muted"`
	} `yaml:"audio"`
}

// Default returns the stock configuration
func Default() Config {
	var c Config
	c.Game.MinDelayMs = 2000
	c.Game.MaxDelayMs = 5000
	c.Game.MinValidScore = 50
	c.Game.MaxValidScore = 10000

	c.Ranking.MaxRecords = 10
	c.Ranking.DisplayCount = 5
	c.Ranking.CacheTTLSeconds = 30
	c.Ranking.RetryBackoffS = 5
	c.Ranking.DuplicateWindowS = 10
	c.Ranking.ScoreToleranceMs = 5
	c.Ranking.MaxDataBytes = 50000
	c.Ranking.CacheFile = "ranking.json"
	c.Ranking.SyncFile = "ranking.sync"

	c.Remote.TimeoutSeconds = 10

	c.Audio.Volume = 0.5
	return c
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides. A missing file is not an error; defaults and
// environment still apply.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// File optional
		case err != nil:
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides the loaded values from IMADA_* variables
func (c *Config) applyEnv() {
	c.Remote.URL = getEnv("IMADA_REMOTE_URL", c.Remote.URL)
	c.Remote.TimeoutSeconds = getEnvAsInt("IMADA_REMOTE_TIMEOUT_SECONDS", c.Remote.TimeoutSeconds)

	c.Ranking.CacheFile = getEnv("IMADA_CACHE_FILE", c.Ranking.CacheFile)
	c.Ranking.SyncFile = getEnv("IMADA_SYNC_FILE", c.Ranking.SyncFile)
	c.Ranking.CacheTTLSeconds = getEnvAsInt("IMADA_CACHE_TTL_SECONDS", c.Ranking.CacheTTLSeconds)

	c.Game.MinDelayMs = getEnvAsInt("IMADA_MIN_DELAY_MS", c.Game.MinDelayMs)
	c.Game.MaxDelayMs = getEnvAsInt("IMADA_MAX_DELAY_MS", c.Game.MaxDelayMs)
}

// RemoteToken returns the shared-document write token, environment only
func RemoteToken() string {
	return os.Getenv("IMADA_REMOTE_TOKEN")
}

func (c *Config) validate() error {
	if c.Game.MinDelayMs <= 0 || c.Game.MaxDelayMs < c.Game.MinDelayMs {
		return fmt.Errorf("invalid delay interval [%d, %d]", c.Game.MinDelayMs, c.Game.MaxDelayMs)
	}
	if c.Game.MinValidScore <= 0 || c.Game.MaxValidScore < c.Game.MinValidScore {
		return fmt.Errorf("invalid score bounds [%d, %d]", c.Game.MinValidScore, c.Game.MaxValidScore)
	}
	if c.Ranking.MaxRecords < c.Ranking.DisplayCount {
		return fmt.Errorf("max_records %d below display_count %d", c.Ranking.MaxRecords, c.Ranking.DisplayCount)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("audio volume %f outside [0, 1]", c.Audio.Volume)
	}
	return nil
}

// MinDelay returns the cue interval lower bound as a duration
func (c *Config) MinDelay() time.Duration {
	return time.Duration(c.Game.MinDelayMs) * time.Millisecond
}

// MaxDelay returns the cue interval upper bound as a duration
func (c *Config) MaxDelay() time.Duration {
	return time.Duration(c.Game.MaxDelayMs) * time.Millisecond
}

// CacheTTL returns the remote-fetch cache time-to-live
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Ranking.CacheTTLSeconds) * time.Second
}

// RetryBackoff returns how long a failed remote fetch suppresses retries
func (c *Config) RetryBackoff() time.Duration {
	return time.Duration(c.Ranking.RetryBackoffS) * time.Second
}

// DuplicateWindow returns the double-submit recency window
func (c *Config) DuplicateWindow() time.Duration {
	return time.Duration(c.Ranking.DuplicateWindowS) * time.Second
}

// RemoteTimeout returns the shared-document request timeout
func (c *Config) RemoteTimeout() time.Duration {
	return time.Duration(c.Remote.TimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
