// Package config handles TOML-based configuration loading and validation.
// Precedence is defaults, then the config file, then environment, then
// whatever flags the caller applies on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

const appName = "vidresolve"

// EnvVKToken overrides vk.access_token when set.
const EnvVKToken = "VIDRESOLVE_VK_TOKEN"

// Config holds all application configuration.
type Config struct {
	UserAgent       string  `toml:"user_agent"`
	MaxRetries      int     `toml:"max_retries"`
	BaseDelayMS     int     `toml:"base_delay_ms"`
	MaxDelayMS      int     `toml:"max_delay_ms"`
	TimeoutMS       int     `toml:"timeout_ms"`
	Passthrough     bool    `toml:"passthrough"`
	RaceMethods     bool    `toml:"race_methods"`
	GenericFallback bool    `toml:"generic_fallback"`
	RateLimit       float64 `toml:"rate_limit"` // requests per second per host, 0 = unlimited
	LogLevel        string  `toml:"log_level"`
	Player          string  `toml:"player"` // used by --play

	Cache  CacheConfig  `toml:"cache"`
	VK     VKConfig     `toml:"vk"`
	Server ServerConfig `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Enabled    bool   `toml:"enabled"`
	Backend    string `toml:"backend"`
	TTLSeconds int    `toml:"ttl_seconds"`
	RedisAddr  string `toml:"redis_addr"`
	SQLitePath string `toml:"sqlite_path"`
}

// VKConfig holds VK API credentials.
type VKConfig struct {
	AccessToken string `toml:"access_token"`
	APIVersion  string `toml:"api_version"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		MaxRetries:      3,
		BaseDelayMS:     1000,
		MaxDelayMS:      30000,
		TimeoutMS:       15000,
		GenericFallback: true,
		LogLevel:        "warn",
		Player:          "mpv",
		Cache: CacheConfig{
			Enabled:    true,
			Backend:    "memory",
			TTLSeconds: 300,
			RedisAddr:  "localhost:6379",
		},
		VK: VKConfig{
			APIVersion: "5.131",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8080",
		},
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Default()
		cfg.applyEnv()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if err == nil {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if tok := strings.TrimSpace(os.Getenv(EnvVKToken)); tok != "" {
		c.VK.AccessToken = tok
	}
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.MaxRetries < 1 || c.MaxRetries > 10 {
		return fmt.Errorf("max_retries must be between 1 and 10, got %d", c.MaxRetries)
	}
	if c.BaseDelayMS <= 0 {
		return fmt.Errorf("base_delay_ms must be positive, got %d", c.BaseDelayMS)
	}
	if c.MaxDelayMS < c.BaseDelayMS {
		return fmt.Errorf("max_delay_ms (%d) must not be below base_delay_ms (%d)", c.MaxDelayMS, c.BaseDelayMS)
	}
	if c.TimeoutMS <= 0 {
		return fmt.Errorf("timeout_ms must be positive, got %d", c.TimeoutMS)
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit cannot be negative")
	}

	validLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLevels[strings.ToLower(c.LogLevel)] {
		return fmt.Errorf("unsupported log_level %q (valid: debug, info, warn, error)", c.LogLevel)
	}

	validPlayers := map[string]bool{
		"mpv": true, "vlc": true, "iina": true, "celluloid": true,
	}
	if !validPlayers[strings.ToLower(c.Player)] {
		return fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", c.Player)
	}

	validBackends := map[string]bool{
		"memory": true, "redis": true, "sqlite": true,
	}
	if !validBackends[strings.ToLower(c.Cache.Backend)] {
		return fmt.Errorf("unsupported cache backend %q (valid: memory, redis, sqlite)", c.Cache.Backend)
	}
	if c.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache ttl_seconds cannot be negative")
	}
	if strings.EqualFold(c.Cache.Backend, "redis") && c.Cache.RedisAddr == "" {
		return fmt.Errorf("cache backend redis requires redis_addr")
	}

	if c.Server.Addr == "" {
		return fmt.Errorf("server addr cannot be empty")
	}
	return nil
}

// BaseDelay returns base_delay_ms as a duration.
func (c *Config) BaseDelay() time.Duration { return time.Duration(c.BaseDelayMS) * time.Millisecond }

// MaxDelay returns max_delay_ms as a duration.
func (c *Config) MaxDelay() time.Duration { return time.Duration(c.MaxDelayMS) * time.Millisecond }

// Timeout returns timeout_ms as a duration.
func (c *Config) Timeout() time.Duration { return time.Duration(c.TimeoutMS) * time.Millisecond }

// CacheTTL returns ttl_seconds as a duration.
func (c *Config) CacheTTL() time.Duration { return time.Duration(c.Cache.TTLSeconds) * time.Second }

// ExpandPath resolves a leading ~ in path.
func ExpandPath(path string) (string, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("expanding home dir: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}
	return filepath.Abs(path)
}

// SQLitePath returns the configured cache database path, defaulting to
// the XDG data directory.
func (c *Config) SQLitePath() (string, error) {
	if c.Cache.SQLitePath != "" {
		return ExpandPath(c.Cache.SQLitePath)
	}
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, appName, "cache.db"), nil
}
