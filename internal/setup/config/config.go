package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
	ErrAPIKeyUnset           = errors.New("steam api key is not configured")
)

// CurrentVersion is the current version of the config file.
const CurrentVersion = 1

// UnsetAPIKey is the placeholder written to fresh config files.
// Leaving it in place disables the friend cache.
const UnsetAPIKey = "-1"

// Bounds applied to the steam section on load.
const (
	MinInitDelay        = 1
	MaxInitDelay        = 10
	DefaultInitDelay    = 1
	MinRefreshInterval  = 60
	MaxRefreshInterval  = 86400
	DefaultRefreshDelay = 3600
	DefaultTimeout      = 10000
	DefaultConcurrency  = 4
)

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version int     `koanf:"version"`
	Debug   Debug   `koanf:"debug"`
	Steam   Steam   `koanf:"steam"`
	Storage Storage `koanf:"storage"`
	Redis   Redis   `koanf:"redis"`
	API     API     `koanf:"api"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Log level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Maximum log sessions to keep.
	MaxLogsToKeep int `koanf:"max_logs_to_keep"`
	// Enable pprof debugging server.
	EnablePprof bool `koanf:"enable_pprof"`
	// Port for pprof debugging server.
	PprofPort int `koanf:"pprof_port"`
}

// Steam contains the Steam Web API and refresh configuration.
type Steam struct {
	// Web API key (https://steamcommunity.com/dev/apikey).
	APIKey string `koanf:"api_key"`
	// Base URL of the Steam Web API.
	BaseURL string `koanf:"base_url"`
	// Delay between friend list requests during warmup, in seconds.
	InitDelay int `koanf:"init_delay"`
	// Minimum age of a friend list before it is refreshed, in seconds.
	RefreshInterval int `koanf:"refresh_interval"`
	// Request timeout in milliseconds.
	RequestTimeout int `koanf:"request_timeout"`
	// Maximum friend list requests in flight at once.
	MaxConcurrentRequests int `koanf:"max_concurrent_requests"`
}

// Storage selects and configures the record store backend.
type Storage struct {
	// Backend is one of file, redis, sqlite or postgres.
	Backend string `koanf:"backend"`
	// Directory used by the file backend.
	DataDir string `koanf:"data_dir"`
	// Database path used by the sqlite backend.
	SQLitePath string `koanf:"sqlite_path"`
	// Connection settings used by the postgres backend.
	PostgreSQL PostgreSQL `koanf:"postgresql"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	// Database hostname.
	Host string `koanf:"host"`
	// Database port.
	Port int `koanf:"port"`
	// Database username.
	User string `koanf:"user"`
	// Database password.
	Password string `koanf:"password"`
	// Database name.
	DBName string `koanf:"db_name"`
	// Maximum open connections.
	MaxOpenConns int `koanf:"max_open_conns"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	// Redis hostname.
	Host string `koanf:"host"`
	// Redis port.
	Port int `koanf:"port"`
	// Redis username.
	Username string `koanf:"username"`
	// Redis password.
	Password string `koanf:"password"`
}

// API contains the REST server configuration.
type API struct {
	// Host address to listen on.
	Host string `koanf:"host"`
	// Port to listen on.
	Port int `koanf:"port"`
}

// Enabled reports whether an API key has been configured.
func (s *Steam) Enabled() bool {
	return s.APIKey != "" && s.APIKey != UnsetAPIKey
}

// Validate returns ErrAPIKeyUnset when the API key is missing or still the placeholder.
func (s *Steam) Validate() error {
	if !s.Enabled() {
		return fmt.Errorf("%w: get one at https://steamcommunity.com/dev/apikey", ErrAPIKeyUnset)
	}
	return nil
}

// InitDelayDuration returns the warmup delay as a duration.
func (s *Steam) InitDelayDuration() time.Duration {
	return time.Duration(s.InitDelay) * time.Second
}

// RefreshIntervalDuration returns the refresh interval as a duration.
func (s *Steam) RefreshIntervalDuration() time.Duration {
	return time.Duration(s.RefreshInterval) * time.Second
}

// RequestTimeoutDuration returns the request timeout as a duration.
func (s *Steam) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Millisecond
}

// LoadConfig searches the standard config paths for config.toml and loads it.
// Returns the configuration and the directory it was found in.
func LoadConfig() (*Config, string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".steamfriends",
		homeDir + "/.steamfriends/config",
		"/etc/steamfriends/config",
		"/app/config",
		"config",
		".",
	}

	for _, path := range configPaths {
		configPath := path + "/config.toml"
		if _, err := os.Stat(configPath); err != nil {
			continue
		}

		cfg, err := LoadFile(configPath)
		if err != nil {
			return nil, "", err
		}

		return cfg, path, nil
	}

	return nil, "", fmt.Errorf("%w: config.toml", ErrConfigFileNotFound)
}

// LoadFile loads a single TOML config file, checks its version and
// clamps numeric settings into their allowed ranges.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
		return nil, fmt.Errorf("error loading config %s: %w", path, err)
	}

	config := Config{
		Debug: Debug{
			LogLevel:      "info",
			MaxLogsToKeep: 10,
			PprofPort:     6060,
		},
		Steam: Steam{
			APIKey:                UnsetAPIKey,
			BaseURL:               "https://api.steampowered.com",
			InitDelay:             DefaultInitDelay,
			RefreshInterval:       DefaultRefreshDelay,
			RequestTimeout:        DefaultTimeout,
			MaxConcurrentRequests: DefaultConcurrency,
		},
		Storage: Storage{
			Backend:    "file",
			DataDir:    "data",
			SQLitePath: "data/steamfriends.db",
		},
		API: API{
			Host: "127.0.0.1",
			Port: 8080,
		},
	}
	if err := k.Unmarshal("", &config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := checkConfigVersion(config.Version, CurrentVersion); err != nil {
		return nil, err
	}

	config.Steam.clamp()

	return &config, nil
}

// clamp forces the numeric steam settings into their documented ranges.
func (s *Steam) clamp() {
	s.InitDelay = min(max(s.InitDelay, MinInitDelay), MaxInitDelay)
	s.RefreshInterval = min(max(s.RefreshInterval, MinRefreshInterval), MaxRefreshInterval)

	if s.RequestTimeout <= 0 {
		s.RequestTimeout = DefaultTimeout
	}

	if s.MaxConcurrentRequests <= 0 {
		s.MaxConcurrentRequests = DefaultConcurrency
	}
}

// checkConfigVersion checks if the config file version is correct.
func checkConfigVersion(current, expected int) error {
	if current == 0 {
		return fmt.Errorf("%w: config.toml", ErrConfigVersionMissing)
	}

	if current != expected {
		return fmt.Errorf("%w: config.toml (got: %d, expected: %d)",
			ErrConfigVersionMismatch, current, expected)
	}

	return nil
}
