package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override file configuration.
const (
	EnvAPIURL        = "ACERVO_API_URL"
	EnvDBPath        = "ACERVO_DB_PATH"
	EnvLogLevel      = "ACERVO_LOG_LEVEL"
	EnvSandboxSecret = "ACERVO_SANDBOX_SECRET"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Session  SessionConfig  `toml:"session"`
	Database DatabaseConfig `toml:"database"`
	Export   ExportConfig   `toml:"export"`
	UI       UIConfig       `toml:"ui"`
	Log      LogConfig      `toml:"log"`
	Sandbox  SandboxConfig  `toml:"sandbox"`
}

// APIConfig points the client at the REST backend.
type APIConfig struct {
	BaseURL       string   `toml:"base_url"`
	Timeout       Duration `toml:"timeout"`
	PageSize      int      `toml:"page_size"`
	HomePlaylists int      `toml:"home_playlists"`
}

// SessionConfig locates the durable token store.
type SessionConfig struct {
	Database string `toml:"database"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	MaxOpenConns int `toml:"max_open_conns"`
	MaxIdleConns int `toml:"max_idle_conns"`
}

// ExportConfig tunes the playlist bulk exporter.
type ExportConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// UIConfig tunes the terminal interface.
type UIConfig struct {
	WindowSize      int      `toml:"window_size"`
	DetailCacheSize int      `toml:"detail_cache_size"`
	DetailCacheTTL  Duration `toml:"detail_cache_ttl"`
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

// SandboxConfig contains settings for the local stand-in backend.
type SandboxConfig struct {
	Host   string `toml:"host"`
	Port   int    `toml:"port"`
	Secret string `toml:"secret"`
	Seed   int    `toml:"seed"`
}

// Duration decodes TOML strings like "15s" into a [time.Duration].
type Duration struct {
	time.Duration
}

// UnmarshalText implements [encoding.TextUnmarshaler].
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("%w: duration %q: %v", ErrInvalidConfig, string(text), err)
	}
	d.Duration = parsed
	return nil
}

// MarshalText implements [encoding.TextMarshaler].
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv loads an optional .env file and applies ACERVO_* overrides to c.
//
// envFiles default to ".env"; a missing file is not an error.
func (c *Config) ApplyEnv(envFiles ...string) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if _, err := os.Stat(f); err == nil {
			_ = godotenv.Load(f)
		}
	}

	if v := os.Getenv(EnvAPIURL); v != "" {
		c.API.BaseURL = v
	}
	if v := os.Getenv(EnvDBPath); v != "" {
		c.Session.Database = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv(EnvSandboxSecret); v != "" {
		c.Sandbox.Secret = v
	}
}

// Validate reports configuration values the client cannot work with.
func (c *Config) Validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("%w: api.base_url is empty", ErrInvalidConfig)
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("%w: api.page_size must be positive", ErrInvalidConfig)
	}
	if c.UI.WindowSize <= 0 {
		return fmt.Errorf("%w: ui.window_size must be positive", ErrInvalidConfig)
	}
	if c.Session.Database == "" {
		return fmt.Errorf("%w: session.database is empty", ErrInvalidConfig)
	}
	return nil
}
