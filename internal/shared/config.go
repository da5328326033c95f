package shared

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// EnvAPIURL is the environment variable that selects the backend host.
const EnvAPIURL = "SYNCX_API_URL"

// DefaultAPIURL is used when neither the config file nor the environment set a base URL.
const DefaultAPIURL = "http://localhost:8001"

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	API      APIConfig      `toml:"api"`
	Database DatabaseConfig `toml:"database"`
	Server   ServerConfig   `toml:"server"`
	Callback CallbackConfig `toml:"callback"`
	Export   ExportConfig   `toml:"export"`
}

// APIConfig selects the backend REST service.
type APIConfig struct {
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains settings for the local OAuth callback server.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// CallbackConfig tunes the OAuth callback page.
type CallbackConfig struct {
	RedirectDelayMS    int `toml:"redirect_delay_ms"`
	WaitTimeoutSeconds int `toml:"wait_timeout_seconds"`
}

// ExportConfig tunes bulk analytics exports.
type ExportConfig struct {
	Workers   int     `toml:"workers"`
	RateLimit float64 `toml:"rate_limit"`
}

// Addr returns the host:port the callback server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Timeout returns the HTTP client timeout, zero meaning the transport default.
func (a APIConfig) Timeout() time.Duration {
	if a.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(a.TimeoutSeconds) * time.Second
}

// RedirectDelay returns how long the success page waits before returning to the dashboard.
func (c CallbackConfig) RedirectDelay() time.Duration {
	if c.RedirectDelayMS <= 0 {
		return 2 * time.Second
	}
	return time.Duration(c.RedirectDelayMS) * time.Millisecond
}

// WaitTimeout returns how long `accounts connect` waits for the provider redirect.
func (c CallbackConfig) WaitTimeout() time.Duration {
	if c.WaitTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(c.WaitTimeoutSeconds) * time.Second
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
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

// SaveConfig writes the configuration to path as TOML.
func SaveConfig(path string, config *Config) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(config); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
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

// LoadEnv loads variables from .env files (missing files are ignored) and applies
// environment overrides to config.
//
// [EnvAPIURL] wins over the file; an empty base URL falls back to [DefaultAPIURL].
func LoadEnv(config *Config, files ...string) {
	_ = godotenv.Load(files...)

	if v := strings.TrimSpace(os.Getenv(EnvAPIURL)); v != "" {
		config.API.BaseURL = v
	}
	if config.API.BaseURL == "" {
		config.API.BaseURL = DefaultAPIURL
	}
	config.API.BaseURL = strings.TrimRight(config.API.BaseURL, "/")
}
