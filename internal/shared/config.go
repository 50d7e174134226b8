package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

const (
	DefaultCachePath   = ".movies.json"
	DefaultConcurrency = 16
	DefaultPageSize    = 100
	DefaultMaxPages    = 1000
	DefaultBaseURL     = "https://api.letterboxd.com/api/v0"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Sync        SyncConfig        `toml:"sync"`
	Database    DatabaseConfig    `toml:"database"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Letterboxd LetterboxdConfig `toml:"letterboxd"`
}

// LetterboxdConfig contains Letterboxd API credentials and the member login used for the password grant.
type LetterboxdConfig struct {
	APIKey    string `toml:"api_key"`
	APISecret string `toml:"api_secret"`
	Username  string `toml:"username"`
	Password  string `toml:"password"`
	BaseURL   string `toml:"base_url"`
}

// SyncConfig controls candidate extraction and the reconciliation run.
type SyncConfig struct {
	CachePath   string   `toml:"cache_path"`
	Concurrency int      `toml:"concurrency"`
	PageSize    int      `toml:"page_size"`
	MaxPages    int      `toml:"max_pages"`
	Pattern     string   `toml:"pattern"`
	Extensions  []string `toml:"extensions"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Zero values for sync settings are filled with their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	config.fillDefaults()
	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.fillDefaults()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnv overlays Letterboxd credentials from the LETTERBOXD_* environment variables.
// Non-empty variables take precedence over values from the file.
func (c *Config) ApplyEnv() {
	overlay := map[string]*string{
		"LETTERBOXD_KEY":      &c.Credentials.Letterboxd.APIKey,
		"LETTERBOXD_SECRET":   &c.Credentials.Letterboxd.APISecret,
		"LETTERBOXD_USERNAME": &c.Credentials.Letterboxd.Username,
		"LETTERBOXD_PASSWORD": &c.Credentials.Letterboxd.Password,
	}
	for name, field := range overlay {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			*field = v
		}
	}
}

// Validate checks the settings needed for an authenticated sync run.
func (c *Config) Validate() error {
	lb := c.Credentials.Letterboxd
	var missing []string
	if lb.APIKey == "" {
		missing = append(missing, "api_key")
	}
	if lb.APISecret == "" {
		missing = append(missing, "api_secret")
	}
	if lb.Username == "" {
		missing = append(missing, "username")
	}
	if lb.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: letterboxd %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}

	if c.Sync.Concurrency < 1 {
		return fmt.Errorf("%w: sync.concurrency must be positive", ErrInvalidConfig)
	}
	if c.Sync.PageSize < 1 {
		return fmt.Errorf("%w: sync.page_size must be positive", ErrInvalidConfig)
	}
	if c.Sync.MaxPages < 1 {
		return fmt.Errorf("%w: sync.max_pages must be positive", ErrInvalidConfig)
	}
	return nil
}

// HasAPIKey reports whether requests can be signed at all.
func (c *Config) HasAPIKey() bool {
	return c.Credentials.Letterboxd.APIKey != "" && c.Credentials.Letterboxd.APISecret != ""
}

func (c *Config) fillDefaults() {
	if c.Credentials.Letterboxd.BaseURL == "" {
		c.Credentials.Letterboxd.BaseURL = DefaultBaseURL
	}
	if c.Sync.CachePath == "" {
		c.Sync.CachePath = DefaultCachePath
	}
	if c.Sync.Concurrency == 0 {
		c.Sync.Concurrency = DefaultConcurrency
	}
	if c.Sync.PageSize == 0 {
		c.Sync.PageSize = DefaultPageSize
	}
	if c.Sync.MaxPages == 0 {
		c.Sync.MaxPages = DefaultMaxPages
	}
}
