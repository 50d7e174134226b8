package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./lbsync.db" {
			t.Errorf("expected database path ./lbsync.db, got %s", config.Database.Path)
		}

		if config.Sync.CachePath != ".movies.json" {
			t.Errorf("expected cache path .movies.json, got %s", config.Sync.CachePath)
		}

		if config.Sync.Concurrency != 16 {
			t.Errorf("expected concurrency 16, got %d", config.Sync.Concurrency)
		}

		if config.Sync.PageSize != 100 {
			t.Errorf("expected page size 100, got %d", config.Sync.PageSize)
		}

		if config.Credentials.Letterboxd.BaseURL != DefaultBaseURL {
			t.Errorf("expected base URL %s, got %s", DefaultBaseURL, config.Credentials.Letterboxd.BaseURL)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		defaultConfig := DefaultConfig()
		if config.Database.Path != defaultConfig.Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[database]
path = "/custom/path.db"

[sync]
cache_path = "/tmp/films.json"
concurrency = 4
pattern = '^(.+?) \(\d{4}\)'

[credentials.letterboxd]
api_key = "test_key"
api_secret = "test_secret"
username = "member"
password = "hunter2"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
		if config.Sync.Concurrency != 4 {
			t.Errorf("expected concurrency 4, got %d", config.Sync.Concurrency)
		}
		if config.Sync.PageSize != DefaultPageSize {
			t.Errorf("expected default page size to be filled, got %d", config.Sync.PageSize)
		}
		if config.Sync.Pattern != `^(.+?) \(\d{4}\)` {
			t.Errorf("unexpected pattern %q", config.Sync.Pattern)
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}
	})

	t.Run("LoadConfig Malformed", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[sync\nbroken"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})

	t.Run("ApplyEnv", func(t *testing.T) {
		t.Setenv("LETTERBOXD_KEY", "env_key")
		t.Setenv("LETTERBOXD_SECRET", "env_secret")
		t.Setenv("LETTERBOXD_USERNAME", "env_user")
		t.Setenv("LETTERBOXD_PASSWORD", "")

		config := DefaultConfig()
		config.Credentials.Letterboxd.Password = "from_file"
		config.ApplyEnv()

		lb := config.Credentials.Letterboxd
		if lb.APIKey != "env_key" || lb.APISecret != "env_secret" || lb.Username != "env_user" {
			t.Errorf("expected env overlay, got %+v", lb)
		}
		if lb.Password != "from_file" {
			t.Errorf("empty env var must not clear file value, got %q", lb.Password)
		}
		if !config.HasAPIKey() {
			t.Error("expected HasAPIKey to be true")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		config := DefaultConfig()
		if err := config.Validate(); !errors.Is(err, ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}

		config.Credentials.Letterboxd = LetterboxdConfig{
			APIKey: "k", APISecret: "s", Username: "u", Password: "p",
		}
		config.Sync.Concurrency = -1
		if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("expected ErrInvalidConfig, got %v", err)
		}
	})
}
