package shared

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Server.RedirectTimeout() != 2*time.Minute {
			t.Errorf("expected 2m redirect timeout, got %s", config.Server.RedirectTimeout())
		}

		if config.Credentials.MyAnimeList.RedirectURI != "http://localhost:5000/myanimelist" {
			t.Errorf("unexpected MAL redirect URI %s", config.Credentials.MyAnimeList.RedirectURI)
		}

		if config.API.PageSize != 1000 {
			t.Errorf("expected page size 1000, got %d", config.API.PageSize)
		}

		if config.Credentials.AniList.Configured() {
			t.Error("placeholder client id should not count as configured")
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate: %v", err)
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

		if strings.HasPrefix(config.Sessions.Path, "~") {
			t.Errorf("sessions path should be expanded, got %s", config.Sessions.Path)
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig keeps defaults for missing keys", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")
		content := `
[credentials.myanimelist]
client_id = "mal-id"

[server]
port = 5050

[sessions]
path = "` + filepath.ToSlash(filepath.Join(tmpDir, "sessions.toml")) + `"
`
		if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}

		t.Setenv(EnvMALClientID, "")
		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 5050 {
			t.Errorf("expected port 5050, got %d", config.Server.Port)
		}
		if config.Server.Addr() != "localhost:5050" {
			t.Errorf("unexpected addr %s", config.Server.Addr())
		}
		if config.Credentials.MyAnimeList.ClientID != "mal-id" {
			t.Errorf("expected mal-id, got %s", config.Credentials.MyAnimeList.ClientID)
		}
		if !config.Credentials.MyAnimeList.Configured() {
			t.Error("expected MAL credentials to be configured")
		}
		if config.Credentials.MyAnimeList.RedirectURI == "" {
			t.Error("redirect URI should fall back to the default")
		}
	})

	t.Run("environment overrides credentials", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := CreateConfigFile(configPath); err != nil {
			t.Fatal(err)
		}

		t.Setenv(EnvAniListClientID, "env-id")
		t.Setenv(EnvAniListSecret, "env-secret")

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatal(err)
		}
		if config.Credentials.AniList.ClientID != "env-id" || config.Credentials.AniList.ClientSecret != "env-secret" {
			t.Errorf("env did not override: %+v", config.Credentials.AniList)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
		if !errors.Is(err, ErrMissingConfig) {
			t.Errorf("expected ErrMissingConfig, got %v", err)
		}

		config, err := LoadConfigOrDefault(filepath.Join(t.TempDir(), "nope.toml"))
		if err != nil {
			t.Fatalf("expected defaults, got %v", err)
		}
		if config.Server.Port != 5000 {
			t.Errorf("expected default port, got %d", config.Server.Port)
		}
	})

	t.Run("invalid values", func(t *testing.T) {
		tc := []struct {
			name    string
			content string
		}{
			{"bad toml", "[server\nport = "},
			{"bad port", "[server]\nport = 70000"},
			{"bad format", "[backup]\nformat = \"xml\""},
			{"bad page size", "[api]\npage_size = 0"},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				configPath := filepath.Join(t.TempDir(), "config.toml")
				if err := os.WriteFile(configPath, []byte(tt.content), 0644); err != nil {
					t.Fatal(err)
				}
				if _, err := LoadConfig(configPath); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}

func TestLoadEnvFiles(t *testing.T) {
	dir := t.TempDir()
	local := filepath.Join(dir, ".env.local")
	shared := filepath.Join(dir, ".env")

	if err := os.WriteFile(local, []byte("LSX_TEST_VALUE=local\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(shared, []byte("LSX_TEST_VALUE=shared\nLSX_TEST_OTHER=shared\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LSX_TEST_VALUE", "")
	os.Unsetenv("LSX_TEST_VALUE")
	t.Setenv("LSX_TEST_OTHER", "")
	os.Unsetenv("LSX_TEST_OTHER")

	loaded := LoadEnvFiles(local, shared, filepath.Join(dir, "missing"))
	if len(loaded) != 2 {
		t.Errorf("expected 2 loaded files, got %v", loaded)
	}
	if got := os.Getenv("LSX_TEST_VALUE"); got != "local" {
		t.Errorf("earlier file should win, got %q", got)
	}
	if got := os.Getenv("LSX_TEST_OTHER"); got != "shared" {
		t.Errorf("later file should fill gaps, got %q", got)
	}
}
