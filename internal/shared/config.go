package shared

import (
	_ "embed"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Server      ServerConfig      `toml:"server"`
	Sessions    SessionsConfig    `toml:"sessions"`
	Database    DatabaseConfig    `toml:"database"`
	Backup      BackupConfig      `toml:"backup"`
	API         APIConfig         `toml:"api"`
}

// CredentialsConfig contains service-specific OAuth client credentials.
type CredentialsConfig struct {
	AniList     ClientConfig `toml:"anilist"`
	MyAnimeList ClientConfig `toml:"myanimelist"`
}

// ClientConfig is one registered OAuth client.
type ClientConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// Configured reports whether the client id has been filled in.
func (c ClientConfig) Configured() bool {
	return c.ClientID != "" && !strings.HasPrefix(c.ClientID, "your_")
}

// ServerConfig contains settings for the one-shot redirect listener.
type ServerConfig struct {
	Host                   string `toml:"host"`
	Port                   int    `toml:"port"`
	RedirectTimeoutSeconds int    `toml:"redirect_timeout_seconds"`
}

// Addr is the listener's host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// RedirectTimeout is how long the listener waits for a redirect.
func (s ServerConfig) RedirectTimeout() time.Duration {
	if s.RedirectTimeoutSeconds <= 0 {
		return 2 * time.Minute
	}
	return time.Duration(s.RedirectTimeoutSeconds) * time.Second
}

// SessionsConfig locates the persisted session file.
type SessionsConfig struct {
	Path string `toml:"path"`
}

// DatabaseConfig contains sync journal connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// BackupConfig selects where and how list backups are written.
type BackupConfig struct {
	Directory string `toml:"directory"`
	Format    string `toml:"format"`
}

// APIConfig tunes outbound requests.
type APIConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	PageSize          int     `toml:"page_size"`
}

// LoadConfig reads a TOML configuration file over the embedded defaults.
//
// Keys missing from the file keep their default values. Environment credentials are applied and
// "~" in paths is expanded.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrMissingConfig, path)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.finalize(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigOrDefault is [LoadConfig] that falls back to defaults when the file does not exist.
func LoadConfigOrDefault(path string) (*Config, error) {
	config, err := LoadConfig(path)
	if errors.Is(err, ErrMissingConfig) {
		config = DefaultConfig()
		if err := config.finalize(); err != nil {
			return nil, err
		}
		return config, nil
	}
	return config, err
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

// Validate checks values the program cannot run without.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server port %d out of range", ErrInvalidConfig, c.Server.Port)
	}
	if c.Sessions.Path == "" {
		return fmt.Errorf("%w: sessions.path is required", ErrInvalidConfig)
	}
	if c.API.PageSize <= 0 {
		return fmt.Errorf("%w: api.page_size must be positive", ErrInvalidConfig)
	}
	switch c.Backup.Format {
	case "toml", "json", "yaml", "csv", "markdown":
	default:
		return fmt.Errorf("%w: unknown backup format %q", ErrInvalidConfig, c.Backup.Format)
	}
	return nil
}

func (c *Config) finalize() error {
	ApplyEnv(&c.Credentials)

	for _, p := range []*string{&c.Sessions.Path, &c.Database.Path, &c.Backup.Directory} {
		expanded, err := ExpandPath(*p)
		if err != nil {
			return err
		}
		*p = expanded
	}
	return c.Validate()
}
