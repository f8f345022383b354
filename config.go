package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Auth     AuthConfig     `toml:"auth"`
	Media    MediaConfig    `toml:"media"`
	Search   SearchConfig   `toml:"search"`
	Cleanup  CleanupConfig  `toml:"cleanup"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Addr           string `toml:"addr"`
	MaxConnections int    `toml:"max_connections"`
	Timezone       string `toml:"timezone"`
	// Requests per minute allowed per client IP on the login and register endpoints.
	AuthRateLimit int `toml:"auth_rate_limit"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// AuthConfig contains token and password hashing settings.
type AuthConfig struct {
	JWTSecret      string `toml:"jwt_secret"`
	JWTExpiryHours int    `toml:"jwt_expiry_hours"`
	BcryptCost     int    `toml:"bcrypt_cost"`
	MinPasswordLen int    `toml:"min_password_length"`
}

// MediaConfig contains upload directories and accepted file types.
type MediaConfig struct {
	AudioDir        string   `toml:"audio_dir"`
	ImageDir        string   `toml:"image_dir"`
	AudioExtensions []string `toml:"audio_extensions"`
	ImageExtensions []string `toml:"image_extensions"`
	MaxUploadMB     int      `toml:"max_upload_mb"`
}

// SearchConfig controls the search endpoint.
type SearchConfig struct {
	MinQueryLength int `toml:"min_query_length"`
	MaxResults     int `toml:"max_results"`
}

// CleanupConfig controls the orphaned media sweep.
type CleanupConfig struct {
	Enabled  bool   `toml:"enabled"`
	Schedule string `toml:"schedule"`
	// Files younger than this are left alone so in-flight uploads are not swept.
	GraceMinutes int `toml:"grace_minutes"`
}

// LogConfig controls the application logger.
type LogConfig struct {
	Level string `toml:"level"`
}

// DefaultConfig returns a Config with defaults suitable for local development.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			Timezone:      "UTC",
			AuthRateLimit: 30,
		},
		Database: DatabaseConfig{
			Path:         "./music.db",
			MaxOpenConns: 4,
			MaxIdleConns: 2,
		},
		Auth: AuthConfig{
			JWTExpiryHours: 24,
			BcryptCost:     14,
			MinPasswordLen: 6,
		},
		Media: MediaConfig{
			AudioDir:        filepath.Join("media", "songs"),
			ImageDir:        filepath.Join("media", "images"),
			AudioExtensions: []string{".mp3"},
			ImageExtensions: []string{".jpg", ".jpeg", ".png"},
			MaxUploadMB:     50,
		},
		Search: SearchConfig{
			MinQueryLength: 3,
			MaxResults:     50,
		},
		Cleanup: CleanupConfig{
			Enabled:      true,
			Schedule:     "0 3 * * *",
			GraceMinutes: 60,
		},
		Log: LogConfig{Level: "info"},
	}
}

// LoadConfig reads defaults, overlays the TOML file at path (when it exists),
// then applies .env and environment overrides.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// .env is optional; a missing file is not an error.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	config.applyEnv()

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("MUSIC_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("MUSIC_TIMEZONE"); v != "" {
		c.Server.Timezone = v
	}
	if v := os.Getenv("MUSIC_DB_PATH"); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv("MUSIC_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v, err := strconv.Atoi(os.Getenv("MUSIC_JWT_EXPIRY_HOURS")); err == nil {
		c.Auth.JWTExpiryHours = v
	}
	if v := os.Getenv("MUSIC_AUDIO_DIR"); v != "" {
		c.Media.AudioDir = v
	}
	if v := os.Getenv("MUSIC_IMAGE_DIR"); v != "" {
		c.Media.ImageDir = v
	}
	if v := os.Getenv("MUSIC_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// Validate rejects configurations the server cannot run with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return errors.New("invalid configuration: auth.jwt_secret is required")
	}
	if c.Auth.JWTExpiryHours <= 0 {
		return errors.New("invalid configuration: auth.jwt_expiry_hours must be positive")
	}
	if c.Media.AudioDir == "" || c.Media.ImageDir == "" {
		return errors.New("invalid configuration: media directories are required")
	}
	if _, err := time.LoadLocation(c.Server.Timezone); err != nil {
		return fmt.Errorf("invalid configuration: server.timezone: %w", err)
	}
	return nil
}

// Location returns the configured time zone used when rendering timestamps.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Server.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
