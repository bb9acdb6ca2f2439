package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cesargomez89/chartpulse/internal/constants"
)

// Config holds all application configuration
type Config struct {
	Port                string
	DBPath              string
	LogLevel            string
	LogFormat           string
	SpotifyClientID     string
	SpotifyClientSecret string
	AdminKey            string
	Timezone            string
	Markets             []string
	PlaylistIDs         map[string]string
	SchedulerEnabled    bool
	SnapshotHour        int
	SnapshotMinute      int
}

// Load loads configuration from environment variables with defaults
func Load() *Config {
	markets := parseMarkets(getEnv("MARKETS", constants.DefaultMarkets))

	playlists := make(map[string]string, len(markets))
	for _, market := range markets {
		playlists[market] = getEnv("PLAYLIST_"+market, defaultPlaylistID(market))
	}

	return &Config{
		Port:                getEnv("PORT", constants.DefaultPort),
		DBPath:              getEnv("DB_PATH", constants.DefaultDBPath),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "text"),
		SpotifyClientID:     getEnv("SPOTIFY_CLIENT_ID", ""),
		SpotifyClientSecret: getEnv("SPOTIFY_CLIENT_SECRET", ""),
		AdminKey:            getEnv("ADMIN_KEY", ""),
		Timezone:            getEnv("TIMEZONE", constants.DefaultTimezone),
		Markets:             markets,
		PlaylistIDs:         playlists,
		SchedulerEnabled:    getEnvBool("ENABLE_SCHEDULER", true),
		SnapshotHour:        getEnvInt("SNAPSHOT_HOUR", constants.DefaultSnapshotHour),
		SnapshotMinute:      getEnvInt("SNAPSHOT_MINUTE", constants.DefaultSnapshotMinute),
	}
}

// Validate validates the configuration and returns detailed errors
func (c *Config) Validate() error {
	var errors []string

	if c.Port == "" {
		errors = append(errors, "PORT cannot be empty")
	} else {
		port, err := strconv.Atoi(c.Port)
		if err != nil {
			errors = append(errors, fmt.Sprintf("PORT must be a valid number, got: %s", c.Port))
		} else if port < 1 || port > 65535 {
			errors = append(errors, fmt.Sprintf("PORT must be between 1 and 65535, got: %d", port))
		}
	}

	if c.DBPath == "" {
		errors = append(errors, "DB_PATH cannot be empty")
	}

	if c.SpotifyClientID == "" {
		errors = append(errors, "SPOTIFY_CLIENT_ID cannot be empty")
	}
	if c.SpotifyClientSecret == "" {
		errors = append(errors, "SPOTIFY_CLIENT_SECRET cannot be empty")
	}

	if c.AdminKey == "" {
		errors = append(errors, "ADMIN_KEY cannot be empty")
	}

	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errors = append(errors, fmt.Sprintf("TIMEZONE is not a valid IANA zone: %s", c.Timezone))
	}

	if len(c.Markets) == 0 {
		errors = append(errors, "MARKETS cannot be empty")
	}
	for _, market := range c.Markets {
		if c.PlaylistIDs[market] == "" {
			errors = append(errors, fmt.Sprintf("no playlist configured for market %s", market))
		}
	}

	if c.SnapshotHour < 0 || c.SnapshotHour > 23 {
		errors = append(errors, fmt.Sprintf("SNAPSHOT_HOUR must be between 0 and 23, got: %d", c.SnapshotHour))
	}
	if c.SnapshotMinute < 0 || c.SnapshotMinute > 59 {
		errors = append(errors, fmt.Sprintf("SNAPSHOT_MINUTE must be between 0 and 59, got: %d", c.SnapshotMinute))
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		errors = append(errors, fmt.Sprintf("LOG_LEVEL must be one of: debug, info, warn, error, got: %s", c.LogLevel))
	}

	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		errors = append(errors, fmt.Sprintf("LOG_FORMAT must be one of: text, json, got: %s", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errors, "\n  - "))
	}

	return nil
}

// Location resolves the configured time zone. Snapshot dates are computed in
// this zone, not UTC.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

// PlaylistIDFor returns the playlist mapped to a market, or "" if unmapped.
func (c *Config) PlaylistIDFor(market string) string {
	return c.PlaylistIDs[strings.ToUpper(strings.TrimSpace(market))]
}

func parseMarkets(s string) []string {
	var markets []string
	for _, part := range strings.Split(s, ",") {
		market := strings.ToUpper(strings.TrimSpace(part))
		if market != "" {
			markets = append(markets, market)
		}
	}
	return markets
}

func defaultPlaylistID(market string) string {
	if market == "IN" {
		return constants.IndiaTop50PlaylistID
	}
	return constants.GlobalTop50PlaylistID
}

// getEnv retrieves an environment variable with a fallback default
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
