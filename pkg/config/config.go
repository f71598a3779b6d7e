package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// CalendarMapping pairs a Google Calendar with the Todoist project that
// imported events are created in.
type CalendarMapping struct {
	CalendarID  string
	ProjectName string
}

// Config aggregates all runtime settings. It is constructed once in main
// and passed down; nothing reads the environment after Load returns.
type Config struct {
	TodoistAPIKey string
	NotesPath     string
	SyncLogPath   string

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRefreshToken string
	Calendars          []CalendarMapping

	SyncWindowDays  int
	MatchThreshold  float64
	MatchWindow     time.Duration
	DisplayTimezone string
	LogLevel        string
}

// Load reads configuration from environment variables (optionally .env).
// Missing required values are precondition failures and abort the run.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	cfg := &Config{
		TodoistAPIKey: os.Getenv("TODOIST_API_KEY"),
		NotesPath:     os.Getenv("OBSIDIAN_DAILY_NOTES_PATH"),
		SyncLogPath:   os.Getenv("SYNC_LOG_PATH"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleRefreshToken: os.Getenv("GOOGLE_REFRESH_TOKEN"),

		SyncWindowDays:  getInt("SYNC_WINDOW_DAYS", 7),
		MatchThreshold:  getFloat("IMPORT_MATCH_THRESHOLD", 0.7),
		MatchWindow:     time.Duration(getInt("IMPORT_MATCH_WINDOW_MINUTES", 5)) * time.Minute,
		DisplayTimezone: getString("DISPLAY_TIMEZONE", "Europe/Helsinki"),
		LogLevel:        getString("LOG_LEVEL", "info"),
	}

	if cfg.TodoistAPIKey == "" {
		return nil, fmt.Errorf("TODOIST_API_KEY not set in environment or .env file")
	}
	if cfg.NotesPath == "" {
		return nil, fmt.Errorf("OBSIDIAN_DAILY_NOTES_PATH not set in environment or .env file")
	}
	if cfg.SyncLogPath == "" {
		cfg.SyncLogPath = filepath.Join(cfg.NotesPath, ".synced-events.log")
	}

	for _, pair := range [][2]string{
		{"GOOGLE_CALENDAR_ID", "TODOIST_TARGET_PROJECT"},
		{"GOOGLE_CALENDAR_ID_2", "TODOIST_TARGET_PROJECT_2"},
	} {
		id, project := os.Getenv(pair[0]), os.Getenv(pair[1])
		if id == "" {
			continue
		}
		if project == "" {
			return nil, fmt.Errorf("%s is set but %s is not", pair[0], pair[1])
		}
		cfg.Calendars = append(cfg.Calendars, CalendarMapping{CalendarID: id, ProjectName: project})
	}

	return cfg, nil
}

// CalendarImportEnabled reports whether the optional calendar import phase
// has everything it needs to run.
func (c *Config) CalendarImportEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != "" &&
		c.GoogleRefreshToken != "" && len(c.Calendars) > 0
}

// Location resolves the configured display timezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.DisplayTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid DISPLAY_TIMEZONE %q: %w", c.DisplayTimezone, err)
	}
	return loc, nil
}

func getString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
