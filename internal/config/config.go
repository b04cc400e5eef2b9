package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// Database
	SQLiteDBPath string

	// Roster sources
	RosterFile          string
	RosterSource        string
	GoogleSpreadsheetID string
	RosterSheetName     string

	// Dashboard
	DefaultDashboardID string

	// Cleanup worker
	CleanupInterval time.Duration
}

const (
	SourceNone   = "none"
	SourceFile   = "file"
	SourceSheets = "sheets"
)

func Load() *Config {
	cfg := &Config{
		Port:         getEnv("PORT", "8081"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/benchboard.db"),

		RosterFile:          getEnv("ROSTER_FILE", ""),
		RosterSource:        getEnv("ROSTER_SOURCE", SourceNone),
		GoogleSpreadsheetID: getEnv("GOOGLE_SPREADSHEET_ID", ""),
		RosterSheetName:     getEnv("ROSTER_SHEET_NAME", "Roster"),

		DefaultDashboardID: getEnv("DEFAULT_DASHBOARD_ID", "default"),

		CleanupInterval: getEnvDuration("CLEANUP_INTERVAL", 6*time.Hour),
	}

	return cfg
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.SQLiteDBPath == "" {
		errors = append(errors, "SQLite database path cannot be empty")
	} else {
		dir := filepath.Dir(c.SQLiteDBPath)
		if dir != "." && dir != "" {
			if _, err := os.Stat(dir); os.IsNotExist(err) {
				if err := os.MkdirAll(dir, 0755); err != nil {
					errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
				}
			}
		}
	}

	validSources := []string{SourceNone, SourceFile, SourceSheets}
	isValidSource := false
	for _, source := range validSources {
		if c.RosterSource == source {
			isValidSource = true
			break
		}
	}
	if !isValidSource {
		errors = append(errors, fmt.Sprintf("invalid roster source '%s': must be one of %v", c.RosterSource, validSources))
	}

	if c.RosterSource == SourceFile {
		if c.RosterFile == "" {
			errors = append(errors, "ROSTER_FILE is required when roster source is 'file'")
		} else if _, err := os.Stat(c.RosterFile); os.IsNotExist(err) {
			errors = append(errors, fmt.Sprintf("roster file does not exist: %s", c.RosterFile))
		} else {
			ext := strings.ToLower(filepath.Ext(c.RosterFile))
			if ext != ".json" && ext != ".csv" {
				errors = append(errors, fmt.Sprintf("unsupported roster file format '%s': must be .json or .csv", ext))
			}
		}
	}

	if c.RosterSource == SourceSheets {
		if c.GoogleSpreadsheetID == "" {
			errors = append(errors, "GOOGLE_SPREADSHEET_ID is required when roster source is 'sheets'")
		}
		if c.RosterSheetName == "" {
			errors = append(errors, "roster sheet name cannot be empty when roster source is 'sheets'")
		}
	}

	if c.DefaultDashboardID == "" {
		errors = append(errors, "default dashboard id cannot be empty")
	}

	if c.CleanupInterval < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid cleanup interval %v: must be at least 1 minute", c.CleanupInterval))
	} else if c.CleanupInterval > 7*24*time.Hour {
		errors = append(errors, fmt.Sprintf("invalid cleanup interval %v: must be at most 7 days", c.CleanupInterval))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
