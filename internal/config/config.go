package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
	"github.com/shopspring/decimal"
)

// Backend names accepted by DirectoryConfig.Backend.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Config holds all configuration options for the timesheet application
type Config struct {
	Database    DatabaseConfig
	Directory   DirectoryConfig
	Editor      EditorConfig
	Validation  ValidationConfig
	Report      ReportConfig
	Application ApplicationConfig
}

// DatabaseConfig holds configuration of the local SQLite store
type DatabaseConfig struct {
	Dir            string        `env:"TS_DB_DIR"`
	Filename       string        `env:"TS_DB_FILENAME"`
	QueryTimeout   time.Duration `env:"TS_DB_QUERY_TIMEOUT"`
	WriteTimeout   time.Duration `env:"TS_DB_WRITE_TIMEOUT"`
	DirPermissions uint32        `env:"TS_DB_DIR_PERMISSIONS"`
}

// DirectoryConfig selects where projects, users and time records live
type DirectoryConfig struct {
	Backend     string        `env:"TS_BACKEND"`
	BaseURL     string        `env:"TS_API_URL"`
	Token       string        `env:"TS_API_TOKEN"`
	UserID      int64         `env:"TS_USER_ID"`
	HTTPTimeout time.Duration `env:"TS_HTTP_TIMEOUT"`
}

// EditorConfig holds the debounce and status display timings of the grid editor
type EditorConfig struct {
	HoursDelay   time.Duration `env:"TS_HOURS_DELAY"`
	NotesDelay   time.Duration `env:"TS_NOTES_DELAY"`
	SavedDisplay time.Duration `env:"TS_SAVED_DISPLAY"`
	ErrorDisplay time.Duration `env:"TS_ERROR_DISPLAY"`
	SaveTimeout  time.Duration `env:"TS_SAVE_TIMEOUT"`
}

// ValidationConfig holds validation rules configuration
type ValidationConfig struct {
	MaxHoursPerDay decimal.Decimal `env:"TS_MAX_HOURS"`
	HoursIncrement decimal.Decimal `env:"TS_HOURS_INCREMENT"`
	NoteMaxLength  int             `env:"TS_NOTE_MAX_LENGTH"`
}

// ReportConfig holds report output defaults
type ReportConfig struct {
	DefaultFormat string `env:"TS_REPORT_FORMAT"`
}

// ApplicationConfig holds application-level configuration
type ApplicationConfig struct {
	Timeout time.Duration `env:"TS_TIMEOUT"`
	Verbose bool          `env:"TS_VERBOSE"`
}

// NewConfig creates a new configuration with sensible defaults
func NewConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dir:            filepath.Join(xdg.DataHome, "timesheet"),
			Filename:       "timesheet.db",
			QueryTimeout:   10 * time.Second,
			WriteTimeout:   5 * time.Second,
			DirPermissions: 0755,
		},
		Directory: DirectoryConfig{
			Backend:     BackendLocal,
			UserID:      1,
			HTTPTimeout: 15 * time.Second,
		},
		Editor: EditorConfig{
			HoursDelay:   0,
			NotesDelay:   800 * time.Millisecond,
			SavedDisplay: 3 * time.Second,
			ErrorDisplay: 5 * time.Second,
			SaveTimeout:  10 * time.Second,
		},
		Validation: ValidationConfig{
			MaxHoursPerDay: decimal.NewFromInt(24),
			HoursIncrement: decimal.RequireFromString("0.25"),
			NoteMaxLength:  1000,
		},
		Report: ReportConfig{
			DefaultFormat: "table",
		},
		Application: ApplicationConfig{
			Timeout: 60 * time.Second,
			Verbose: false,
		},
	}
}

// GetDatabasePath returns the full path to the database file
func (c *Config) GetDatabasePath() string {
	return filepath.Join(c.Database.Dir, c.Database.Filename)
}

// IsRemote reports whether the hours service is used instead of the local store
func (c *Config) IsRemote() bool {
	return c.Directory.Backend == BackendRemote
}

// LoadFromEnvironment loads configuration from environment variables
func (c *Config) LoadFromEnvironment() error {
	// Database configuration
	if dir := os.Getenv("TS_DB_DIR"); dir != "" {
		c.Database.Dir = dir
	}
	if filename := os.Getenv("TS_DB_FILENAME"); filename != "" {
		c.Database.Filename = filename
	}
	c.Database.QueryTimeout = durationFromEnv("TS_DB_QUERY_TIMEOUT", c.Database.QueryTimeout)
	c.Database.WriteTimeout = durationFromEnv("TS_DB_WRITE_TIMEOUT", c.Database.WriteTimeout)
	if perms := os.Getenv("TS_DB_DIR_PERMISSIONS"); perms != "" {
		c.Database.DirPermissions = ParseUint32WithFallback(perms, 8, c.Database.DirPermissions)
	}

	// Directory configuration
	if backend := os.Getenv("TS_BACKEND"); backend != "" {
		c.Directory.Backend = backend
	}
	if url := os.Getenv("TS_API_URL"); url != "" {
		c.Directory.BaseURL = url
	}
	if token := os.Getenv("TS_API_TOKEN"); token != "" {
		c.Directory.Token = token
	}
	if id := os.Getenv("TS_USER_ID"); id != "" {
		if n, err := strconv.ParseInt(id, 10, 64); err == nil {
			c.Directory.UserID = n
		}
	}
	c.Directory.HTTPTimeout = durationFromEnv("TS_HTTP_TIMEOUT", c.Directory.HTTPTimeout)

	// Editor configuration
	c.Editor.HoursDelay = durationFromEnv("TS_HOURS_DELAY", c.Editor.HoursDelay)
	c.Editor.NotesDelay = durationFromEnv("TS_NOTES_DELAY", c.Editor.NotesDelay)
	c.Editor.SavedDisplay = durationFromEnv("TS_SAVED_DISPLAY", c.Editor.SavedDisplay)
	c.Editor.ErrorDisplay = durationFromEnv("TS_ERROR_DISPLAY", c.Editor.ErrorDisplay)
	c.Editor.SaveTimeout = durationFromEnv("TS_SAVE_TIMEOUT", c.Editor.SaveTimeout)

	// Validation configuration
	c.Validation.MaxHoursPerDay = decimalFromEnv("TS_MAX_HOURS", c.Validation.MaxHoursPerDay)
	c.Validation.HoursIncrement = decimalFromEnv("TS_HOURS_INCREMENT", c.Validation.HoursIncrement)
	if maxLen := os.Getenv("TS_NOTE_MAX_LENGTH"); maxLen != "" {
		c.Validation.NoteMaxLength = ParseIntWithFallback(maxLen, c.Validation.NoteMaxLength)
	}

	// Report configuration
	if format := os.Getenv("TS_REPORT_FORMAT"); format != "" {
		c.Report.DefaultFormat = format
	}

	// Application configuration
	c.Application.Timeout = durationFromEnv("TS_TIMEOUT", c.Application.Timeout)
	if verbose := os.Getenv("TS_VERBOSE"); verbose != "" {
		c.Application.Verbose = ParseBoolWithFallback(verbose, c.Application.Verbose)
	}

	return nil
}

// Validate validates the configuration and returns any errors
func (c *Config) Validate() error {
	switch c.Directory.Backend {
	case BackendLocal:
		if c.Database.Dir == "" {
			return &ConfigError{Field: "database.dir", Message: "database directory cannot be empty"}
		}
		if c.Database.Filename == "" {
			return &ConfigError{Field: "database.filename", Message: "database filename cannot be empty"}
		}
		if c.Directory.UserID <= 0 {
			return &ConfigError{Field: "directory.user_id", Message: "local backend needs a positive user id"}
		}
	case BackendRemote:
		if c.Directory.BaseURL == "" {
			return &ConfigError{Field: "directory.base_url", Message: "remote backend needs TS_API_URL"}
		}
		if c.Directory.Token == "" {
			return &ConfigError{Field: "directory.token", Message: "remote backend needs TS_API_TOKEN"}
		}
	default:
		return &ConfigError{Field: "directory.backend", Message: "backend must be 'local' or 'remote'"}
	}

	if c.Database.QueryTimeout <= 0 {
		return &ConfigError{Field: "database.query_timeout", Message: "query timeout must be positive"}
	}
	if c.Database.WriteTimeout <= 0 {
		return &ConfigError{Field: "database.write_timeout", Message: "write timeout must be positive"}
	}
	if c.Directory.HTTPTimeout <= 0 {
		return &ConfigError{Field: "directory.http_timeout", Message: "http timeout must be positive"}
	}

	if c.Editor.HoursDelay < 0 || c.Editor.NotesDelay < 0 {
		return &ConfigError{Field: "editor.delay", Message: "save delays cannot be negative"}
	}
	if c.Editor.SavedDisplay <= 0 || c.Editor.ErrorDisplay <= 0 {
		return &ConfigError{Field: "editor.display", Message: "status display durations must be positive"}
	}
	if c.Editor.SaveTimeout <= 0 {
		return &ConfigError{Field: "editor.save_timeout", Message: "save timeout must be positive"}
	}

	if !c.Validation.MaxHoursPerDay.IsPositive() {
		return &ConfigError{Field: "validation.max_hours_per_day", Message: "maximum hours per day must be positive"}
	}
	if !c.Validation.HoursIncrement.IsPositive() || c.Validation.HoursIncrement.GreaterThan(c.Validation.MaxHoursPerDay) {
		return &ConfigError{Field: "validation.hours_increment", Message: "hours increment must be positive and not exceed the daily maximum"}
	}
	if c.Validation.NoteMaxLength < 1 {
		return &ConfigError{Field: "validation.note_max_length", Message: "note maximum length must be at least 1"}
	}

	switch c.Report.DefaultFormat {
	case "table", "csv", "json":
	default:
		return &ConfigError{Field: "report.default_format", Message: "report format must be table, csv or json"}
	}

	if c.Application.Timeout <= 0 {
		return &ConfigError{Field: "application.timeout", Message: "application timeout must be positive"}
	}

	return nil
}

// ConfigError represents a configuration validation error
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return e.Field + ": " + e.Message
}

func durationFromEnv(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		return ParseDurationWithFallback(v, fallback)
	}
	return fallback
}

func decimalFromEnv(key string, fallback decimal.Decimal) decimal.Decimal {
	if v := os.Getenv(key); v != "" {
		if d, err := decimal.NewFromString(v); err == nil {
			return d
		}
	}
	return fallback
}
