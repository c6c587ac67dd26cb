package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/BurntSushi/toml"
)

type Config struct {
	// HTTP server
	Port           string   `toml:"port"`
	LogLevel       string   `toml:"log_level"`
	SecureCookies  bool     `toml:"secure_cookies"`
	TrustedProxies []string `toml:"trusted_proxies"`
	RateLimitRPM   int      `toml:"rate_limit_per_minute"`

	// Storage
	DataBackend   string `toml:"data_backend"`
	SQLiteDBPath  string `toml:"sqlite_db_path"`
	MemorySeedDir string `toml:"memory_seed_dir"`

	// AMQP
	AMQPURL      string `toml:"amqp_url"`
	AMQPExchange string `toml:"amqp_exchange"`
	AMQPQueue    string `toml:"amqp_queue"`

	// Google OAuth for the user's calendar
	GoogleOAuthClientFile  string `toml:"google_oauth_client_file"`
	GoogleOAuthClientJSON  string `toml:"google_oauth_client_json"`
	GoogleOAuthRedirectURL string `toml:"google_oauth_redirect_url"`
	GoogleOAuthSuccessURL  string `toml:"google_oauth_success_url"`

	// Server-owned Drive credential holding the app-data token files
	GoogleDriveTokenFile string `toml:"google_drive_token_file"`
	GoogleDriveTokenJSON string `toml:"google_drive_token_json"`

	SessionSecret   string `toml:"session_secret"`
	DefaultTimeZone string `toml:"default_timezone"`

	// Analytics cache
	CacheTTL  time.Duration `toml:"cache_ttl"`
	CacheSize int           `toml:"cache_size"`

	// Reminder worker
	ReminderInterval   time.Duration `toml:"reminder_interval"`
	ReminderWindowDays int           `toml:"reminder_window_days"`
	CalendarUserID     string        `toml:"calendar_user_id"`

	// Calendar sync worker
	SyncInterval  time.Duration `toml:"sync_interval"`
	SyncBatchSize int           `toml:"sync_batch_size"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() *Config {
	return &Config{
		Port:               "8081",
		LogLevel:           "info",
		RateLimitRPM:       60,
		DataBackend:        "sqlite",
		SQLiteDBPath:       "./data/zen.db",
		AMQPExchange:       "financaszen",
		AMQPQueue:          "calendar_sync",
		DefaultTimeZone:    "America/Sao_Paulo",
		CacheTTL:           5 * time.Minute,
		CacheSize:          128,
		ReminderInterval:   time.Hour,
		ReminderWindowDays: 7,
		SyncInterval:       5 * time.Minute,
		SyncBatchSize:      20,
	}
}

// Load layers the optional TOML file named by ZEN_CONFIG_FILE and then the
// environment over Defaults.
func Load() (*Config, error) {
	cfg := Defaults()
	if path := os.Getenv("ZEN_CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

// MergeFile overwrites the keys present in a TOML file.
func (c *Config) MergeFile(path string) error {
	md, err := toml.DecodeFile(path, c)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("config file %s: unknown keys %v", path, undecoded)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Port = getEnv("PORT", c.Port)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.SecureCookies = getEnvBool("SECURE_COOKIES", c.SecureCookies)
	c.TrustedProxies = getEnvList("TRUSTED_PROXIES", c.TrustedProxies)
	c.RateLimitRPM = getEnvInt("RATE_LIMIT_PER_MINUTE", c.RateLimitRPM)

	c.DataBackend = getEnv("DATA_BACKEND", c.DataBackend)
	c.SQLiteDBPath = getEnv("SQLITE_DB_PATH", c.SQLiteDBPath)
	c.MemorySeedDir = getEnv("MEMORY_SEED_DIR", c.MemorySeedDir)

	c.AMQPURL = getEnv("AMQP_URL", c.AMQPURL)
	c.AMQPExchange = getEnv("AMQP_EXCHANGE", c.AMQPExchange)
	c.AMQPQueue = getEnv("AMQP_QUEUE", c.AMQPQueue)

	c.GoogleOAuthClientFile = getEnv("GOOGLE_OAUTH_CLIENT_FILE", c.GoogleOAuthClientFile)
	c.GoogleOAuthClientJSON = getEnv("GOOGLE_OAUTH_CLIENT_JSON", c.GoogleOAuthClientJSON)
	c.GoogleOAuthRedirectURL = getEnv("GOOGLE_OAUTH_REDIRECT_URL", c.GoogleOAuthRedirectURL)
	c.GoogleOAuthSuccessURL = getEnv("GOOGLE_OAUTH_SUCCESS_URL", c.GoogleOAuthSuccessURL)
	c.GoogleDriveTokenFile = getEnv("GOOGLE_DRIVE_TOKEN_FILE", c.GoogleDriveTokenFile)
	c.GoogleDriveTokenJSON = getEnv("GOOGLE_DRIVE_TOKEN_JSON", c.GoogleDriveTokenJSON)

	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.DefaultTimeZone = getEnv("DEFAULT_TIMEZONE", c.DefaultTimeZone)

	c.CacheTTL = getEnvDuration("CACHE_TTL", c.CacheTTL)
	c.CacheSize = getEnvInt("CACHE_SIZE", c.CacheSize)
	c.ReminderInterval = getEnvDuration("REMINDER_INTERVAL", c.ReminderInterval)
	c.ReminderWindowDays = getEnvInt("REMINDER_WINDOW_DAYS", c.ReminderWindowDays)
	c.CalendarUserID = getEnv("CALENDAR_USER_ID", c.CalendarUserID)
	c.SyncInterval = getEnvDuration("SYNC_INTERVAL", c.SyncInterval)
	c.SyncBatchSize = getEnvInt("SYNC_BATCH_SIZE", c.SyncBatchSize)
}

// GoogleEnabled reports whether the OAuth client is configured.
func (c *Config) GoogleEnabled() bool {
	return c.GoogleOAuthClientFile != "" || c.GoogleOAuthClientJSON != ""
}

// DriveEnabled reports whether tokens go to the Drive app-data folder.
func (c *Config) DriveEnabled() bool {
	return c.GoogleDriveTokenFile != "" || c.GoogleDriveTokenJSON != ""
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var problems []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		problems = append(problems, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		problems = append(problems, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	switch c.DataBackend {
	case "memory":
	case "sqlite":
		if c.SQLiteDBPath == "" {
			problems = append(problems, "SQLite database path cannot be empty when using sqlite backend")
		} else if dir := filepath.Dir(c.SQLiteDBPath); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				problems = append(problems, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
			}
		}
	default:
		problems = append(problems, fmt.Sprintf("invalid data backend '%s': must be one of [memory sqlite]", c.DataBackend))
	}

	if c.AMQPURL != "" {
		if u, err := url.Parse(c.AMQPURL); err != nil {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if u.Scheme != "amqp" && u.Scheme != "amqps" {
			problems = append(problems, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", u.Scheme))
		}
		if c.AMQPExchange == "" {
			problems = append(problems, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			problems = append(problems, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.GoogleOAuthClientFile != "" {
		if _, err := os.Stat(c.GoogleOAuthClientFile); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("Google OAuth client file does not exist: %s", c.GoogleOAuthClientFile))
		}
	}
	if c.GoogleEnabled() && c.GoogleOAuthRedirectURL == "" {
		problems = append(problems, "GOOGLE_OAUTH_REDIRECT_URL is required when the Google OAuth client is configured")
	}
	if c.GoogleDriveTokenFile != "" {
		if _, err := os.Stat(c.GoogleDriveTokenFile); os.IsNotExist(err) {
			problems = append(problems, fmt.Sprintf("Google Drive token file does not exist: %s", c.GoogleDriveTokenFile))
		}
	}
	if c.DriveEnabled() && !c.GoogleEnabled() {
		problems = append(problems, "the Drive token store needs GOOGLE_OAUTH_CLIENT_FILE or GOOGLE_OAUTH_CLIENT_JSON")
	}

	if c.SessionSecret != "" && len(c.SessionSecret) < 16 {
		problems = append(problems, "SESSION_SECRET must be at least 16 characters")
	}
	if _, err := time.LoadLocation(c.DefaultTimeZone); err != nil {
		problems = append(problems, fmt.Sprintf("invalid default timezone '%s'", c.DefaultTimeZone))
	}

	if c.RateLimitRPM < 1 {
		problems = append(problems, fmt.Sprintf("invalid rate limit %d: must be at least 1", c.RateLimitRPM))
	}
	if c.CacheSize < 1 {
		problems = append(problems, fmt.Sprintf("invalid cache size %d: must be at least 1", c.CacheSize))
	}
	if c.CacheTTL < time.Second {
		problems = append(problems, fmt.Sprintf("invalid cache TTL %v: must be at least 1 second", c.CacheTTL))
	}
	if c.ReminderInterval < time.Minute {
		problems = append(problems, fmt.Sprintf("invalid reminder interval %v: must be at least 1 minute", c.ReminderInterval))
	} else if c.ReminderInterval > 24*time.Hour {
		problems = append(problems, fmt.Sprintf("invalid reminder interval %v: must be at most 24 hours", c.ReminderInterval))
	}
	if c.ReminderWindowDays < 0 || c.ReminderWindowDays > 90 {
		problems = append(problems, fmt.Sprintf("invalid reminder window %d: must be between 0 and 90 days", c.ReminderWindowDays))
	}

	if c.SyncInterval < 10*time.Second {
		problems = append(problems, fmt.Sprintf("invalid sync interval %v: must be at least 10 seconds", c.SyncInterval))
	}
	if c.SyncBatchSize < 1 || c.SyncBatchSize > 500 {
		problems = append(problems, fmt.Sprintf("invalid sync batch size %d: must be between 1 and 500", c.SyncBatchSize))
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(problems, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
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

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
