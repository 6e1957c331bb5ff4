package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

// Server is the configuration of cmd/server.
type Server struct {
	Addr            string
	Store           string
	DBPath          string
	DatabaseURL     string
	MongoURI        string
	MongoDatabase   string
	TokenHashKey    []byte
	TokenBlockKey   []byte
	TokenTTL        time.Duration
	CORSOrigins     []string
	DefaultLocale   string
	DisplayTimezone string
	DiscordToken    string
	DiscordChannel  string
	LogLevel        string
	LogFormat       string

	// ReminderSchedule is a cron spec; empty disables reminders.
	ReminderSchedule string
	ReminderWindow   time.Duration
}

// Client is the configuration of cmd/volunteer.
type Client struct {
	APIURL          string
	SessionFile     string
	Locale          string
	DisplayTimezone string
}

// loadDotEnv reads .env if present. Values already in the environment win.
func loadDotEnv() {
	// .env is optional when variables come from the environment (Docker, CI, etc.).
	_ = godotenv.Load()
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// LoadServer loads the server configuration from the environment and validates it.
func LoadServer() (*Server, error) {
	loadDotEnv()

	ttl, err := time.ParseDuration(getenv("TOKEN_TTL", "24h"))
	if err != nil {
		return nil, fmt.Errorf("config: TOKEN_TTL invalid: %w", err)
	}
	window, err := time.ParseDuration(getenv("REMINDER_WINDOW", "1h"))
	if err != nil {
		return nil, fmt.Errorf("config: REMINDER_WINDOW invalid: %w", err)
	}

	cfg := &Server{
		Addr:            getenv("ADDR", ":3333"),
		Store:           strings.ToLower(getenv("STORE", StoreJSON)),
		DBPath:          getenv("DB_PATH", "db.json"),
		DatabaseURL:     getenv("DATABASE_URL", ""),
		MongoURI:        getenv("MONGO_URI", ""),
		MongoDatabase:   getenv("MONGO_DATABASE", "volunteerhub"),
		TokenHashKey:    []byte(getenv("TOKEN_HASH_KEY", "")),
		TokenBlockKey:   []byte(getenv("TOKEN_BLOCK_KEY", "")),
		TokenTTL:        ttl,
		CORSOrigins:     splitList(getenv("CORS_ORIGINS", "")),
		DefaultLocale:   getenv("DEFAULT_LOCALE", "en"),
		DisplayTimezone: getenv("DISPLAY_TIMEZONE", "UTC"),
		DiscordToken:    getenv("DISCORD_TOKEN", ""),
		DiscordChannel:  getenv("DISCORD_CHANNEL_ID", ""),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),

		ReminderSchedule: getenv("REMINDER_SCHEDULE", "*/5 * * * *"),
		ReminderWindow:   window,
	}
	if strings.EqualFold(cfg.ReminderSchedule, "off") {
		cfg.ReminderSchedule = ""
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Server) validate() error {
	switch c.Store {
	case StoreJSON:
		if c.DBPath == "" {
			return errors.New("config: DB_PATH is required for STORE=json")
		}
	case StorePostgres:
		if err := validateURL("DATABASE_URL", c.DatabaseURL); err != nil {
			return err
		}
	case StoreMongo:
		if err := validateURL("MONGO_URI", c.MongoURI); err != nil {
			return err
		}
	default:
		return fmt.Errorf("config: STORE must be one of json, postgres, mongo (got %q)", c.Store)
	}

	if len(c.TokenHashKey) < 32 {
		return errors.New("config: TOKEN_HASH_KEY is required and must be at least 32 bytes")
	}
	switch len(c.TokenBlockKey) {
	case 0, 16, 24, 32:
	default:
		return errors.New("config: TOKEN_BLOCK_KEY must be 16, 24 or 32 bytes when set")
	}
	if c.TokenTTL <= 0 {
		return errors.New("config: TOKEN_TTL must be positive")
	}

	if (c.DiscordToken == "") != (c.DiscordChannel == "") {
		return errors.New("config: DISCORD_TOKEN and DISCORD_CHANNEL_ID must be set together")
	}
	for _, r := range c.DiscordChannel {
		if r < '0' || r > '9' {
			return errors.New("config: DISCORD_CHANNEL_ID must be a Discord channel id (digits only)")
		}
	}

	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("config: LOG_FORMAT must be json or console (got %q)", c.LogFormat)
	}
	if c.ReminderSchedule != "" && c.ReminderWindow <= 0 {
		return errors.New("config: REMINDER_WINDOW must be positive")
	}
	if _, err := time.LoadLocation(c.DisplayTimezone); err != nil {
		return fmt.Errorf("config: DISPLAY_TIMEZONE invalid: %w", err)
	}
	return nil
}

// DiscordEnabled reports whether event announcements should be posted.
func (c *Server) DiscordEnabled() bool {
	return c.DiscordToken != "" && c.DiscordChannel != ""
}

// LoadClient loads the CLI configuration.
func LoadClient() (*Client, error) {
	loadDotEnv()

	sessionFile := getenv("VOLUNTEER_SESSION_FILE", "")
	if sessionFile == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("config: locate config dir: %w", err)
		}
		sessionFile = filepath.Join(dir, "volunteerhub", "session.json")
	}

	cfg := &Client{
		APIURL:          strings.TrimRight(getenv("VOLUNTEER_API_URL", "http://localhost:3333"), "/"),
		SessionFile:     sessionFile,
		Locale:          getenv("VOLUNTEER_LOCALE", "en"),
		DisplayTimezone: getenv("DISPLAY_TIMEZONE", "Local"),
	}
	if err := validateURL("VOLUNTEER_API_URL", cfg.APIURL); err != nil {
		return nil, err
	}
	return cfg, nil
}

func validateURL(key, raw string) error {
	if raw == "" {
		return fmt.Errorf("config: %s is required", key)
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("config: %s invalid (%q): %w", key, raw, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("config: %s invalid (%q): missing scheme or host", key, raw)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
