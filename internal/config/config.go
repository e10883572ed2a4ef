package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreAirtable = "airtable"
	StorePostgres = "postgres"
	StoreMemory   = "memory"
)

type Config struct {
	Port           string
	LogLevel       string
	LogFormat      string
	AllowedOrigins []string
	MetricsEnabled bool

	UpstreamTimeout time.Duration
	NotifyTimeout   time.Duration
	ShutdownTimeout time.Duration

	Store       string
	Airtable    AirtableConfig
	DatabaseURL string

	LINE    LINEConfig
	AMQPURL string
	Mail    MailConfig
}

type AirtableConfig struct {
	URL    string
	BaseID string
	APIKey string
	Table  string
}

type LINEConfig struct {
	AccessToken string
	APIURL      string
}

// MailConfig is the optional staff alert mailbox.
type MailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       []string
}

// Enabled reports whether staff mail alerts should be sent.
func (m MailConfig) Enabled() bool {
	return m.Host != "" && len(m.To) > 0
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:            getEnv("PORT", "3000"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "json"),
		AllowedOrigins:  getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		MetricsEnabled:  getEnvBool("METRICS_ENABLED", true),
		UpstreamTimeout: getEnvDuration("UPSTREAM_TIMEOUT", 10*time.Second),
		NotifyTimeout:   getEnvDuration("NOTIFY_TIMEOUT", 10*time.Second),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Store:           strings.ToLower(getEnv("KARTE_STORE", StoreAirtable)),
		Airtable: AirtableConfig{
			URL:    getEnv("AIRTABLE_URL", "https://api.airtable.com/v0"),
			BaseID: getEnv("AIRTABLE_BASE_ID", ""),
			APIKey: getEnv("AIRTABLE_API_KEY", ""),
			Table:  getEnv("AIRTABLE_TABLE", "カルテ"),
		},
		DatabaseURL: getEnv("DATABASE_URL", ""),
		LINE: LINEConfig{
			AccessToken: getEnv("LINE_CHANNEL_ACCESS_TOKEN", ""),
			APIURL:      getEnv("LINE_API_URL", "https://api.line.me/v2/bot"),
		},
		AMQPURL: getEnv("AMQP_URL", ""),
		Mail: MailConfig{
			Host:     getEnv("STAFF_MAIL_HOST", ""),
			Port:     getEnvInt("STAFF_MAIL_PORT", 587),
			User:     getEnv("STAFF_MAIL_USER", ""),
			Password: getEnv("STAFF_MAIL_PASS", ""),
			From:     getEnv("STAFF_MAIL_FROM", ""),
			To:       getEnvList("STAFF_MAIL_TO", nil),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks the settings the selected store driver needs.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	switch c.Store {
	case StoreAirtable:
		if c.Airtable.BaseID == "" || c.Airtable.APIKey == "" {
			return fmt.Errorf("AIRTABLE_BASE_ID and AIRTABLE_API_KEY are required for the airtable store")
		}
		if c.Airtable.Table == "" {
			return fmt.Errorf("AIRTABLE_TABLE cannot be empty")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres store")
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown KARTE_STORE %q", c.Store)
	}

	if c.Mail.Enabled() && c.Mail.From == "" {
		return fmt.Errorf("STAFF_MAIL_FROM is required when staff mail is enabled")
	}
	if c.NotifyTimeout <= 0 || c.UpstreamTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
