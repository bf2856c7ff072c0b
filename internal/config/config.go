package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingConfig is returned when a required configuration value is absent
var ErrMissingConfig = errors.New("missing required configuration")

// BackendConfig holds the connection settings for the hosted identity service.
// ServiceKey is the service-role credential and must never leave the server.
type BackendConfig struct {
	URL          string
	ServiceKey   string
	ClientID     string
	Certificate  string
	Organization string
	Application  string
}

// EventsConfig holds message broker settings
type EventsConfig struct {
	KafkaBrokers []string
}

type Config struct {
	Environment string
	Port        string
	LogLevel    slog.Level
	DatabaseURL string
	RedisURL    string
	Backend     BackendConfig
	Events      EventsConfig
}

var envKeys = []string{
	"ENVIRONMENT",
	"PORT",
	"LOG_LEVEL",
	"DATABASE_URL",
	"REDIS_URL",
	"KAFKA_BROKERS",
	"AUTH_BACKEND_URL",
	"AUTH_SERVICE_KEY",
	"AUTH_CLIENT_ID",
	"AUTH_CERTIFICATE",
	"AUTH_ORGANIZATION",
	"AUTH_APPLICATION",
}

// LoadConfig reads configuration from an optional .env file and the process environment
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Debug(".env file not found, using environment variables", "error", err)
	}

	v := viper.New()
	v.AutomaticEnv()
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")

	level, err := parseLogLevel(v.GetString("LOG_LEVEL"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Environment: v.GetString("ENVIRONMENT"),
		Port:        v.GetString("PORT"),
		LogLevel:    level,
		DatabaseURL: v.GetString("DATABASE_URL"),
		RedisURL:    v.GetString("REDIS_URL"),
		Backend: BackendConfig{
			URL:          v.GetString("AUTH_BACKEND_URL"),
			ServiceKey:   v.GetString("AUTH_SERVICE_KEY"),
			ClientID:     v.GetString("AUTH_CLIENT_ID"),
			Certificate:  v.GetString("AUTH_CERTIFICATE"),
			Organization: v.GetString("AUTH_ORGANIZATION"),
			Application:  v.GetString("AUTH_APPLICATION"),
		},
		Events: EventsConfig{
			KafkaBrokers: splitList(v.GetString("KAFKA_BROKERS")),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every required setting is present
func (c *Config) Validate() error {
	var missing []string
	if c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}
	missing = append(missing, c.Backend.missing()...)

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

// Validate checks that the identity service can be reached with elevated rights
func (b BackendConfig) Validate() error {
	if missing := b.missing(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", "))
	}
	return nil
}

func (b BackendConfig) missing() []string {
	var missing []string
	if b.URL == "" {
		missing = append(missing, "AUTH_BACKEND_URL")
	}
	if b.ServiceKey == "" {
		missing = append(missing, "AUTH_SERVICE_KEY")
	}
	if b.ClientID == "" {
		missing = append(missing, "AUTH_CLIENT_ID")
	}
	if b.Organization == "" {
		missing = append(missing, "AUTH_ORGANIZATION")
	}
	// Bearer tokens cannot be verified without the signing certificate
	if b.Certificate == "" {
		missing = append(missing, "AUTH_CERTIFICATE")
	}
	return missing
}

// IsProduction reports whether the service runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// String masks secrets so the config can be logged
func (c *Config) String() string {
	return fmt.Sprintf("Config{Environment: %s, Port: %s, Backend: %s, ServiceKey: ***}",
		c.Environment, c.Port, c.Backend.URL)
}

func parseLogLevel(value string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL %q: %w", value, err)
	}
	return level, nil
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var items []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
