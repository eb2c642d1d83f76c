package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
)

type Config struct {
	App          AppConfig          `koanf:"app"`
	Database     DatabaseConfig     `koanf:"db"`
	JWT          JWTConfig          `koanf:"jwt"`
	Line         LineConfig         `koanf:"line"`
	Email        EmailConfig        `koanf:"email"`
	SMTP         SMTPConfig         `koanf:"smtp"`
	SES          SESConfig          `koanf:"ses"`
	Slack        SlackConfig        `koanf:"slack"`
	Log          LogConfig          `koanf:"log"`
	Notification NotificationConfig `koanf:"notification"`
	Share        ShareConfig        `koanf:"share"`
}

// AppConfig holds application configuration
type AppConfig struct {
	Name           string   `koanf:"name"`
	Version        string   `koanf:"version"`
	Port           int      `koanf:"port" validate:"required,min=1,max=65535"`
	Env            string   `koanf:"env" validate:"oneof=development staging production test"`
	Timezone       string   `koanf:"timezone" validate:"required"`
	PublicBaseURL  string   `koanf:"public_base_url" validate:"omitempty,url"`
	AllowedOrigins []string `koanf:"allowed_origins"`
}

type DatabaseConfig struct {
	Host     string `koanf:"host" validate:"required"`
	Port     int    `koanf:"port" validate:"required"`
	User     string `koanf:"user" validate:"required"`
	Password string `koanf:"password" validate:"required"`
	Name     string `koanf:"name" validate:"required"`
	SSLMode  string `koanf:"ssl_mode"`
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string `koanf:"secret_key" validate:"required"`
	AccessExpiration string `koanf:"access_expiration_time" validate:"required"`
}

// LineConfig covers both the Messaging API channel (bot webhook) and the
// LINE Login channel used by the LIFF app and the web login.
type LineConfig struct {
	ChannelSecret      string   `koanf:"channel_secret" validate:"required"`
	ChannelAccessToken string   `koanf:"channel_access_token" validate:"required"`
	LoginChannelID     string   `koanf:"login_channel_id" validate:"required"`
	LoginChannelSecret string   `koanf:"login_channel_secret" validate:"required"`
	LoginRedirectURL   string   `koanf:"login_redirect_url" validate:"omitempty,url"`
	LoginScopes        []string `koanf:"login_scopes"`
}

type EmailConfig struct {
	// Provider selects the transport: "smtp" or "ses".
	Provider string `koanf:"provider" validate:"oneof=smtp ses"`
}

type SMTPConfig struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	From     string `koanf:"from" validate:"omitempty,email"`
	FromName string `koanf:"from_name"`
}

type SESConfig struct {
	Region   string `koanf:"region"`
	From     string `koanf:"from" validate:"omitempty,email"`
	FromName string `koanf:"from_name"`
}

type SlackConfig struct {
	Token   string `koanf:"token"`
	Channel string `koanf:"channel"`
}

type LogConfig struct {
	Level      string `koanf:"level" validate:"oneof=debug info warn error"`
	File       string `koanf:"file"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

type NotificationConfig struct {
	Workers   int           `koanf:"workers" validate:"min=1"`
	QueueSize int           `koanf:"queue_size" validate:"min=1"`
	Timeout   time.Duration `koanf:"timeout"`
}

type ShareConfig struct {
	DefaultTTLDays int `koanf:"default_ttl_days" validate:"min=1"`
	MaxTTLDays     int `koanf:"max_ttl_days" validate:"gtefield=DefaultTTLDays"`
}

// envSections lists the env var prefixes that map onto config sections,
// e.g. DB_HOST -> db.host, LINE_CHANNEL_SECRET -> line.channel_secret.
var envSections = map[string]bool{
	"app": true, "db": true, "jwt": true, "line": true, "email": true, "smtp": true,
	"ses": true, "slack": true, "log": true, "notification": true, "share": true,
}

// Load builds the configuration from defaults, .env, an optional YAML file
// (CONFIG_FILE) and environment variables, in that order of precedence.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")
	cfg := defaults()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func envKey(s string) string {
	section, rest, ok := strings.Cut(strings.ToLower(s), "_")
	if !ok || !envSections[section] {
		return ""
	}
	return section + "." + rest
}

func defaults() *Config {
	return &Config{
		App: AppConfig{
			Name:           "kintai-line",
			Version:        "v1.0.0",
			Port:           8080,
			Env:            "development",
			Timezone:       "Asia/Tokyo",
			AllowedOrigins: []string{"http://localhost:3000"},
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "postgres",
			Name:    "kintai",
			SSLMode: "disable",
		},
		JWT: JWTConfig{
			AccessExpiration: "24h",
		},
		Line: LineConfig{
			LoginScopes: []string{"profile", "openid", "email"},
		},
		Email: EmailConfig{Provider: "smtp"},
		SMTP:  SMTPConfig{Port: 587, FromName: "Kintai"},
		SES:   SESConfig{Region: "ap-northeast-1", FromName: "Kintai"},
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  50,
			MaxBackups: 5,
			MaxAgeDays: 28,
		},
		Notification: NotificationConfig{
			Workers:   2,
			QueueSize: 256,
			Timeout:   15 * time.Second,
		},
		Share: ShareConfig{
			DefaultTTLDays: 7,
			MaxTTLDays:     90,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("APP_TIMEZONE is invalid: %w", err)
	}
	if _, err := time.ParseDuration(c.JWT.AccessExpiration); err != nil {
		return fmt.Errorf("JWT_ACCESS_EXPIRATION_TIME is invalid: %w", err)
	}
	if c.Email.Provider == "ses" && c.SES.From == "" {
		return fmt.Errorf("SES_FROM is required when EMAIL_PROVIDER is ses")
	}
	return nil
}

// Location returns the single fixed timezone all calendar days are computed in.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
