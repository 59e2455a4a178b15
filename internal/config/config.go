// Package config loads and validates crawler configuration via Viper.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Keys of the .env file holding upstream and bot credentials.
const (
	EnvAccessToken  = "HH_RU_ACCESS_TOKEN"
	EnvRefreshToken = "HH_RU_REFRESH_TOKEN"
	EnvClientID     = "HH_RU_CLIENT_ID"
	EnvClientSecret = "HH_RU_CLIENT_SECRET"
	EnvTelegramBot  = "TELEGRAM_TOKEN"
)

// Storage drivers understood by the document store factory.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	HH          HHConfig          `mapstructure:"hh"`
	Credentials CredentialsConfig `mapstructure:"credentials"`
	Telegram    TelegramConfig    `mapstructure:"telegram"`
	HTTP        HTTPConfig        `mapstructure:"http"`
	Storage     StorageConfig     `mapstructure:"storage"`
	DB          DBConfig          `mapstructure:"db"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// HHConfig points the API client at the upstream listings service.
type HHConfig struct {
	BaseURL   string `mapstructure:"base_url"`
	OAuthURL  string `mapstructure:"oauth_url"`
	Country   string `mapstructure:"country"`
	PerPage   int    `mapstructure:"per_page"`
	UserAgent string `mapstructure:"user_agent"`
}

// CredentialsConfig holds the OAuth credentials and the file the access token is written back to.
type CredentialsConfig struct {
	EnvFile      string `mapstructure:"env_file"`
	AccessToken  string `mapstructure:"access_token"`
	RefreshToken string `mapstructure:"refresh_token"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
}

// TelegramConfig configures progress notifications.
type TelegramConfig struct {
	APIURL string `mapstructure:"api_url"`
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// HTTPConfig configures outbound HTTP clients.
type HTTPConfig struct {
	TimeoutSeconds int `mapstructure:"timeout_seconds"`
}

// StorageConfig selects the document store implementation.
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DBConfig controls access to the relational database.
type DBConfig struct {
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table"`
	MaxConns int32  `mapstructure:"max_conns"`
	MinConns int32  `mapstructure:"min_conns"`
}

// MetricsConfig controls the end-of-run Pushgateway push.
type MetricsConfig struct {
	PushgatewayURL string `mapstructure:"pushgateway_url"`
	Job            string `mapstructure:"job"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment. Values from the credentials
// .env file are exported into the process environment first; variables that
// are already set take precedence.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("CRAWLER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindCredentialEnv(v); err != nil {
		return Config{}, err
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	if err := loadEnvFile(v.GetString("credentials.env_file")); err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// setDefaults registers every key; Unmarshal only consults the environment
// for keys viper already knows.
func setDefaults(v *viper.Viper) {
	v.SetDefault("hh.base_url", "https://api.hh.ru")
	v.SetDefault("hh.oauth_url", "https://hh.ru/oauth/token/")
	v.SetDefault("hh.country", "Россия")
	v.SetDefault("hh.per_page", 100)
	v.SetDefault("hh.user_agent", "hh-vacancy-crawler/1.0")
	v.SetDefault("credentials.env_file", ".env")
	v.SetDefault("telegram.api_url", "https://api.telegram.org")
	v.SetDefault("telegram.chat_id", 0)
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("storage.driver", DriverMemory)
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.table", "vacancies")
	v.SetDefault("db.max_conns", 0)
	v.SetDefault("db.min_conns", 0)
	v.SetDefault("metrics.pushgateway_url", "")
	v.SetDefault("metrics.job", "hh_vacancy_crawler")
	v.SetDefault("logging.development", true)
}

func bindCredentialEnv(v *viper.Viper) error {
	bindings := map[string]string{
		"credentials.access_token":  EnvAccessToken,
		"credentials.refresh_token": EnvRefreshToken,
		"credentials.client_id":     EnvClientID,
		"credentials.client_secret": EnvClientSecret,
		"telegram.token":            EnvTelegramBot,
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s: %w", env, err)
		}
	}
	return nil
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.HH.BaseURL == "" {
		return fmt.Errorf("hh.base_url is required")
	}
	if c.HH.OAuthURL == "" {
		return fmt.Errorf("hh.oauth_url is required")
	}
	if c.HH.Country == "" {
		return fmt.Errorf("hh.country is required")
	}
	if c.HH.PerPage <= 0 || c.HH.PerPage > 100 {
		return fmt.Errorf("hh.per_page must be within 1..100")
	}
	if c.HTTP.TimeoutSeconds < 0 {
		return fmt.Errorf("http.timeout_seconds must be >= 0")
	}
	switch c.Storage.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.DB.DSN == "" {
			return fmt.Errorf("db.dsn is required when storage.driver is %q", DriverPostgres)
		}
	default:
		return fmt.Errorf("unknown storage.driver %q", c.Storage.Driver)
	}
	if c.Telegram.Token != "" && c.Telegram.ChatID == 0 {
		return fmt.Errorf("telegram.chat_id must be set when a bot token is configured")
	}
	return nil
}

// HTTPTimeout converts the configured timeout into a duration. Zero disables it.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}
