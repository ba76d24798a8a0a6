package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	DB       DBConfig
	Telegram TelegramConfig
	S3       S3Config
	Log      LogConfig
	Parser   ParserConfig
	Acquire  AcquireConfig
	Session  SessionConfig
	Auth     AuthConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// TelegramConfig holds bot API settings.
type TelegramConfig struct {
	Token       string `mapstructure:"token"`
	PollTimeout int    `mapstructure:"poll_timeout"`
	Debug       bool   `mapstructure:"debug"`
}

// S3Config holds AWS S3 settings for the receipt archive and the external document inbox.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	Archive       bool   `mapstructure:"archive"`
	InboxPrefix   string `mapstructure:"inbox_prefix"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether a bucket is configured at all.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// ParserProviderConfig holds settings for a single LLM parser provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds receipt parser settings. Secondary is optional and only used when
// the primary fails or is rate limited.
type ParserConfig struct {
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
}

// Providers returns the configured providers in fallback order.
func (p *ParserConfig) Providers() []*ParserProviderConfig {
	out := []*ParserProviderConfig{&p.Primary}
	if p.Secondary.Provider != "" {
		out = append(out, &p.Secondary)
	}
	return out
}

// AcquireConfig holds document download settings.
type AcquireConfig struct {
	TempDir         string        `mapstructure:"temp_dir"`
	MaxFileSizeMB   int64         `mapstructure:"max_file_size_mb"`
	DownloadTimeout time.Duration `mapstructure:"download_timeout"`
}

// SessionConfig holds receipt workflow settings.
type SessionConfig struct {
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	SweepInterval     time.Duration `mapstructure:"sweep_interval"`
	ExtractionTimeout time.Duration `mapstructure:"extraction_timeout"`
	ReviewConfidence  float64       `mapstructure:"review_confidence"`
	DefaultCurrency   string        `mapstructure:"default_currency"`
}

// AuthConfig holds the shared secret for service tokens on the HTTP API.
type AuthConfig struct {
	Secret string `mapstructure:"secret"`
	Issuer string `mapstructure:"issuer"`
}

// Load reads configuration from an optional .env file and environment variables with
// the SPENDBOT_ prefix.
func Load() (*Config, error) {
	for _, envFile := range []string{".env", filepath.Join("..", ".env")} {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	v := viper.New()
	v.SetEnvPrefix("SPENDBOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "spendbot")
	v.SetDefault("db.password", "spendbot_secret")
	v.SetDefault("db.name", "spendbot")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// Telegram defaults
	v.SetDefault("telegram.token", "")
	v.SetDefault("telegram.poll_timeout", 60)
	v.SetDefault("telegram.debug", false)

	// S3 defaults (empty bucket disables archive and inbox)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.archive", false)
	v.SetDefault("s3.inbox_prefix", "inbox/")
	v.SetDefault("s3.presign_expiry", 300)

	// Log defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Parser defaults
	v.SetDefault("parser.primary.provider", "claude")
	v.SetDefault("parser.primary.api_key", "")
	v.SetDefault("parser.primary.default_model", "claude-sonnet-4-20250514")
	v.SetDefault("parser.primary.max_retries", 2)
	v.SetDefault("parser.primary.timeout_secs", 90)
	v.SetDefault("parser.secondary.provider", "")
	v.SetDefault("parser.secondary.api_key", "")
	v.SetDefault("parser.secondary.default_model", "")
	v.SetDefault("parser.secondary.max_retries", 2)
	v.SetDefault("parser.secondary.timeout_secs", 90)

	// Acquire defaults
	v.SetDefault("acquire.temp_dir", filepath.Join(os.TempDir(), "spendbot"))
	v.SetDefault("acquire.max_file_size_mb", 20)
	v.SetDefault("acquire.download_timeout", "30s")

	// Session defaults
	v.SetDefault("session.idle_timeout", "30m")
	v.SetDefault("session.sweep_interval", "1m")
	v.SetDefault("session.extraction_timeout", "2m")
	v.SetDefault("session.review_confidence", 0.5)
	v.SetDefault("session.default_currency", "USD")

	// Auth defaults
	v.SetDefault("auth.secret", "change-me-in-production")
	v.SetDefault("auth.issuer", "spendbot")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                    "SPENDBOT_SERVER_PORT",
		"server.read_timeout":            "SPENDBOT_SERVER_READ_TIMEOUT",
		"server.write_timeout":           "SPENDBOT_SERVER_WRITE_TIMEOUT",
		"server.environment":             "SPENDBOT_SERVER_ENVIRONMENT",
		"db.host":                        "SPENDBOT_DB_HOST",
		"db.port":                        "SPENDBOT_DB_PORT",
		"db.user":                        "SPENDBOT_DB_USER",
		"db.password":                    "SPENDBOT_DB_PASSWORD",
		"db.name":                        "SPENDBOT_DB_NAME",
		"db.sslmode":                     "SPENDBOT_DB_SSLMODE",
		"db.max_open":                    "SPENDBOT_DB_MAX_OPEN",
		"db.max_idle":                    "SPENDBOT_DB_MAX_IDLE",
		"telegram.token":                 "SPENDBOT_TELEGRAM_TOKEN",
		"telegram.poll_timeout":          "SPENDBOT_TELEGRAM_POLL_TIMEOUT",
		"telegram.debug":                 "SPENDBOT_TELEGRAM_DEBUG",
		"s3.region":                      "SPENDBOT_S3_REGION",
		"s3.bucket":                      "SPENDBOT_S3_BUCKET",
		"s3.endpoint":                    "SPENDBOT_S3_ENDPOINT",
		"s3.access_key":                  "SPENDBOT_S3_ACCESS_KEY",
		"s3.secret_key":                  "SPENDBOT_S3_SECRET_KEY",
		"s3.archive":                     "SPENDBOT_S3_ARCHIVE",
		"s3.inbox_prefix":                "SPENDBOT_S3_INBOX_PREFIX",
		"s3.presign_expiry":              "SPENDBOT_S3_PRESIGN_EXPIRY",
		"log.level":                      "SPENDBOT_LOG_LEVEL",
		"log.format":                     "SPENDBOT_LOG_FORMAT",
		"parser.primary.provider":        "SPENDBOT_PARSER_PRIMARY_PROVIDER",
		"parser.primary.api_key":         "SPENDBOT_PARSER_PRIMARY_API_KEY",
		"parser.primary.default_model":   "SPENDBOT_PARSER_PRIMARY_DEFAULT_MODEL",
		"parser.primary.max_retries":     "SPENDBOT_PARSER_PRIMARY_MAX_RETRIES",
		"parser.primary.timeout_secs":    "SPENDBOT_PARSER_PRIMARY_TIMEOUT_SECS",
		"parser.secondary.provider":      "SPENDBOT_PARSER_SECONDARY_PROVIDER",
		"parser.secondary.api_key":       "SPENDBOT_PARSER_SECONDARY_API_KEY",
		"parser.secondary.default_model": "SPENDBOT_PARSER_SECONDARY_DEFAULT_MODEL",
		"parser.secondary.max_retries":   "SPENDBOT_PARSER_SECONDARY_MAX_RETRIES",
		"parser.secondary.timeout_secs":  "SPENDBOT_PARSER_SECONDARY_TIMEOUT_SECS",
		"acquire.temp_dir":               "SPENDBOT_ACQUIRE_TEMP_DIR",
		"acquire.max_file_size_mb":       "SPENDBOT_ACQUIRE_MAX_FILE_SIZE_MB",
		"acquire.download_timeout":       "SPENDBOT_ACQUIRE_DOWNLOAD_TIMEOUT",
		"session.idle_timeout":           "SPENDBOT_SESSION_IDLE_TIMEOUT",
		"session.sweep_interval":         "SPENDBOT_SESSION_SWEEP_INTERVAL",
		"session.extraction_timeout":     "SPENDBOT_SESSION_EXTRACTION_TIMEOUT",
		"session.review_confidence":      "SPENDBOT_SESSION_REVIEW_CONFIDENCE",
		"session.default_currency":       "SPENDBOT_SESSION_DEFAULT_CURRENCY",
		"auth.secret":                    "SPENDBOT_AUTH_SECRET",
		"auth.issuer":                    "SPENDBOT_AUTH_ISSUER",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it unless SPENDBOT_SERVER_PORT is explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("SPENDBOT_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Telegram = TelegramConfig{
		Token:       v.GetString("telegram.token"),
		PollTimeout: v.GetInt("telegram.poll_timeout"),
		Debug:       v.GetBool("telegram.debug"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		Archive:       v.GetBool("s3.archive"),
		InboxPrefix:   v.GetString("s3.inbox_prefix"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.Parser = ParserConfig{
		Primary: ParserProviderConfig{
			Provider:     v.GetString("parser.primary.provider"),
			APIKey:       v.GetString("parser.primary.api_key"),
			DefaultModel: v.GetString("parser.primary.default_model"),
			MaxRetries:   v.GetInt("parser.primary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.primary.timeout_secs"),
		},
		Secondary: ParserProviderConfig{
			Provider:     v.GetString("parser.secondary.provider"),
			APIKey:       v.GetString("parser.secondary.api_key"),
			DefaultModel: v.GetString("parser.secondary.default_model"),
			MaxRetries:   v.GetInt("parser.secondary.max_retries"),
			TimeoutSecs:  v.GetInt("parser.secondary.timeout_secs"),
		},
	}
	cfg.Acquire = AcquireConfig{
		TempDir:         v.GetString("acquire.temp_dir"),
		MaxFileSizeMB:   v.GetInt64("acquire.max_file_size_mb"),
		DownloadTimeout: v.GetDuration("acquire.download_timeout"),
	}
	cfg.Session = SessionConfig{
		IdleTimeout:       v.GetDuration("session.idle_timeout"),
		SweepInterval:     v.GetDuration("session.sweep_interval"),
		ExtractionTimeout: v.GetDuration("session.extraction_timeout"),
		ReviewConfidence:  v.GetFloat64("session.review_confidence"),
		DefaultCurrency:   strings.ToUpper(v.GetString("session.default_currency")),
	}
	cfg.Auth = AuthConfig{
		Secret: v.GetString("auth.secret"),
		Issuer: v.GetString("auth.issuer"),
	}

	if cfg.Session.ReviewConfidence < 0 || cfg.Session.ReviewConfidence > 1 {
		return nil, fmt.Errorf("session.review_confidence must be within [0, 1], got %v", cfg.Session.ReviewConfidence)
	}

	return cfg, nil
}
