package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env            string
	Port           int
	APIPrefix      string
	RequestTimeout time.Duration

	Database      DatabaseConfig
	Redis         RedisConfig
	Session       SessionConfig
	CORS          CORSConfig
	Log           LogConfig
	Upload        UploadConfig
	Notifications NotificationConfig
	RateLimit     RateLimitConfig
	Metrics       MetricsConfig
}

type DatabaseConfig struct {
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	CacheTTL time.Duration
}

// SessionConfig governs the signed admin session cookie.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// UploadConfig selects and tunes the upload driver.
type UploadConfig struct {
	Driver     string
	Dir        string
	PublicPath string
	MaxBytes   int64
	// MaxRequestBytes caps a whole upload request body, every file included.
	MaxRequestBytes int64
	Timeout         time.Duration
	S3              S3Config
}

// S3Config holds bucket settings for the s3 upload driver.
type S3Config struct {
	Region          string
	Bucket          string
	AccessKeyID     string
	SecretAccessKey string
}

// NotificationConfig holds provider credentials and fanout tuning.
type NotificationConfig struct {
	Twilio      TwilioConfig
	SMTP        SMTPConfig
	Workers     int
	Concurrency int
	SendTimeout time.Duration
	Retries     int
}

// TwilioConfig holds SMS provider credentials.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
}

// Enabled reports whether every Twilio credential is present.
func (c TwilioConfig) Enabled() bool {
	return c.AccountSID != "" && c.AuthToken != "" && c.FromNumber != ""
}

// SMTPConfig holds email provider settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// Enabled reports whether the SMTP relay is configured.
func (c SMTPConfig) Enabled() bool {
	return c.Host != "" && c.Port > 0 && c.From != ""
}

// RateLimitConfig bounds login attempts per client IP.
type RateLimitConfig struct {
	LoginPerMinute int
}

type MetricsConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = strings.TrimRight(v.GetString("API_PREFIX"), "/")
	cfg.RequestTimeout = parseDuration(v.GetString("REQUEST_TIMEOUT"), 15*time.Second)

	cfg.Database = DatabaseConfig{
		URL:             v.GetString("DATABASE_URL"),
		Host:            v.GetString("DB_HOST"),
		Port:            v.GetInt("DB_PORT"),
		User:            v.GetString("DB_USER"),
		Password:        v.GetString("DB_PASSWORD"),
		Name:            v.GetString("DB_NAME"),
		SSLMode:         v.GetString("DB_SSL_MODE"),
		MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
		ConnMaxIdleTime: parseDuration(v.GetString("DB_CONN_MAX_IDLE_TIME"), 5*time.Minute),
		ConnMaxLifetime: parseDuration(v.GetString("DB_CONN_MAX_LIFETIME"), time.Hour),
		AutoMigrate:     v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_CACHE"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
		CacheTTL: parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 4*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		Secure:     cfg.Env == EnvProduction,
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	maxUpload := v.GetInt64("UPLOAD_MAX_BYTES")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	maxRequest := v.GetInt64("UPLOAD_MAX_REQUEST_BYTES")
	if maxRequest <= 0 {
		maxRequest = 8*maxUpload + 1024*1024
	}
	cfg.Upload = UploadConfig{
		Driver:          strings.ToLower(v.GetString("UPLOAD_DRIVER")),
		Dir:             v.GetString("UPLOAD_DIR"),
		PublicPath:      "/" + strings.Trim(v.GetString("UPLOAD_PUBLIC_PATH"), "/"),
		MaxBytes:        maxUpload,
		MaxRequestBytes: maxRequest,
		Timeout:         parseDuration(v.GetString("UPLOAD_TIMEOUT"), 30*time.Second),
		S3: S3Config{
			Region:          v.GetString("S3_REGION"),
			Bucket:          v.GetString("S3_BUCKET"),
			AccessKeyID:     v.GetString("S3_ACCESS_KEY_ID"),
			SecretAccessKey: v.GetString("S3_SECRET_ACCESS_KEY"),
		},
	}

	cfg.Notifications = NotificationConfig{
		Twilio: TwilioConfig{
			AccountSID: v.GetString("TWILIO_ACCOUNT_SID"),
			AuthToken:  v.GetString("TWILIO_AUTH_TOKEN"),
			FromNumber: v.GetString("TWILIO_FROM_NUMBER"),
		},
		SMTP: SMTPConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("SMTP_FROM"),
		},
		Workers:     v.GetInt("NOTIFY_WORKERS"),
		Concurrency: v.GetInt("NOTIFY_CONCURRENCY"),
		SendTimeout: parseDuration(v.GetString("NOTIFY_SEND_TIMEOUT"), 10*time.Second),
		Retries:     v.GetInt("NOTIFY_RETRIES"),
	}

	cfg.RateLimit = RateLimitConfig{LoginPerMinute: v.GetInt("LOGIN_RATE_LIMIT")}
	cfg.Metrics = MetricsConfig{Enabled: v.GetBool("ENABLE_METRICS")}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")
	v.SetDefault("REQUEST_TIMEOUT", "15s")

	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "nexus_club")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", "5m")
	v.SetDefault("DB_CONN_MAX_LIFETIME", "1h")
	v.SetDefault("DB_AUTO_MIGRATE", false)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "4h")
	v.SetDefault("SESSION_COOKIE_NAME", "nexus_admin_session")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("UPLOAD_DRIVER", "local")
	v.SetDefault("UPLOAD_DIR", "./public/uploads")
	v.SetDefault("UPLOAD_PUBLIC_PATH", "/uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10*1024*1024)
	v.SetDefault("UPLOAD_MAX_REQUEST_BYTES", 0)
	v.SetDefault("UPLOAD_TIMEOUT", "30s")
	v.SetDefault("S3_REGION", "eu-west-3")
	v.SetDefault("S3_BUCKET", "")
	v.SetDefault("S3_ACCESS_KEY_ID", "")
	v.SetDefault("S3_SECRET_ACCESS_KEY", "")

	v.SetDefault("TWILIO_ACCOUNT_SID", "")
	v.SetDefault("TWILIO_AUTH_TOKEN", "")
	v.SetDefault("TWILIO_FROM_NUMBER", "")
	v.SetDefault("SMTP_HOST", "")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("NOTIFY_WORKERS", 2)
	v.SetDefault("NOTIFY_CONCURRENCY", 5)
	v.SetDefault("NOTIFY_SEND_TIMEOUT", "10s")
	v.SetDefault("NOTIFY_RETRIES", 3)

	v.SetDefault("LOGIN_RATE_LIMIT", 10)
	v.SetDefault("ENABLE_METRICS", true)
}

// isMissingFile reports a missing .env; viper only returns ConfigFileNotFoundError
// when searching config paths, not for an explicit SetConfigFile.
func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
