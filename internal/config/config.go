package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	// Server Configuration
	GinMode       string        `mapstructure:"GIN_MODE"`
	ServerHost    string        `mapstructure:"SERVER_HOST"`
	ServerPort    string        `mapstructure:"SERVER_PORT"`
	ServerTimeout time.Duration `mapstructure:"-"`

	// Database Configuration
	DBDriver          string        `mapstructure:"DB_DRIVER"`
	DBHost            string        `mapstructure:"DB_HOST"`
	DBPort            string        `mapstructure:"DB_PORT"`
	DBUser            string        `mapstructure:"DB_USER"`
	DBPassword        string        `mapstructure:"DB_PASSWORD"`
	DBName            string        `mapstructure:"DB_NAME"`
	DBSSLMode         string        `mapstructure:"DB_SSL_MODE"`
	DBTimezone        string        `mapstructure:"DB_TIMEZONE"`
	DBSQLitePath      string        `mapstructure:"DB_SQLITE_PATH"`
	DBMaxIdleConns    int           `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBMaxOpenConns    int           `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBConnMaxLifetime time.Duration `mapstructure:"-"`

	// Logging Configuration
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	// Auth
	JWTSecretKey             string        `mapstructure:"JWT_SECRET_KEY"`
	JWTAccessTokenExpiry     time.Duration `mapstructure:"-"`
	JWTRefreshTokenExpiry    time.Duration `mapstructure:"-"`
	OTPExpiry                time.Duration `mapstructure:"-"`
	OTPPurgeJobSchedule      string        `mapstructure:"OTP_PURGE_JOB_SCHEDULE"`
	DefaultPhoneRegion       string        `mapstructure:"DEFAULT_PHONE_REGION"`
	BlocklistCleanupInterval time.Duration `mapstructure:"-"`

	// Media
	MediaStoragePath   string `mapstructure:"MEDIA_STORAGE_PATH"`
	MediaPublicBaseURL string `mapstructure:"MEDIA_PUBLIC_BASE_URL"`
	MaxUploadSizeMB    int64  `mapstructure:"MAX_UPLOAD_SIZE_MB"`

	// Elasticsearch Configuration
	ElasticsearchURL string `mapstructure:"ELASTICSEARCH_URL"`

	// Redis Configuration
	RedisURL string `mapstructure:"REDIS_URL"`

	// Weather
	WeatherAPIBaseURL   string        `mapstructure:"WEATHER_API_BASE_URL"`
	WeatherForecastDays int           `mapstructure:"WEATHER_FORECAST_DAYS"`
	WeatherTimezone     string        `mapstructure:"WEATHER_TIMEZONE"`
	WeatherCacheTTL     time.Duration `mapstructure:"-"`

	// News
	NewsAPIKey             string        `mapstructure:"NEWS_API_KEY"`
	NewsAPIBaseURL         string        `mapstructure:"NEWS_API_BASE_URL"`
	NewsCacheTTL           time.Duration `mapstructure:"-"`
	NewsRefreshJobSchedule string        `mapstructure:"NEWS_REFRESH_JOB_SCHEDULE"`

	// Disease detection
	ClassifierURL        string `mapstructure:"CLASSIFIER_URL"`
	ClassifierLabelsPath string `mapstructure:"CLASSIFIER_LABELS_PATH"`
	ClassifierInputSize  int    `mapstructure:"CLASSIFIER_INPUT_SIZE"`
	DiseaseCatalogPath   string `mapstructure:"DISEASE_CATALOG_PATH"`

	// Reports
	ReportMaxLookbackDays int `mapstructure:"REPORT_MAX_LOOKBACK_DAYS"`
}

// Load attempts to load configuration from a .env file (if present) and environment variables.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("error loading .env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshalling configuration: %w", err)
	}

	// Durations are configured as plain integers and are not decoded by mapstructure.
	cfg.ServerTimeout = time.Duration(v.GetInt("SERVER_TIMEOUT_SECONDS")) * time.Second
	cfg.DBConnMaxLifetime = time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME_MINUTES")) * time.Minute
	cfg.JWTAccessTokenExpiry = time.Duration(v.GetInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES")) * time.Minute
	cfg.JWTRefreshTokenExpiry = time.Duration(v.GetInt("JWT_REFRESH_TOKEN_EXPIRY_DAYS")) * 24 * time.Hour
	cfg.OTPExpiry = time.Duration(v.GetInt("OTP_EXPIRY_MINUTES")) * time.Minute
	cfg.BlocklistCleanupInterval = time.Duration(v.GetInt("BLOCKLIST_CLEANUP_INTERVAL_MINUTES")) * time.Minute
	cfg.WeatherCacheTTL = time.Duration(v.GetInt("WEATHER_CACHE_TTL_MINUTES")) * time.Minute
	cfg.NewsCacheTTL = time.Duration(v.GetInt("NEWS_CACHE_TTL_MINUTES")) * time.Minute

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8000")
	v.SetDefault("SERVER_TIMEOUT_SECONDS", 30)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "password")
	v.SetDefault("DB_NAME", "smartkheti")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kathmandu")
	v.SetDefault("DB_SQLITE_PATH", "smartkheti.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 60)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")

	v.SetDefault("JWT_SECRET_KEY", "")
	v.SetDefault("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 20)
	v.SetDefault("JWT_REFRESH_TOKEN_EXPIRY_DAYS", 1)
	v.SetDefault("OTP_EXPIRY_MINUTES", 2)
	v.SetDefault("OTP_PURGE_JOB_SCHEDULE", "@every 10m")
	v.SetDefault("DEFAULT_PHONE_REGION", "NP")
	v.SetDefault("BLOCKLIST_CLEANUP_INTERVAL_MINUTES", 30)

	v.SetDefault("MEDIA_STORAGE_PATH", "./media")
	v.SetDefault("MEDIA_PUBLIC_BASE_URL", "http://localhost:8000/media")
	v.SetDefault("MAX_UPLOAD_SIZE_MB", 10)

	v.SetDefault("ELASTICSEARCH_URL", "")
	v.SetDefault("REDIS_URL", "")

	v.SetDefault("WEATHER_API_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	v.SetDefault("WEATHER_FORECAST_DAYS", 16)
	v.SetDefault("WEATHER_TIMEZONE", "Asia/Kathmandu")
	v.SetDefault("WEATHER_CACHE_TTL_MINUTES", 30)

	v.SetDefault("NEWS_API_KEY", "")
	v.SetDefault("NEWS_API_BASE_URL", "https://newsapi.org/v2")
	v.SetDefault("NEWS_CACHE_TTL_MINUTES", 30)
	v.SetDefault("NEWS_REFRESH_JOB_SCHEDULE", "@every 30m")

	v.SetDefault("CLASSIFIER_URL", "http://localhost:8501/v1/models/plant_disease:predict")
	v.SetDefault("CLASSIFIER_LABELS_PATH", "./model/labels.txt")
	v.SetDefault("CLASSIFIER_INPUT_SIZE", 224)
	v.SetDefault("DISEASE_CATALOG_PATH", "./model/disease_catalog.yaml")

	v.SetDefault("REPORT_MAX_LOOKBACK_DAYS", 60)
}

func (c *Config) validate() error {
	switch strings.ToLower(c.DBDriver) {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("FATAL: unsupported DB_DRIVER %q (expected postgres or sqlite)", c.DBDriver)
	}
	if strings.TrimSpace(c.JWTSecretKey) == "" {
		if c.GinMode == "release" {
			return fmt.Errorf("FATAL: JWT_SECRET_KEY is not set. This is required in release mode")
		}
		c.JWTSecretKey = "insecure-development-secret"
	}
	if c.ClassifierInputSize <= 0 {
		return fmt.Errorf("CLASSIFIER_INPUT_SIZE must be positive, got %d", c.ClassifierInputSize)
	}
	return nil
}

// PostgresDSN builds the GORM DSN from the individual DB_* settings.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode, c.DBTimezone)
}

// MaxUploadBytes is the multipart memory limit derived from MAX_UPLOAD_SIZE_MB.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadSizeMB << 20
}
