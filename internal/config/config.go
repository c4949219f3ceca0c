package config

import (
	"fmt"
	"log"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	PostgreSQL PostgreSQLConfig
	Server     ServerConfig
	Models     ModelsConfig
	Geocoder   GeocoderConfig
	History    HistoryConfig
	Logging    LoggingConfig
	Fluent     FluentConfig
}

// PostgreSQLConfig holds PostgreSQL database configuration.
// The prediction history is only enabled when a DSN or host is configured.
type PostgreSQLConfig struct {
	DSN                string // 完整的数据库连接字符串（优先使用）
	Host               string
	Port               int
	User               string
	Password           string
	Database           string
	SSLMode            string
	MaxConnections     int
	MaxIdleConnections int
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int
	Host            string
	GinMode         string
	AllowedOrigins  string
	AllowedMethods  string
	AllowedHeaders  string
	ShutdownTimeout time.Duration
	MaxBatchSize    int
	WebDir          string // form assets for builds without the embed tag
}

// ModelsConfig locates the serialized regressors and their column lists.
// Per-kind overrides are keyed by kind slug, e.g. MODEL_PATH_XGBOOST.
type ModelsConfig struct {
	Dir             string
	ModelPaths      map[string]string
	ColumnPaths     map[string]string
	DefaultKindSlug string
}

// GeocoderConfig holds the address lookup configuration
type GeocoderConfig struct {
	BaseURL           string
	UserAgent         string
	Timeout           time.Duration
	RequestsPerMinute int // 0 disables client-side rate limiting
}

// HistoryConfig holds prediction history configuration
type HistoryConfig struct {
	DefaultLimit     int
	MaxLimit         int
	GeohashPrecision uint
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
	Color  bool
}

// FluentConfig holds Fluent Bit forwarding configuration
type FluentConfig struct {
	Enabled   bool
	Host      string
	Port      int
	TagPrefix string
	Level     string
}

// modelSlugs mirrors the registry kinds; kept here so config has no import cycle.
var modelSlugs = []string{"elasticnet", "random_forest", "gradient_boosting", "xgboost"}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{
		PostgreSQL: PostgreSQLConfig{
			DSN:                getEnv("DATABASE_URL", getEnv("POSTGRESQL_URI", getEnv("PG_DSN", ""))),
			Host:               getEnv("PG_HOST", ""),
			Port:               getEnvAsInt("PG_PORT", 5432),
			User:               getEnv("PG_USER", "postgres"),
			Password:           getEnv("PG_PASSWORD", ""),
			Database:           getEnv("PG_DATABASE", "urbannest"),
			SSLMode:            getEnv("PG_SSLMODE", "disable"),
			MaxConnections:     getEnvAsInt("PG_MAX_CONNECTIONS", 10),
			MaxIdleConnections: getEnvAsInt("PG_MAX_IDLE_CONNECTIONS", 2),
		},
		Server: ServerConfig{
			Port:            getEnvAsInt("SERVER_PORT", 8080),
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			GinMode:         getEnv("GIN_MODE", "release"),
			AllowedOrigins:  getEnv("CORS_ALLOWED_ORIGINS", "*"),
			AllowedMethods:  getEnv("CORS_ALLOWED_METHODS", "GET,POST,OPTIONS"),
			AllowedHeaders:  getEnv("CORS_ALLOWED_HEADERS", "Content-Type,Authorization"),
			ShutdownTimeout: time.Duration(getEnvAsInt("SERVER_SHUTDOWN_TIMEOUT", 10)) * time.Second,
			MaxBatchSize:    getEnvAsInt("MAX_BATCH_SIZE", 50),
			WebDir:          getEnv("WEB_DIR", "./cmd/server/web/dist"),
		},
		Models: ModelsConfig{
			Dir:             getEnv("MODELS_DIR", "./models"),
			ModelPaths:      map[string]string{},
			ColumnPaths:     map[string]string{},
			DefaultKindSlug: getEnv("MODEL_DEFAULT", "elasticnet"),
		},
		Geocoder: GeocoderConfig{
			BaseURL:           getEnv("GEOCODER_BASE_URL", "https://nominatim.openstreetmap.org"),
			UserAgent:         getEnv("GEOCODER_USER_AGENT", "geoapi_kolkata_project"),
			Timeout:           time.Duration(getEnvAsInt("GEOCODER_TIMEOUT", 10)) * time.Second,
			RequestsPerMinute: getEnvAsInt("GEOCODER_REQUESTS_PER_MINUTE", 60),
		},
		History: HistoryConfig{
			DefaultLimit:     getEnvAsInt("HISTORY_DEFAULT_LIMIT", 20),
			MaxLimit:         getEnvAsInt("HISTORY_MAX_LIMIT", 100),
			GeohashPrecision: uint(getEnvAsInt("HISTORY_GEOHASH_PRECISION", 7)),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
			Color:  getEnvAsBool("LOG_COLOR", true),
		},
		Fluent: FluentConfig{
			Enabled:   getEnvAsBool("FLUENT_ENABLED", false),
			Host:      getEnv("FLUENT_HOST", "127.0.0.1"),
			Port:      getEnvAsInt("FLUENT_PORT", 24224),
			TagPrefix: getEnv("FLUENT_TAG_PREFIX", "urbannest"),
			Level:     getEnv("FLUENT_LOG_LEVEL", "info"),
		},
	}

	for _, slug := range modelSlugs {
		envSuffix := strings.ToUpper(slug)
		if p := getEnv("MODEL_PATH_"+envSuffix, ""); p != "" {
			cfg.Models.ModelPaths[slug] = p
		}
		if p := getEnv("MODEL_COLUMNS_PATH_"+envSuffix, ""); p != "" {
			cfg.Models.ColumnPaths[slug] = p
		}
	}

	if !slices.Contains(modelSlugs, cfg.Models.DefaultKindSlug) {
		return nil, errors.Newf("MODEL_DEFAULT must be one of %v, got %q", modelSlugs, cfg.Models.DefaultKindSlug)
	}
	if cfg.History.DefaultLimit <= 0 || cfg.History.MaxLimit < cfg.History.DefaultLimit {
		return nil, errors.Newf("invalid history limits: default=%d max=%d", cfg.History.DefaultLimit, cfg.History.MaxLimit)
	}
	if cfg.History.GeohashPrecision < 1 || cfg.History.GeohashPrecision > 12 {
		return nil, errors.Newf("HISTORY_GEOHASH_PRECISION must be within 1..12, got %d", cfg.History.GeohashPrecision)
	}

	return cfg, nil
}

// HistoryEnabled reports whether a database is configured for the prediction history
func (c *Config) HistoryEnabled() bool {
	return c.PostgreSQL.DSN != "" || c.PostgreSQL.Host != ""
}

// GetPostgreSQLDSN returns PostgreSQL connection string
func (c *Config) GetPostgreSQLDSN() string {
	if c.PostgreSQL.DSN != "" {
		return c.PostgreSQL.DSN
	}

	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreSQL.Host,
		c.PostgreSQL.Port,
		c.PostgreSQL.User,
		c.PostgreSQL.Password,
		c.PostgreSQL.Database,
		c.PostgreSQL.SSLMode,
	)
}

// Helper functions

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s, using default %d", key, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s, using default %t", key, defaultValue)
		return defaultValue
	}
	return value
}
