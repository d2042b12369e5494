package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Catalog sources.
const (
	CatalogSourceFile     = "file"
	CatalogSourcePostgres = "postgres"
)

type Config struct {
	Env             string
	Port            int
	APIPrefix       string
	GzipMinSize     int
	ShutdownTimeout time.Duration

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Catalog  CatalogConfig
	Planner  PlannerConfig
	Admin    AdminConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CatalogConfig selects where the course catalog snapshot is loaded from.
type CatalogConfig struct {
	Source        string
	Path          string
	ReloadWorkers int
	ReloadRetries int
}

// PlannerConfig bounds the schedule search.
type PlannerConfig struct {
	SearchCap    int
	ResponseCap  int
	DirectCap    int
	MaxItems     int
	CacheEnabled bool
	CacheTTL     time.Duration
}

// AdminConfig gates the catalog administration endpoints.
type AdminConfig struct {
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
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
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
	cfg.GzipMinSize = v.GetInt("GZIP_MIN_SIZE")
	cfg.ShutdownTimeout = parseDuration(v.GetString("SHUTDOWN_TIMEOUT"), 10*time.Second)

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	origins := v.GetString("ALLOWED_ORIGINS")
	if origins == "" {
		origins = v.GetString("CORS_ORIGINS")
	}
	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(origins)}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Catalog = CatalogConfig{
		Source:        strings.ToLower(v.GetString("CATALOG_SOURCE")),
		Path:          v.GetString("CATALOG_PATH"),
		ReloadWorkers: v.GetInt("CATALOG_RELOAD_WORKERS"),
		ReloadRetries: v.GetInt("CATALOG_RELOAD_RETRIES"),
	}

	cfg.Planner = PlannerConfig{
		SearchCap:    v.GetInt("PLANNER_SEARCH_CAP"),
		ResponseCap:  v.GetInt("PLANNER_RESPONSE_CAP"),
		DirectCap:    v.GetInt("PLANNER_DIRECT_CAP"),
		MaxItems:     v.GetInt("PLANNER_MAX_ITEMS"),
		CacheEnabled: v.GetBool("ENABLE_PLANNER_CACHE"),
		CacheTTL:     parseDuration(v.GetString("PLANNER_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Admin = AdminConfig{
		Enabled: v.GetBool("ENABLE_ADMIN_API"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "")
	v.SetDefault("GZIP_MIN_SIZE", 1000)
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "course_catalog")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("CATALOG_SOURCE", CatalogSourceFile)
	v.SetDefault("CATALOG_PATH", "data/grouped_courses.json")
	v.SetDefault("CATALOG_RELOAD_WORKERS", 1)
	v.SetDefault("CATALOG_RELOAD_RETRIES", 3)

	v.SetDefault("PLANNER_SEARCH_CAP", 5000)
	v.SetDefault("PLANNER_RESPONSE_CAP", 100)
	v.SetDefault("PLANNER_DIRECT_CAP", 150)
	v.SetDefault("PLANNER_MAX_ITEMS", 64)
	v.SetDefault("ENABLE_PLANNER_CACHE", false)
	v.SetDefault("PLANNER_CACHE_TTL", "10m")

	v.SetDefault("ENABLE_ADMIN_API", false)
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
