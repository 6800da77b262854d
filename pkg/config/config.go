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

// Storage backend identifiers accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Storage   StorageConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Admin     AdminConfig
	Dashboard DashboardConfig
	Exports   ExportsConfig
}

// StorageConfig selects the key-value backend holding application state.
type StorageConfig struct {
	Backend  string
	FilePath string
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

// AdminConfig describes the account seeded on first run.
type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

// DashboardConfig governs dashboard exposure and cache tuning.
type DashboardConfig struct {
	Enabled  bool
	CacheTTL time.Duration
}

// ExportsConfig configures asynchronous export generation.
type ExportsConfig struct {
	Enabled           bool
	StorageDir        string
	SignedURLSecret   string
	SignedURLTTL      time.Duration
	CleanupInterval   time.Duration
	WorkerConcurrency int
	WorkerRetries     int
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Storage = StorageConfig{
		Backend:  strings.ToLower(v.GetString("STORAGE_BACKEND")),
		FilePath: v.GetString("STORAGE_FILE_PATH"),
	}

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

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Admin = AdminConfig{
		Name:     v.GetString("ADMIN_NAME"),
		Email:    v.GetString("ADMIN_EMAIL"),
		Password: v.GetString("ADMIN_PASSWORD"),
	}

	cfg.Dashboard = DashboardConfig{
		Enabled:  v.GetBool("ENABLE_DASHBOARD"),
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Exports = ExportsConfig{
		Enabled:           v.GetBool("ENABLE_EXPORTS"),
		StorageDir:        v.GetString("EXPORTS_STORAGE_DIR"),
		SignedURLSecret:   v.GetString("EXPORTS_SIGNED_URL_SECRET"),
		SignedURLTTL:      parseDuration(v.GetString("EXPORTS_SIGNED_URL_TTL"), 24*time.Hour),
		CleanupInterval:   parseDuration(v.GetString("EXPORTS_CLEANUP_INTERVAL"), time.Hour),
		WorkerConcurrency: v.GetInt("EXPORTS_WORKER_CONCURRENCY"),
		WorkerRetries:     v.GetInt("EXPORTS_WORKER_RETRIES"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("STORAGE_BACKEND", BackendFile)
	v.SetDefault("STORAGE_FILE_PATH", "./data/studata.json")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "studata")
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
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_NAME", "Administrator")
	v.SetDefault("ADMIN_EMAIL", "admin@studata.local")
	v.SetDefault("ADMIN_PASSWORD", "admin123")

	v.SetDefault("ENABLE_DASHBOARD", true)
	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")

	v.SetDefault("ENABLE_EXPORTS", true)
	v.SetDefault("EXPORTS_STORAGE_DIR", "./exports")
	v.SetDefault("EXPORTS_SIGNED_URL_SECRET", "dev_exports_secret")
	v.SetDefault("EXPORTS_SIGNED_URL_TTL", "24h")
	v.SetDefault("EXPORTS_CLEANUP_INTERVAL", "1h")
	v.SetDefault("EXPORTS_WORKER_CONCURRENCY", 1)
	v.SetDefault("EXPORTS_WORKER_RETRIES", 3)
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
