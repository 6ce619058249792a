package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the movie discovery client.
type Config struct {
	DB     DBConfig
	Redis  RedisConfig
	MinIO  MinIOConfig
	TMDB   TMDBConfig
	KV     KVConfig
	Log    LogConfig
	Server ServerConfig
}

// DBConfig holds PostgreSQL configuration.
type DBConfig struct {
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
	SSLRootCert string
}

// DSN returns the PostgreSQL connection string.
func (d DBConfig) DSN() string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
	if d.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", d.SSLRootCert)
	}
	return dsn
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MinIOConfig holds object storage configuration for the minio key/value backend.
type MinIOConfig struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	BucketName      string
	Region          string
	UseSSL          bool
}

// TMDBConfig holds TMDB API configuration.
type TMDBConfig struct {
	// APIToken is the v4 read access token. Empty means the client goes
	// through ProxyURL without a credential.
	APIToken string
	BaseURL  string
	ProxyURL string
	Timeout  time.Duration
}

// KVConfig selects the persistent key/value slot backing the favorites list.
type KVConfig struct {
	Backend     string
	Dir         string
	FavoriteKey string
}

// LogConfig controls the default slog logger.
type LogConfig struct {
	Level      string
	File       string
	MaxSizeMB  int
	MaxBackups int
}

// ServerConfig holds the local HTTP surface configuration.
type ServerConfig struct {
	Port                   string
	SwaggerPath            string
	RateLimitMax           int
	RateLimitWindowSeconds int
}

// Supported KV backends.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendMinIO    = "minio"
)

// CatalogEndpoint is where the catalog client sends its requests. It is
// resolved once at startup; the client does not know which mode is active.
type CatalogEndpoint struct {
	BaseURL     string
	BearerToken string
}

// Proxied reports whether requests go through the same-origin proxy.
func (e CatalogEndpoint) Proxied() bool {
	return e.BearerToken == ""
}

// CatalogEndpoint resolves the direct (authenticated) or proxied endpoint.
func (c *Config) CatalogEndpoint() CatalogEndpoint {
	if c.TMDB.APIToken != "" {
		return CatalogEndpoint{
			BaseURL:     strings.TrimRight(c.TMDB.BaseURL, "/"),
			BearerToken: c.TMDB.APIToken,
		}
	}
	return CatalogEndpoint{BaseURL: strings.TrimRight(c.TMDB.ProxyURL, "/")}
}

// ProxyPath is where a process holding the catalog token mounts the proxy.
const ProxyPath = "/api/tmdb"

// SelfProxyURL is the default CATALOG_PROXY_URL: this process's own proxy.
func (c *Config) SelfProxyURL() string {
	return "http://localhost:" + c.Server.Port + ProxyPath
}

// UnservedSelfProxy reports whether the catalog client targets this
// process's own proxy while the proxy is not mounted. Without a token there
// is nothing to forward with, so every catalog call would fail.
func (c *Config) UnservedSelfProxy() bool {
	return c.TMDB.APIToken == "" &&
		strings.TrimRight(c.TMDB.ProxyURL, "/") == c.SelfProxyURL()
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	minioSSL, _ := strconv.ParseBool(getEnv("MINIO_USE_SSL", "false"))
	logMaxSize, _ := strconv.Atoi(getEnv("LOG_MAX_SIZE_MB", "10"))
	logMaxBackups, _ := strconv.Atoi(getEnv("LOG_MAX_BACKUPS", "3"))
	rateLimitMax, _ := strconv.Atoi(getEnv("RATE_LIMIT_MAX", "0"))
	rateLimitWindow, _ := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))

	timeout, err := time.ParseDuration(getEnv("TMDB_TIMEOUT", "15s"))
	if err != nil {
		return nil, fmt.Errorf("invalid TMDB_TIMEOUT: %w", err)
	}

	port := getEnv("SERVER_PORT", "8080")

	cfg := &Config{
		DB: DBConfig{
			Host:        getEnv("DB_HOST", "localhost"),
			Port:        dbPort,
			User:        getEnv("DB_USER", "postgres"),
			Password:    getEnv("DB_PASSWORD", "postgres"),
			DBName:      getEnv("DB_NAME", "movie_discovery"),
			SSLMode:     getEnv("DB_SSLMODE", "disable"),
			SSLRootCert: getEnv("DB_SSLROOTCERT", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "127.0.0.1:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		MinIO: MinIOConfig{
			Endpoint:        getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKeyID:     getEnv("MINIO_ACCESS_KEY", ""),
			SecretAccessKey: getEnv("MINIO_SECRET_KEY", ""),
			BucketName:      getEnv("MINIO_BUCKET", "movie-discovery"),
			Region:          getEnv("MINIO_REGION", "us-east-1"),
			UseSSL:          minioSSL,
		},
		TMDB: TMDBConfig{
			APIToken: getEnv("TMDB_API_TOKEN", ""),
			BaseURL:  getEnv("TMDB_BASE_URL", "https://api.themoviedb.org/3"),
			ProxyURL: getEnv("CATALOG_PROXY_URL", "http://localhost:"+port+ProxyPath),
			Timeout:  timeout,
		},
		KV: KVConfig{
			Backend:     strings.ToLower(getEnv("KV_BACKEND", BackendFile)),
			Dir:         getEnv("FAVORITES_DIR", "data"),
			FavoriteKey: getEnv("FAVORITES_KEY", "favorites"),
		},
		Log: LogConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			File:       getEnv("LOG_FILE", ""),
			MaxSizeMB:  logMaxSize,
			MaxBackups: logMaxBackups,
		},
		Server: ServerConfig{
			Port:                   port,
			SwaggerPath:            getEnv("SWAGGER_PATH", "docs/swagger.yaml"),
			RateLimitMax:           rateLimitMax,
			RateLimitWindowSeconds: rateLimitWindow,
		},
	}

	switch cfg.KV.Backend {
	case BackendMemory, BackendFile, BackendRedis, BackendPostgres, BackendMinIO:
	default:
		return nil, fmt.Errorf("unsupported KV_BACKEND %q", cfg.KV.Backend)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
