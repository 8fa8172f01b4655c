package config

import (
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL database connection settings.
type DatabaseConfig struct {
	Host               string
	Port               string
	User               string
	Password           string
	Name               string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeSec int
}

// MinIOConfig holds object storage settings for MinIO.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// RedisConfig holds connection settings for the Redis server that backs
// sessions and the thumbnail queue.
type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	DialTimeoutSec int
}

// Storage backends.
const (
	StorageLocal = "local"
	StorageMinIO = "minio"
)

// StorageConfig selects where blobs are placed.
// FolderPath is the base directory for the local backend and the key prefix for MinIO.
type StorageConfig struct {
	Backend    string
	FolderPath string
}

// SessionConfig controls token lifetime and how long a lookup may take.
type SessionConfig struct {
	TTLSec           int
	ResolveTimeoutMs int
}

// TTL returns the session lifetime as a duration.
func (c SessionConfig) TTL() time.Duration {
	return time.Duration(c.TTLSec) * time.Second
}

// ResolveTimeout returns the upper bound of a single session lookup.
func (c SessionConfig) ResolveTimeout() time.Duration {
	return time.Duration(c.ResolveTimeoutMs) * time.Millisecond
}

// WorkerConfig holds thumbnail pipeline settings.
type WorkerConfig struct {
	Queue           string
	Concurrency     int
	BlockTimeoutSec int
	RetryAttempts   int
	MetricsPort     string
}

// BlockTimeout returns how long a worker blocks waiting for the next job.
func (c WorkerConfig) BlockTimeout() time.Duration {
	return time.Duration(c.BlockTimeoutSec) * time.Second
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level    string
	Encoding string
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	AppHost  string
	Port     string
	Database DatabaseConfig
	MinIO    MinIOConfig
	Redis    RedisConfig
	Storage  StorageConfig
	Session  SessionConfig
	Worker   WorkerConfig
	Log      LogConfig
}

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		AppHost: getEnv("APP_HOST", "localhost:5000"),
		Port:    getEnv("PORT", "5000"),
		Database: DatabaseConfig{
			Host:               getEnv("DB_HOST", ""),
			Port:               getEnv("DB_PORT", "5432"),
			User:               getEnv("DB_USER", ""),
			Password:           getEnv("DB_PASSWORD", ""),
			Name:               getEnv("DB_NAME", ""),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetimeSec: getEnvInt("DB_CONN_MAX_LIFETIME_SEC", 300),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Redis: RedisConfig{
			Addr:           getEnv("REDIS_ADDR", "localhost:6379"),
			Password:       getEnv("REDIS_PASSWORD", ""),
			DB:             getEnvInt("REDIS_DB", 0),
			DialTimeoutSec: getEnvInt("REDIS_DIAL_TIMEOUT_SEC", 5),
		},
		Storage: StorageConfig{
			Backend:    getEnv("STORAGE_BACKEND", StorageLocal),
			FolderPath: getEnv("FOLDER_PATH", "/tmp/files_manager"),
		},
		Session: SessionConfig{
			TTLSec:           getEnvPositiveInt("SESSION_TTL_SEC", 24*60*60),
			ResolveTimeoutMs: getEnvPositiveInt("SESSION_RESOLVE_TIMEOUT_MS", 1500),
		},
		Worker: WorkerConfig{
			Queue:           getEnv("THUMBNAIL_QUEUE", "thumbnail_jobs"),
			Concurrency:     getEnvPositiveInt("WORKER_CONCURRENCY", 2),
			BlockTimeoutSec: getEnvPositiveInt("WORKER_BLOCK_TIMEOUT_SEC", 5),
			RetryAttempts:   getEnvPositiveInt("THUMBNAIL_RETRY_ATTEMPTS", 3),
			MetricsPort:     getEnv("WORKER_METRICS_PORT", "9091"),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Encoding: getEnv("LOG_ENCODING", "json"),
		},
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

// getEnvPositiveInt is getEnvInt that also falls back on zero and negative values.
// A zero Redis expiry or BLMOVE timeout means "forever".
func getEnvPositiveInt(key string, def int) int {
	if i := getEnvInt(key, def); i > 0 {
		return i
	}
	return def
}
