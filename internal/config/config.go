package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppEnv string
	Port   string

	// Database (driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Token store
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Job queue
	NATSURL           string
	JobMaxDeliver     int
	JobAckWait        time.Duration
	WorkerConcurrency int

	// Security
	SessionExpiry  time.Duration
	AuthRateLimit  int
	AuthRateWindow time.Duration
	TrustProxy     bool // honor X-Forwarded-For for rate limiting
	MaxUploadBytes int64

	// Observability (optional)
	SentryDSN string

	// Storage: "local" writes under FolderPath, "s3" uses any S3-compatible bucket
	StorageDriver string
	FolderPath    string
	S3Region      string
	S3Bucket      string
	S3AccessKey   string
	S3SecretKey   string
	S3Endpoint    string // Optional: for S3-compatible services (MinIO, R2, etc.)
}

const (
	StorageDriverLocal = "local"
	StorageDriverS3    = "s3"
)

func Load() *Config {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg := &Config{
		AppEnv: envString("APP_ENV", "development"),
		Port:   envString("PORT", "5000"),

		DBDriver:     envString("DB_DRIVER", "sqlite"),
		DBConnection: envString("DB_CONNECTION", "./data/files_manager.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"),

		RedisAddr:     envString("REDIS_ADDR", "localhost:6379"),
		RedisPassword: envString("REDIS_PASSWORD", ""),
		RedisDB:       envInt("REDIS_DB", 0),

		NATSURL:           envString("NATS_URL", "nats://localhost:4222"),
		JobMaxDeliver:     envInt("JOB_MAX_DELIVER", 3),
		JobAckWait:        envDuration("JOB_ACK_WAIT", 30*time.Second),
		WorkerConcurrency: envInt("WORKER_CONCURRENCY", 1),

		SessionExpiry:  envDuration("SESSION_EXPIRY", 24*time.Hour),
		AuthRateLimit:  envInt("AUTH_RATE_LIMIT", 20),
		AuthRateWindow: envDuration("AUTH_RATE_WINDOW", 15*time.Minute),
		TrustProxy:     envBool("TRUST_PROXY", false),
		MaxUploadBytes: int64(envInt("MAX_UPLOAD_BYTES", 32<<20)),

		SentryDSN: envString("SENTRY_DSN", ""),

		StorageDriver: envString("STORAGE_DRIVER", StorageDriverLocal),
		FolderPath:    envString("FOLDER_PATH", "/tmp/files_manager"),
	}

	if cfg.StorageDriver == StorageDriverS3 {
		cfg.S3Region = envRequired("S3_REGION")
		cfg.S3Bucket = envRequired("S3_BUCKET")
		cfg.S3AccessKey = envString("S3_ACCESS_KEY", "")
		cfg.S3SecretKey = envString("S3_SECRET_KEY", "")
		cfg.S3Endpoint = envString("S3_ENDPOINT", "")
	}

	if cfg.WorkerConcurrency < 1 {
		slog.Warn("config WORKER_CONCURRENCY below 1, using 1", "value", cfg.WorkerConcurrency)
		cfg.WorkerConcurrency = 1
	}

	return cfg
}

func envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	slog.Error("config required env var missing", "key", key)
	os.Exit(1)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}
