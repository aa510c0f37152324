package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	PostgresDriver = "postgres"
	MongoDriver    = "mongo"
	MemoryDriver   = "memory"

	LocalReportStore = "local"
	S3ReportStore    = "s3"
)

// Config is read once at startup from the environment (and an optional .env).
type Config struct {
	Port        string
	StoreDriver string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBTimezone string

	MongoURI string
	MongoDB  string

	RedisAddress      string
	CacheTTLSeconds   int
	TokenSymmetricKey string
	BleveIndexPath    string

	LogLevel string
	LogDir   string

	CorsAllowOrigins string

	ImportMaxFileMB     int
	ImportRatePerMinute int
	ReportStore         string
	ReportDir           string
	ReportTTLHours      int
	ReportCleanupCron   string
	BaseURL             string

	S3Bucket           string
	S3Prefix           string
	AWSRegion          string
	AWSEndpoint        string
	AWSAccessKeyID     string
	AWSSecretAccessKey string
}

// Load reads .env when present and then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read .env: %w", err)
	}

	cfg := &Config{
		Port:        GetEnvDefault("PORT", "8080"),
		StoreDriver: strings.ToLower(GetEnvDefault("STORE_DRIVER", PostgresDriver)),

		DBHost:     GetEnvDefault("DB_HOST", "localhost"),
		DBPort:     GetEnvDefault("DB_PORT", "5432"),
		DBUser:     GetEnv("POSTGRES_USER"),
		DBPassword: GetEnv("POSTGRES_PASSWORD"),
		DBName:     GetEnvDefault("POSTGRES_DB", "book_inventory"),
		DBTimezone: GetEnvDefault("DB_TIMEZONE", "America/Sao_Paulo"),

		MongoURI: GetEnvDefault("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:  GetEnvDefault("MONGO_DB", "book_inventory"),

		RedisAddress:      GetEnv("REDIS_ADDRESS"),
		CacheTTLSeconds:   GetEnvInt("CACHE_TTL_SECONDS", 300),
		TokenSymmetricKey: GetEnv("TOKEN_SYMMETRIC_KEY"),
		BleveIndexPath:    GetEnvDefault("BLEVE_INDEX_PATH", "./data/bleve"),

		LogLevel: GetEnvDefault("LOG_LEVEL", "info"),
		LogDir:   GetEnvDefault("LOG_DIR", "logs"),

		CorsAllowOrigins: GetEnvDefault("CORS_ALLOW_ORIGINS", "http://localhost:5173"),

		ImportMaxFileMB:     GetEnvInt("IMPORT_MAX_FILE_MB", 10),
		ImportRatePerMinute: GetEnvInt("IMPORT_RATE_PER_MINUTE", 6),
		ReportStore:         strings.ToLower(GetEnvDefault("REPORT_STORE", LocalReportStore)),
		ReportDir:           GetEnvDefault("REPORT_DIR", "./public/files"),
		ReportTTLHours:      GetEnvInt("REPORT_TTL_HOURS", 72),
		ReportCleanupCron:   GetEnvDefault("REPORT_CLEANUP_CRON", "0 1 * * *"),
		BaseURL:             strings.TrimSuffix(GetEnvDefault("BASE_URL", "http://localhost:8080"), "/"),

		S3Bucket:           GetEnv("S3_BUCKET"),
		S3Prefix:           GetEnvDefault("S3_PREFIX", "import-reports"),
		AWSRegion:          GetEnvDefault("AWS_REGION", "us-east-1"),
		AWSEndpoint:        GetEnv("AWS_ENDPOINT"),
		AWSAccessKeyID:     GetEnv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: GetEnv("AWS_SECRET_ACCESS_KEY"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case PostgresDriver, MongoDriver, MemoryDriver:
	default:
		return fmt.Errorf("STORE_DRIVER must be %q, %q or %q, got %q", PostgresDriver, MongoDriver, MemoryDriver, c.StoreDriver)
	}
	switch c.ReportStore {
	case LocalReportStore:
	case S3ReportStore:
		if c.S3Bucket == "" {
			return fmt.Errorf("S3_BUCKET is required when REPORT_STORE is %q", S3ReportStore)
		}
	default:
		return fmt.Errorf("REPORT_STORE must be %q or %q, got %q", LocalReportStore, S3ReportStore, c.ReportStore)
	}
	if c.TokenSymmetricKey == "" {
		return fmt.Errorf("TOKEN_SYMMETRIC_KEY is required")
	}
	if c.ImportMaxFileMB <= 0 {
		return fmt.Errorf("IMPORT_MAX_FILE_MB must be positive")
	}
	if c.ReportTTLHours <= 0 {
		return fmt.Errorf("REPORT_TTL_HOURS must be positive")
	}
	if c.ImportRatePerMinute <= 0 {
		return fmt.Errorf("IMPORT_RATE_PER_MINUTE must be positive")
	}
	return nil
}

func GetEnv(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}

func GetEnvDefault(key, fallback string) string {
	if v := GetEnv(key); v != "" {
		return v
	}
	return fallback
}

// GetEnvInt falls back when the variable is unset or not a number.
func GetEnvInt(key string, fallback int) int {
	v := GetEnv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
