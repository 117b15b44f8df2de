package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	CounterModeAtomic          = "atomic"
	CounterModeReadModifyWrite = "read-modify-write"
)

type DocStore struct {
	URI      string
	Database string
	InMemory bool
}

type ReportDB struct {
	Enabled    bool
	DbHOST     string
	DbPORT     string
	DbUSER     string
	DbPASSWORD string
	DbNAME     string
	DbSSLMODE  string
	Migrations string
}

type MinIO struct {
	Enabled    bool
	Endpoint   string
	AccessKey  string
	SecretKey  string
	BucketName string
	UseSSL     bool
	Region     string
	PublicURL  string
}

type Log struct {
	Level  slog.Level
	Format string
}

type Config struct {
	ServerPort           int
	DocStore             DocStore
	ReportDB             ReportDB
	MinIO                MinIO
	Log                  Log
	JWTSecretKey         string
	AccessTokenDuration  time.Duration
	RefreshTokenDuration time.Duration
	MaxUploadSize        int64
	CounterMode          string
	ReadRetryAttempts    int
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return fallback
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseDuration(value string, fallback time.Duration) time.Duration {
	duration, err := time.ParseDuration(value)
	if err != nil || duration <= 0 {
		return fallback
	}
	return duration
}

func parseLogLevel(value string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(value)); err != nil {
		return slog.LevelInfo
	}
	return level
}

func parseCounterMode(value string) string {
	switch strings.ToLower(value) {
	case CounterModeReadModifyWrite:
		return CounterModeReadModifyWrite
	default:
		return CounterModeAtomic
	}
}

func LoadDocStore() DocStore {
	return DocStore{
		URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		Database: getEnv("MONGO_DATABASE", "whatsurv"),
		InMemory: getEnvBool("DOCSTORE_MEMORY", false),
	}
}

func LoadReportDB() ReportDB {
	return ReportDB{
		Enabled:    getEnvBool("REPORT_DB_ENABLED", false),
		DbHOST:     getEnv("REPORT_DB_HOST", "localhost"),
		DbPORT:     getEnv("REPORT_DB_PORT", "5432"),
		DbUSER:     getEnv("REPORT_DB_USER", "postgres"),
		DbPASSWORD: getEnv("REPORT_DB_PASSWORD", "password"),
		DbNAME:     getEnv("REPORT_DB_NAME", "whatsurv_reports"),
		DbSSLMODE:  getEnv("REPORT_DB_SSLMODE", "disable"),
		Migrations: getEnv("REPORT_DB_MIGRATIONS", "migrations/001_create_report_tables.sql"),
	}
}

func LoadMinIO() MinIO {
	return MinIO{
		Enabled:    getEnvBool("MINIO_ENABLED", true),
		Endpoint:   getEnv("MINIO_ENDPOINT", "localhost:9000"),
		AccessKey:  getEnv("MINIO_ACCESS_KEY", "minioadmin"),
		SecretKey:  getEnv("MINIO_SECRET_KEY", "minioadmin"),
		BucketName: getEnv("MINIO_BUCKET_NAME", "images"),
		UseSSL:     getEnvBool("MINIO_USE_SSL", false),
		Region:     getEnv("MINIO_REGION", "us-east-1"),
		PublicURL:  getEnv("MINIO_PUBLIC_URL", ""),
	}
}

func LoadLog() Log {
	return Log{
		Level:  parseLogLevel(getEnv("LOG_LEVEL", "info")),
		Format: getEnv("LOG_FORMAT", "json"),
	}
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		slog.Warn(".env file not found, using environment variables")
	}

	return &Config{
		ServerPort:           getEnvAsInt("SERVER_PORT", 8080),
		DocStore:             LoadDocStore(),
		ReportDB:             LoadReportDB(),
		MinIO:                LoadMinIO(),
		Log:                  LoadLog(),
		JWTSecretKey:         getEnv("JWT_SECRET_KEY", ""),
		AccessTokenDuration:  parseDuration(getEnv("ACCESS_TOKEN_DURATION", "2h"), 2*time.Hour),
		RefreshTokenDuration: parseDuration(getEnv("REFRESH_TOKEN_DURATION", "168h"), 168*time.Hour),
		MaxUploadSize:        parseMaxUploadSize(getEnv("MAX_UPLOAD_SIZE", "10485760")),
		CounterMode:          parseCounterMode(getEnv("COUNTER_MODE", CounterModeAtomic)),
		ReadRetryAttempts:    getEnvAsInt("READ_RETRY_ATTEMPTS", 3),
	}
}

func parseMaxUploadSize(value string) int64 {
	size, err := strconv.ParseInt(value, 10, 64)
	if err != nil || size <= 0 {
		return 10 * 1024 * 1024
	}
	return size
}
