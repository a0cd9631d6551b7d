package common

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database  DatabaseConfig
	Server    ServerConfig
	Extractor ExtractorConfig
	Blob      BlobConfig
	Cache     CacheConfig
	Queue     QueueConfig
	Inbox     InboxConfig
	LogLevel  string
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	Driver           string // pgx | sqlite
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// ExtractorConfig selects and configures the PDF token extractor
type ExtractorConfig struct {
	Engine           string // poppler | mupdf
	PdftotextBin     string
	ArtifactCacheDir string
	Timeout          time.Duration
	MaxPages         int // 0 reads every page
}

// BlobConfig holds source document storage configuration
type BlobConfig struct {
	Driver string // local | s3
	Dir    string
	Bucket string
	Region string
}

// CacheConfig holds the catalog cache configuration. An empty Addr disables caching.
type CacheConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
	Prefix   string
}

// QueueConfig holds async extraction queue configuration
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// InboxConfig configures the watched drop directory. An empty Dir disables it.
type InboxConfig struct {
	Dir      string
	Debounce time.Duration
	UserID   string
}

// LoadDotEnv loads variables from the given .env files (default ".env") when
// they exist. Variables already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Driver:           getEnv("DB_DRIVER", "pgx"),
			DSN:              getEnv("DB_URL", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ReadTimeout:     getEnvAsDuration("HTTP_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("HTTP_WRITE_TIMEOUT", 2*time.Minute),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 15*time.Second),
		},
		Extractor: ExtractorConfig{
			Engine:           strings.ToLower(getEnv("PDF_EXTRACTOR", "poppler")),
			PdftotextBin:     getEnv("PDFTOTEXT_BIN", "pdftotext"),
			ArtifactCacheDir: getEnv("ARTIFACT_CACHE_DIR", "./tmp"),
			Timeout:          getEnvAsDuration("PDF_EXTRACT_TIMEOUT", 60*time.Second),
			MaxPages:         getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		Blob: BlobConfig{
			Driver: strings.ToLower(getEnv("BLOB_DRIVER", "local")),
			Dir:    getEnv("BLOB_DIR", "./data/blobs"),
			Bucket: getEnv("S3_BUCKET", ""),
			Region: getEnv("AWS_REGION", "us-east-1"),
		},
		Cache: CacheConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsDuration("CATALOG_CACHE_TTL", 10*time.Minute),
			Prefix:   getEnv("CATALOG_CACHE_PREFIX", "catalog"),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 2),
			Size:           getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("QUEUE_TIMEOUT", 5*time.Minute),
		},
		Inbox: InboxConfig{
			Dir:      getEnv("INBOX_DIR", ""),
			Debounce: getEnvAsDuration("INBOX_DEBOUNCE", 2*time.Second),
			UserID:   getEnv("INBOX_USER_ID", "inbox"),
		},
		LogLevel: strings.ToLower(getEnv("LOG_LEVEL", "info")),
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "pgx", "sqlite":
	default:
		return NewAppError(CodeConfig, "DB_DRIVER must be pgx or sqlite", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError(CodeConfig, "DB_URL is required", ErrInvalidInput)
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrInvalidInput)
	}
	switch c.Extractor.Engine {
	case "poppler", "mupdf":
	default:
		return NewAppError(CodeConfig, "PDF_EXTRACTOR must be poppler or mupdf", ErrInvalidInput)
	}
	switch c.Blob.Driver {
	case "local":
		if c.Blob.Dir == "" {
			return NewAppError(CodeConfig, "BLOB_DIR is required for the local blob driver", ErrInvalidInput)
		}
	case "s3":
		if c.Blob.Bucket == "" {
			return NewAppError(CodeConfig, "S3_BUCKET is required for the s3 blob driver", ErrInvalidInput)
		}
	default:
		return NewAppError(CodeConfig, "BLOB_DRIVER must be local or s3", ErrInvalidInput)
	}
	if c.Extractor.MaxPages < 0 {
		return NewAppError(CodeConfig, "PDF_MAX_PAGES must not be negative", ErrInvalidInput)
	}
	if c.Queue.Workers < 1 {
		return NewAppError(CodeConfig, "QUEUE_WORKERS must be at least 1", ErrInvalidInput)
	}
	return nil
}
