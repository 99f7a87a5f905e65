package common

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Extraction backends and text modes accepted in configuration.
const (
	BackendPdftotext = "pdftotext"
	BackendNative    = "native"

	TextModeRaw    = "raw"
	TextModeLayout = "layout"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Extract  ExtractConfig
	Engine   EngineConfig
	Profiles ProfilesConfig
	Queue    QueueConfig
	Cache    CacheConfig
	Ingest   IngestConfig
}

// DatabaseConfig holds database-related configuration. DSN is either a postgres URL or
// sqlite://<path>.
type DatabaseConfig struct {
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
	GRPCAddr       string
	RateLimitRPS   float64
	RateLimitBurst int
}

// ExtractConfig configures how text is pulled out of documents.
type ExtractConfig struct {
	Pdftotext     string
	Backend       string // pdftotext | native
	TextMode      string // raw | layout
	Timeout       time.Duration
	LineTolerance float64
	MaxPages      int
}

// EngineConfig tunes the line engine.
type EngineConfig struct {
	EANThreshold int
}

// ProfilesConfig locates extra profile files.
type ProfilesConfig struct {
	Dir     string
	Default string
}

// QueueConfig sizes the daemon worker pool.
type QueueConfig struct {
	Workers        int
	Size           int
	ProcessTimeout time.Duration
}

// CacheConfig controls the in-memory result memo.
type CacheConfig struct {
	TTL     time.Duration
	Cleanup time.Duration
}

// IngestConfig holds the inbox watcher settings.
type IngestConfig struct {
	InboxDir    string
	OutputDir   string
	Debounce    time.Duration
	InitialScan bool
}

// LoadConfig loads configuration from environment variables, after reading .env from the
// working directory when one exists.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Warn("config.dotenv.invalid", "error", err)
	}
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", "sqlite://order-extractor.db"),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr:       getEnv("GRPC_ADDR", ":8080"),
			RateLimitRPS:   getEnvAsFloat64("RATE_LIMIT_RPS", 10),
			RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 30),
		},
		Extract: ExtractConfig{
			Pdftotext:     getEnv("PDFTOTEXT", "pdftotext"),
			Backend:       getEnv("EXTRACT_BACKEND", BackendPdftotext),
			TextMode:      getEnv("EXTRACT_TEXT_MODE", TextModeRaw),
			Timeout:       getEnvAsDuration("EXTRACT_TIMEOUT", 60*time.Second),
			LineTolerance: getEnvAsFloat64("EXTRACT_LINE_TOLERANCE", 1.5),
			MaxPages:      getEnvAsInt("EXTRACT_MAX_PAGES", 0),
		},
		Engine: EngineConfig{
			EANThreshold: getEnvAsInt("EAN_THRESHOLD", 7),
		},
		Profiles: ProfilesConfig{
			Dir:     getEnv("PROFILES_DIR", "./profiles"),
			Default: getEnv("DEFAULT_PROFILE", "redebiz"),
		},
		Queue: QueueConfig{
			Workers:        getEnvAsInt("QUEUE_WORKERS", 2),
			Size:           getEnvAsInt("QUEUE_SIZE", 64),
			ProcessTimeout: getEnvAsDuration("QUEUE_PROCESS_TIMEOUT", 2*time.Minute),
		},
		Cache: CacheConfig{
			TTL:     getEnvAsDuration("CACHE_TTL", 15*time.Minute),
			Cleanup: getEnvAsDuration("CACHE_CLEANUP", 30*time.Minute),
		},
		Ingest: IngestConfig{
			InboxDir:    getEnv("INBOX_DIR", "./inbox"),
			OutputDir:   getEnv("OUTPUT_DIR", "./out"),
			Debounce:    getEnvAsDuration("INGEST_DEBOUNCE", 500*time.Millisecond),
			InitialScan: getEnvAsBool("INGEST_INITIAL_SCAN", true),
		},
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
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
	v := NewValidator()
	v.Field("DB_URL", c.Database.DSN, Required)
	v.Field("GRPC_ADDR", c.Server.GRPCAddr, Required)
	v.Field("RATE_LIMIT_RPS", c.Server.RateLimitRPS, Positive)
	v.Field("RATE_LIMIT_BURST", c.Server.RateLimitBurst, Positive)
	v.Field("EXTRACT_BACKEND", c.Extract.Backend, OneOf(BackendPdftotext, BackendNative))
	v.Field("EXTRACT_TEXT_MODE", c.Extract.TextMode, OneOf(TextModeRaw, TextModeLayout))
	v.Field("EXTRACT_LINE_TOLERANCE", c.Extract.LineTolerance, Positive)
	v.Field("EAN_THRESHOLD", c.Engine.EANThreshold, Positive)
	v.Field("DEFAULT_PROFILE", c.Profiles.Default, Required)
	v.Field("QUEUE_WORKERS", c.Queue.Workers, Positive)
	v.Field("QUEUE_SIZE", c.Queue.Size, Positive)
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrValidation)
	}
	return nil
}
