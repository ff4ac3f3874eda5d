package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends
const (
	StoreSupabase = "supabase"
	StoreSQLite   = "sqlite"
)

// Decoder backends
const (
	DecoderGozxing = "gozxing"
	DecoderNone    = "none"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	StoreTimeout       time.Duration
	MaxRequestBodySize int64
	MaxImagePixels     int64
	LogLevel           string
	GinMode            string

	StoreBackend string
	SupabaseURL  string
	SupabaseKey  string
	StudentTable string
	SQLitePath   string

	DecoderBackend   string
	DecoderTryHarder bool
	DecoderFormats   []string

	DefaultLanguage string

	ArchiveEnabled bool
	AzureAccount   string
	AzureKey       string
	AzureContainer string
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// LoadFromEnv reads configuration from the environment after loading an
// optional dotenv file (ENV_FILE, default ".env"). Variables already set in
// the environment win over the file.
func LoadFromEnv() (*Config, error) {
	envFile := getEnvOrDefault("ENV_FILE", ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8000"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 30*time.Second),
		StoreTimeout:       parseDurationOrDefault("STORE_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 15*1024*1024), // base64 inflates ~4/3
		MaxImagePixels:     parseIntOrDefault("MAX_IMAGE_PIXELS", 40_000_000),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
		GinMode:            getEnvOrDefault("GIN_MODE", "release"),

		StoreBackend: strings.ToLower(getEnvOrDefault("STORE_BACKEND", StoreSupabase)),
		SupabaseURL:  strings.TrimRight(strings.TrimSpace(os.Getenv("SUPABASE_URL")), "/"),
		SupabaseKey:  strings.TrimSpace(os.Getenv("SUPABASE_KEY")),
		StudentTable: getEnvOrDefault("STUDENT_TABLE", "Database"),
		SQLitePath:   getEnvOrDefault("SQLITE_PATH", "data/students.db"),

		DecoderBackend:   strings.ToLower(getEnvOrDefault("DECODER_BACKEND", DecoderGozxing)),
		DecoderTryHarder: parseBoolOrDefault("DECODER_TRY_HARDER", true),
		DecoderFormats:   parseListOrDefault("DECODER_FORMATS", nil),

		DefaultLanguage: getEnvOrDefault("DEFAULT_LANGUAGE", "English"),

		ArchiveEnabled: parseBoolOrDefault("ARCHIVE_ENABLED", false),
		AzureAccount:   strings.TrimSpace(os.Getenv("AZURE_STORAGE_ACCOUNT")),
		AzureKey:       strings.TrimSpace(os.Getenv("AZURE_STORAGE_KEY")),
		AzureContainer: getEnvOrDefault("AZURE_STORAGE_CONTAINER", "scans"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and backend-specific requirements
func (c *Config) Validate() error {
	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || p < 1 || p > 65535 {
		return fmt.Errorf("invalid PORT: %q", c.Port)
	}
	if c.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize)
	}
	if c.MaxImagePixels <= 0 {
		return fmt.Errorf("MAX_IMAGE_PIXELS must be > 0 (got %d)", c.MaxImagePixels)
	}
	if c.RequestTimeout <= 0 || c.StoreTimeout <= 0 {
		return fmt.Errorf("timeouts must be > 0 (got request=%s, store=%s)", c.RequestTimeout, c.StoreTimeout)
	}

	switch c.StoreBackend {
	case StoreSupabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return errors.New("SUPABASE_URL and SUPABASE_KEY must be set in environment variables")
		}
	case StoreSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("SQLITE_PATH must be set for the sqlite store")
		}
	default:
		return fmt.Errorf("unsupported STORE_BACKEND: %q", c.StoreBackend)
	}

	switch c.DecoderBackend {
	case DecoderGozxing, DecoderNone:
	default:
		return fmt.Errorf("unsupported DECODER_BACKEND: %q", c.DecoderBackend)
	}

	if c.ArchiveEnabled && (c.AzureAccount == "" || c.AzureKey == "") {
		return errors.New("AZURE_STORAGE_ACCOUNT and AZURE_STORAGE_KEY must be set when ARCHIVE_ENABLED is true")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func parseBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(strings.TrimSpace(value)); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseListOrDefault(key string, defaultValue []string) []string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
