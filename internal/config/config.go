package config

import (
	"os"
	"strconv"
	"strings"
)

// DatabaseConfig locates the PostgreSQL archive database (DB_*).
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

// Enabled reports whether a database host is configured.
func (c DatabaseConfig) Enabled() bool { return c.Host != "" }

// MinIOConfig locates the S3-compatible bucket holding archived uploads (MINIO_*).
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	// Region pins the bucket region; empty lets the client discover it.
	Region string
}

// Enabled reports whether an object storage endpoint is configured.
func (c MinIOConfig) Enabled() bool { return c.Endpoint != "" }

// SimplifierConfig holds settings of the chat-completion API used to simplify text.
type SimplifierConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// SpeechConfig holds settings of the text-to-speech API.
type SpeechConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Voice   string
}

// UploadConfig bounds request payloads.
type UploadConfig struct {
	MaxBytes     int64
	MaxTextBytes int
}

// RateLimitConfig configures the per-process request limiter. Zero RPS disables it.
type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// AppConfig is the whole process configuration. Secrets only come from the environment.
type AppConfig struct {
	AppHost            string
	Port               string
	Timezone           string
	CORSOrigins        string
	UpstreamTimeoutSec int
	Database           DatabaseConfig
	MinIO              MinIOConfig
	Simplifier         SimplifierConfig
	Speech             SpeechConfig
	Upload             UploadConfig
	RateLimit          RateLimitConfig
}

// ArchiveEnabled reports whether uploads are persisted. Both the database and
// the object store must be configured.
func (c *AppConfig) ArchiveEnabled() bool {
	return c.Database.Enabled() && c.MinIO.Enabled()
}

// Load builds AppConfig from the environment. Unset or malformed values fall
// back to defaults. cmd/api imports godotenv/autoload, so a local .env file is
// merged in first without overriding variables that are already set.
func Load() *AppConfig {
	return &AppConfig{
		AppHost:            getEnv("APP_HOST", "localhost:8080"),
		Port:               getEnv("PORT", "8080"),
		Timezone:           getEnv("APP_TIMEZONE", "UTC"),
		CORSOrigins:        getEnv("CORS_ALLOW_ORIGINS", "*"),
		UpstreamTimeoutSec: getEnvInt("UPSTREAM_TIMEOUT_SEC", 60),
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
			Bucket:    getEnv("MINIO_BUCKET", "uploads"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
			Region:    getEnv("MINIO_REGION", ""),
		},
		Simplifier: SimplifierConfig{
			APIKey:      getEnv("MISTRAL_API_KEY", ""),
			BaseURL:     getEnv("MISTRAL_BASE_URL", "https://api.mistral.ai/v1"),
			Model:       getEnv("MISTRAL_MODEL", "mistral-tiny"),
			Temperature: getEnvFloat("MISTRAL_TEMPERATURE", 0),
		},
		Speech: SpeechConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
			Model:   getEnv("SPEECH_MODEL", "tts-1"),
			Voice:   getEnv("SPEECH_VOICE", "alloy"),
		},
		Upload: UploadConfig{
			MaxBytes:     int64(getEnvInt("UPLOAD_MAX_BYTES", 10<<20)),
			MaxTextBytes: getEnvInt("TEXT_MAX_BYTES", 100<<10),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("RATE_LIMIT_RPS", 0),
			Burst: getEnvInt("RATE_LIMIT_BURST", 10),
		},
	}
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// parsedEnv returns parse(value of key), or def when the variable is unset or malformed.
func parsedEnv[T any](key string, def T, parse func(string) (T, error)) T {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def
	}
	v, err := parse(raw)
	if err != nil {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	return parsedEnv(key, def, strconv.ParseBool)
}

func getEnvInt(key string, def int) int {
	return parsedEnv(key, def, strconv.Atoi)
}

func getEnvFloat(key string, def float64) float64 {
	return parsedEnv(key, def, func(s string) (float64, error) { return strconv.ParseFloat(s, 64) })
}
