package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageMemory   = "memory"
	StorageS3       = "s3"
	StoragePostgres = "postgres"

	UserSourceSecretsManager = "secretsmanager"
	UserSourcePostgres       = "postgres"
	UserSourceMemory         = "memory"
)

// Config holds application configuration. It is built once in main and
// handed to every component that needs it.
type Config struct {
	AppName     string
	Environment string
	HTTPAddr    string

	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxUploadBytes int

	Auth     AuthConfig
	Storage  StorageConfig
	Gemini   GeminiConfig
	Forecast ForecastConfig

	DatabaseURL string
}

type AuthConfig struct {
	Enabled       bool
	JWTSecret     string
	TokenTTL      time.Duration
	UserSource    string
	UsersSecretID string
	SeedUsername  string
	SeedPassword  string
}

type StorageConfig struct {
	Backend   string
	S3Bucket  string
	AWSRegion string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type ForecastConfig struct {
	AnchorLeadTimeToProduct bool
}

// Load loads configuration from environment variables and an optional .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:        getenv("APP_NAME", "stockiq"),
		Environment:    getenv("ENVIRONMENT", "development"),
		HTTPAddr:       getenv("HTTP_ADDR", ":8000"),
		ReadTimeout:    getenvDuration("HTTP_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getenvDuration("HTTP_WRITE_TIMEOUT", 120*time.Second),
		MaxUploadBytes: getenvInt("MAX_UPLOAD_BYTES", 10*1024*1024),
		Auth: AuthConfig{
			Enabled:       getenvBool("AUTH_ENABLED", true),
			JWTSecret:     strings.TrimSpace(getenv("JWT_SECRET", "")),
			TokenTTL:      getenvDuration("ACCESS_TOKEN_TTL", 30*time.Minute),
			UserSource:    strings.ToLower(getenv("AUTH_USER_SOURCE", UserSourceSecretsManager)),
			UsersSecretID: getenv("AUTH_USERS_SECRET_ID", "stockiq-users"),
			SeedUsername:  getenv("AUTH_SEED_USERNAME", ""),
			SeedPassword:  getenv("AUTH_SEED_PASSWORD", ""),
		},
		Storage: StorageConfig{
			Backend:   strings.ToLower(getenv("STORAGE_BACKEND", StorageMemory)),
			S3Bucket:  getenv("S3_BUCKET", "stockiq-data"),
			AWSRegion: getenv("AWS_REGION", "us-east-1"),
		},
		Gemini: GeminiConfig{
			APIKey: strings.TrimSpace(getenv("GEMINI_API_KEY", "")),
			Model:  getenv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
		},
		Forecast: ForecastConfig{
			AnchorLeadTimeToProduct: getenvBool("FORECAST_ANCHOR_LEAD_TIME_TO_PRODUCT", false),
		},
		DatabaseURL: getenv("DATABASE_URL", ""),
	}
}

// NeedsDatabase reports whether any configured backend talks to Postgres.
func (c Config) NeedsDatabase() bool {
	return c.Storage.Backend == StoragePostgres || c.Auth.UserSource == UserSourcePostgres
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return b
}

func getenvInt(key string, fallback int) int {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(v))
	if err != nil {
		return fallback
	}
	return d
}
