package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// DatabaseConfig holds PostgreSQL settings for the activity log.
// An empty Host disables the activity log entirely.
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

// Enabled reports whether a database host was configured.
func (c DatabaseConfig) Enabled() bool {
	return c.Host != ""
}

// MinIOConfig holds object storage settings for MinIO or any S3-compatible endpoint.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// AuthConfig holds the single-user login and token signing settings.
type AuthConfig struct {
	Username  string
	Password  string
	JWTSecret string
	TokenTTL  time.Duration
}

// StorageConfig selects and tunes the object store backend.
type StorageConfig struct {
	// Driver is either "minio" or "memory".
	Driver        string
	PublicBaseURL string
	PresignTTL    time.Duration
	ListMaxKeys   int
}

// MetadataConfig holds the custom metadata limits. Its fields mirror
// metadata.Limits so one converts directly to the other.
type MetadataConfig struct {
	MaxBytes             int
	MaxDescriptionLength int
	MaxTitleLength       int
	MaxCategoryLength    int
	MaxTags              int
	MaxTagLength         int
}

// AppConfig is the centralized configuration struct for the application.
// It is populated from environment variables. Sensitive values are not hardcoded.
type AppConfig struct {
	Port      string
	APIPrefix string
	Timezone  string
	Auth      AuthConfig
	Storage   StorageConfig
	Metadata  MetadataConfig
	Database  DatabaseConfig
	MinIO     MinIOConfig
}

var (
	ErrJWTSecretRequired    = errors.New("JWT_SECRET is required")
	ErrAuthPasswordRequired = errors.New("AUTH_PASSWORD is required")
	ErrUnknownStorageDriver = errors.New("STORAGE_DRIVER must be minio or memory")
)

// Load reads configuration from environment variables.
// A .env file can be auto-loaded by importing: _ "github.com/joho/godotenv/autoload"
// This function does not require a .env file; real environment variables take precedence.
func Load() *AppConfig {
	return &AppConfig{
		Port:      getEnv("PORT", "8080"),
		APIPrefix: getEnv("API_PREFIX", "/api"),
		Timezone:  getEnv("TZ", "UTC"),
		Auth: AuthConfig{
			Username:  getEnv("AUTH_USERNAME", "admin"),
			Password:  getEnv("AUTH_PASSWORD", ""),
			JWTSecret: getEnv("JWT_SECRET", ""),
			TokenTTL:  getEnvDuration("TOKEN_TTL", 24*time.Hour),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "minio"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", ""),
			PresignTTL:    getEnvDuration("PRESIGN_TTL", 15*time.Minute),
			ListMaxKeys:   getEnvInt("LIST_MAX_KEYS", 1000),
		},
		Metadata: MetadataConfig{
			MaxBytes:             getEnvInt("METADATA_MAX_BYTES", 2048),
			MaxDescriptionLength: getEnvInt("METADATA_MAX_DESCRIPTION_LENGTH", 500),
			MaxTitleLength:       getEnvInt("METADATA_MAX_TITLE_LENGTH", 100),
			MaxCategoryLength:    getEnvInt("METADATA_MAX_CATEGORY_LENGTH", 50),
			MaxTags:              getEnvInt("METADATA_MAX_TAGS", 10),
			MaxTagLength:         getEnvInt("METADATA_MAX_TAG_LENGTH", 50),
		},
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
			Region:    getEnv("MINIO_REGION", ""),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
	}
}

// Validate checks the settings the server cannot start without.
func (c *AppConfig) Validate() error {
	if c.Auth.JWTSecret == "" {
		return ErrJWTSecretRequired
	}
	if c.Auth.Password == "" {
		return ErrAuthPasswordRequired
	}
	switch c.Storage.Driver {
	case "minio", "memory":
	default:
		return ErrUnknownStorageDriver
	}
	return nil
}

// Location resolves Timezone, falling back to UTC.
func (c *AppConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
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

// getEnvDuration accepts Go durations ("24h") or plain seconds ("86400").
func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
		if s, err := strconv.Atoi(v); err == nil && s > 0 {
			return time.Duration(s) * time.Second
		}
	}
	return def
}
