package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	EnvProduction  = "production"
	EnvDevelopment = "development"

	UploadBackendDisk = "disk"
	UploadBackendS3   = "s3"
)

var (
	ErrMissingJWTSecret   = errors.New("JWT_SECRET must be set")
	ErrMissingDatabaseURL = errors.New("DATABASE_URL (or DB_HOST) must be set")
	ErrBadUploadBackend   = errors.New("UPLOAD_BACKEND must be disk or s3")
	ErrMissingS3Bucket    = errors.New("S3_BUCKET must be set when UPLOAD_BACKEND=s3")
)

type Config struct {
	APIPort string
	AppEnv  string
	JWTKey  []byte
	JWTExp  time.Duration

	DBConnStr string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	UploadBackend  string
	UploadDir      string
	MaxUploadBytes int64
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string
	S3PublicURL    string

	StoreTimeout   time.Duration
	RequestTimeout time.Duration

	OpLogKey      string
	OpLogCapacity int
	RevokedPrefix string
	LogLevel      string
	LogFile       string
	PublicDir     string
}

// Production reports whether internal error details must be hidden from clients.
func (c *Config) Production() bool {
	return c.AppEnv == EnvProduction
}

// Load reads the environment (seeded from .env when present). It fails when a
// required secret is missing instead of substituting a default.
func Load() (*Config, error) {
	_ = godotenv.Load() // a missing .env is fine, the environment still applies

	cfg := &Config{
		APIPort:        getEnv("API_PORT", "3000"),
		AppEnv:         strings.ToLower(getEnv("APP_ENV", EnvDevelopment)),
		JWTKey:         []byte(getEnv("JWT_SECRET", "")),
		JWTExp:         time.Duration(getEnvAsInt("JWT_EXPIRATION_HOURS", 24)) * time.Hour,
		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		UploadBackend:  strings.ToLower(getEnv("UPLOAD_BACKEND", UploadBackendDisk)),
		UploadDir:      getEnv("UPLOAD_DIR", "uploads"),
		MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 5*1024*1024)),
		S3Bucket:       getEnv("S3_BUCKET", ""),
		S3Region:       getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:     getEnv("S3_ENDPOINT", ""),
		S3AccessKey:    getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:    getEnv("S3_SECRET_KEY", ""),
		S3PublicURL:    getEnv("S3_PUBLIC_URL", ""),
		StoreTimeout:   time.Duration(getEnvAsInt("STORE_TIMEOUT_SECONDS", 5)) * time.Second,
		RequestTimeout: time.Duration(getEnvAsInt("REQUEST_TIMEOUT_SECONDS", 60)) * time.Second,
		OpLogKey:       getEnv("OPLOG_KEY", "ops:log"),
		OpLogCapacity:  getEnvAsInt("OPLOG_CAPACITY", 1000),
		RevokedPrefix:  getEnv("REVOKED_TOKEN_PREFIX", "revoked:"),
		LogLevel:       strings.ToLower(getEnv("LOG_LEVEL", "info")),
		LogFile:        getEnv("LOG_FILE", ""),
		PublicDir:      getEnv("PUBLIC_DIR", "public"),
	}

	cfg.DBConnStr = getEnv("DATABASE_URL", "")
	if cfg.DBConnStr == "" && getEnv("DB_HOST", "") != "" {
		cfg.DBConnStr = "host=" + getEnv("DB_HOST", "") +
			" port=" + getEnv("DB_PORT", "5432") +
			" user=" + getEnv("DB_USER", "") +
			" password=" + getEnv("DB_PASSWORD", "") +
			" dbname=" + getEnv("DB_NAME", "messageboard") +
			" sslmode=" + getEnv("DB_SSLMODE", "disable")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that have no safe default.
func (c *Config) Validate() error {
	var errs []error
	if len(c.JWTKey) == 0 {
		errs = append(errs, ErrMissingJWTSecret)
	}
	if c.DBConnStr == "" {
		errs = append(errs, ErrMissingDatabaseURL)
	}
	switch c.UploadBackend {
	case UploadBackendDisk:
	case UploadBackendS3:
		if c.S3Bucket == "" {
			errs = append(errs, ErrMissingS3Bucket)
		}
	default:
		errs = append(errs, ErrBadUploadBackend)
	}
	return errors.Join(errs...)
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}
