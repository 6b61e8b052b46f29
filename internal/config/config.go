package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Upload failure policies.
const (
	PolicyOrphan   = "orphan"
	PolicyRollback = "rollback"
)

type Config struct {
	Server    ServerConfig
	Mongo     MongoConfig
	JWT       JWTConfig
	Minio     MinioConfig
	Upload    UploadConfig
	RabbitMQ  RabbitMQConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port      string
	BodyLimit int
	BaseURL   string
}

type MongoConfig struct {
	URI      string
	Database string
	Backend  string // "mongo" or "memory"
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type MinioConfig struct {
	Endpoint      string
	AccessKey     string
	SecretKey     string
	Bucket        string
	UseSSL        bool
	PublicBaseURL string
}

type UploadConfig struct {
	MaxBytes      int64
	AllowedTypes  []string
	FailurePolicy string
}

type RabbitMQConfig struct {
	URL   string
	Queue string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading it, using environment variables")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Port:      getEnv("PORT", "8080"),
			BodyLimit: getEnvInt("BODY_LIMIT_BYTES", 32*1024*1024),
			BaseURL:   strings.TrimRight(getEnv("BASE_URL", "http://localhost:3000"), "/"),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "deskspace"),
			Backend:  getEnv("STORE_BACKEND", "mongo"),
		},
		JWT: JWTConfig{
			Secret: os.Getenv("JWT_SECRET"),
			TTL:    getEnvDuration("JWT_TTL", 4*time.Hour),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "property-images"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Upload: UploadConfig{
			MaxBytes:      int64(getEnvInt("UPLOAD_MAX_BYTES", 5*1024*1024)),
			AllowedTypes:  getEnvList("UPLOAD_ALLOWED_TYPES", []string{"image/jpeg", "image/png", "image/webp", "image/gif"}),
			FailurePolicy: strings.ToLower(getEnv("UPLOAD_FAILURE_POLICY", PolicyOrphan)),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   os.Getenv("RABBITMQ_URL"),
			Queue: getEnv("RABBITMQ_QUEUE", "deskspace.events"),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvFloat("AUTH_RATE_RPS", 5),
			Burst: getEnvInt("AUTH_RATE_BURST", 10),
		},
	}

	scheme := "http"
	if cfg.Minio.UseSSL {
		scheme = "https"
	}
	cfg.Minio.PublicBaseURL = strings.TrimRight(
		getEnv("MINIO_PUBLIC_URL", fmt.Sprintf("%s://%s", scheme, cfg.Minio.Endpoint)), "/")

	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET is required")
	}
	switch c.Upload.FailurePolicy {
	case PolicyOrphan, PolicyRollback:
	default:
		return fmt.Errorf("UPLOAD_FAILURE_POLICY must be %q or %q, got %q", PolicyOrphan, PolicyRollback, c.Upload.FailurePolicy)
	}
	switch c.Mongo.Backend {
	case "mongo", "memory":
	default:
		return fmt.Errorf("STORE_BACKEND must be mongo or memory, got %q", c.Mongo.Backend)
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("UPLOAD_MAX_BYTES must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
		log.Printf("[config] invalid %s=%q, using %d", key, v, fallback)
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
		log.Printf("[config] invalid %s=%q, using %v", key, v, fallback)
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("[config] invalid %s=%q, using %s", key, v, fallback)
	}
	return fallback
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
