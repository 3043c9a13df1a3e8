// Package config loads application configuration from environment variables.
//
// main.go calls godotenv.Load() first so a local .env file can populate the
// environment during development; in production the variables come from the
// deployment environment directly. Load() never fails — missing values fall
// back to defaults, and components that genuinely need a value (JWT secret,
// S3 credentials) validate it at construction time instead.
package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port      int
	Env       string // "development", "production" or "test"
	FEBaseURL string // front-end origin, used for CORS and OAuth redirects

	DBPath string

	JWTSecret  string
	BcryptCost int

	GoogleClientID     string
	GoogleClientSecret string
	GoogleCallbackURL  string

	S3Region    string
	S3Bucket    string
	S3Endpoint  string // host only, e.g. "s3.eu-central-1.amazonaws.com"
	S3AccessKey string
	S3SecretKey string
}

// Load reads all configuration from the environment, applying defaults.
func Load() *Config {
	port, _ := strconv.Atoi(getEnv("PORT", "8080"))
	cost, _ := strconv.Atoi(getEnv("BCRYPT_COST", "12"))

	region := getEnv("S3_REGION", "us-east-1")

	cfg := &Config{
		Port:      port,
		Env:       getEnv("NODE_ENV", "development"),
		FEBaseURL: getEnv("FE_BASE_URL", "http://localhost:3000"),

		DBPath: getEnv("DB_PATH", "data/filevault.db"),

		JWTSecret:  os.Getenv("JWT_SECRET"),
		BcryptCost: cost,

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		GoogleCallbackURL:  os.Getenv("GOOGLE_CALLBACK_URL"),

		S3Region:    region,
		S3Bucket:    os.Getenv("S3_BUCKET_NAME"),
		S3Endpoint:  getEnv("S3_ENDPOINT", fmt.Sprintf("s3.%s.amazonaws.com", region)),
		S3AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
		S3SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}

	if cfg.GoogleCallbackURL == "" {
		cfg.GoogleCallbackURL = fmt.Sprintf("http://localhost:%d/api/auth/google-redirect", cfg.Port)
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
