package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config is loaded once at process start. There is no hot reload.
type Config struct {
	Port   string
	DBPath string

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	LoginAttemptLimit  int
	LoginAttemptWindow time.Duration
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	return Config{
		Port:               getEnv("PORT", "8080"),
		DBPath:             getEnv("DB_PATH", filepath.Join("data", "zabota.db")),
		JWTSecret:          getEnv("JWT_SECRET", "change_me_in_production"),
		JWTIssuer:          getEnv("JWT_ISSUER", "zabota"),
		JWTAudience:        getEnv("JWT_AUDIENCE", "zabota-mobile"),
		AccessTokenTTL:     time.Duration(getEnvInt("ACCESS_TOKEN_MINUTES", 15)) * time.Minute,
		RefreshTokenTTL:    time.Duration(getEnvInt("REFRESH_TOKEN_DAYS", 90)) * 24 * time.Hour,
		LoginAttemptLimit:  getEnvInt("LOGIN_ATTEMPT_LIMIT", 3),
		LoginAttemptWindow: time.Duration(getEnvInt("LOGIN_ATTEMPT_WINDOW_MINUTES", 10)) * time.Minute,
	}
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		log.Printf("invalid %s=%q, using %d", key, raw, fallback)
		return fallback
	}
	return value
}
