package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port   string
	JwtKey []byte
	// Admin login
	Username string
	Password string
	// Persistent cache
	SQLitePath string
	// External services
	IPAPIBaseURL      string
	ReverseGeocodeURL string
	ResolveTimeout    time.Duration
	// Rate limiting
	RateLimitMax    int
	RateLimitWindow time.Duration
	// Caching
	CacheTTL time.Duration
}

func LoadConfig() (*Config, error) {
	// A missing .env file is fine; the environment may be set directly.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	jwtSecret := os.Getenv("JWT_SECRET_KEY")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY is not set in .env file")
	}

	username := os.Getenv("LOGIN_USERNAME")
	password := os.Getenv("LOGIN_PASSWORD")
	if username == "" || password == "" {
		return nil, fmt.Errorf("LOGIN_USERNAME or LOGIN_PASSWORD is not set in .env file")
	}

	sqlitePath := os.Getenv("SQLITE_PATH")
	if sqlitePath == "" {
		sqlitePath = filepath.Join("data", "geolocale.db")
	}

	config := &Config{
		Port:              getEnv("PORT", "3001"),
		JwtKey:            []byte(jwtSecret),
		Username:          username,
		Password:          password,
		SQLitePath:        sqlitePath,
		IPAPIBaseURL:      getEnv("IP_API_URL", "http://ip-api.com/json"),
		ReverseGeocodeURL: getEnv("REVERSE_GEOCODE_URL", "https://api.bigdatacloud.net/data/reverse-geocode-client"),
		ResolveTimeout:    getEnvDuration("RESOLVE_TIMEOUT_SECONDS", 5*time.Second),
		RateLimitMax:      getEnvInt("RATE_LIMIT_MAX", 10),
		RateLimitWindow:   getEnvDuration("RATE_LIMIT_WINDOW_SECONDS", time.Minute),
		CacheTTL:          getEnvDuration("CACHE_TTL_SECONDS", 24*time.Hour),
	}

	return config, nil
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
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}
