package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort      string
	Environment     string
	FirebaseProject string
	AllowedOrigins  []string

	// REST backend that owns companies, jobs, applications and logbooks.
	BackendBaseURL    string
	BackendUserHeader string
	BackendTimeout    time.Duration
	BackendRetryMax   time.Duration

	ContactPageSize   int
	EnrichConcurrency int
	ScrollThreshold   float64

	LocalStoreDriver string // sqlite, redis or memory
	LocalStorePath   string
	RedisAddr        string
	RedisPassword    string
	ProfileCacheTTL  time.Duration

	StorageBucket string
}

func Load() (*Config, error) {
	godotenv.Load()

	config := &Config{
		ServerPort:        getEnv("SERVER_PORT", "8080"),
		Environment:       getEnv("ENVIRONMENT", "development"),
		FirebaseProject:   getEnv("FIREBASE_PROJECT_ID", ""),
		AllowedOrigins:    getEnvAsList("ALLOWED_ORIGINS", []string{"*"}),
		BackendBaseURL:    getEnv("BACKEND_BASE_URL", "http://localhost:5000"),
		BackendUserHeader: getEnv("BACKEND_USER_HEADER", "X-User-Id"),
		BackendTimeout:    getEnvAsDuration("BACKEND_TIMEOUT", 10*time.Second),
		BackendRetryMax:   getEnvAsDuration("BACKEND_RETRY_MAX", 5*time.Second),
		ContactPageSize:   getEnvAsInt("CONTACT_PAGE_SIZE", 10),
		EnrichConcurrency: getEnvAsInt("ENRICH_CONCURRENCY", 8),
		ScrollThreshold:   getEnvAsFloat("SCROLL_THRESHOLD", 1.5),
		LocalStoreDriver:  getEnv("LOCAL_STORE_DRIVER", "sqlite"),
		LocalStorePath:    getEnv("LOCAL_STORE_PATH", "./securehire-cache.db"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		ProfileCacheTTL:   getEnvAsDuration("PROFILE_CACHE_TTL", 10*time.Minute),
		StorageBucket:     getEnv("STORAGE_BUCKET", ""),
	}

	if config.FirebaseProject == "" && config.Environment != "development" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required in %s environment", config.Environment)
	}
	if config.ContactPageSize <= 0 || config.ContactPageSize > 100 {
		return nil, fmt.Errorf("CONTACT_PAGE_SIZE must be between 1 and 100, got %d", config.ContactPageSize)
	}
	switch config.LocalStoreDriver {
	case "sqlite", "redis", "memory":
	default:
		return nil, fmt.Errorf("unknown LOCAL_STORE_DRIVER %q", config.LocalStoreDriver)
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		intValue, err := strconv.Atoi(value)
		if err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		f, err := strconv.ParseFloat(value, 64)
		if err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		d, err := time.ParseDuration(value)
		if err == nil {
			return d
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma separated value, dropping empty items.
func getEnvAsList(key string, defaultValue []string) []string {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
