package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const PROD_STRING = "prod"

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// Config holds all application configuration loaded from environment.
type Config struct {
	IsProduction      bool
	ProdOrigins       string
	HTTPAddr          string
	StorageDriver     string
	DBDSN             string
	JWTSecret         string
	JWTAccessTokenTTL time.Duration
	BcryptCost        int

	// Scheduling
	WorkStartHour int
	WorkEndHour   int
	SlotStep      time.Duration
	EnforceBuffer bool
	Timezone      *time.Location

	// Notifications
	RedisAddr       string
	RedisChannel    string
	NotifyQueueSize int

	PublicBaseURL        string
	MediaDir             string
	BookingRatePerMinute int
}

// Load loads configuration from .env (optional) and environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("failed to load .env file: %v", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current process environment only.
func FromEnv() (*Config, error) {
	var err error
	cfg := &Config{}

	cfg.ProdOrigins = getEnv("PROD_ORIGINS", "")
	cfg.IsProduction = getEnv("APP_ENV", "dev") == PROD_STRING
	if cfg.IsProduction && strings.TrimSpace(cfg.ProdOrigins) == "" {
		return nil, fmt.Errorf("PROD_ORIGINS is required when APP_ENV=%s", PROD_STRING)
	}
	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":8080")

	cfg.StorageDriver = strings.ToLower(getEnv("STORAGE_DRIVER", StorageMemory))
	switch cfg.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		// Database DSN is required when persisting to postgres
		cfg.DBDSN = os.Getenv("DB_DSN")
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("DB_DSN is required when STORAGE_DRIVER=%s", StoragePostgres)
		}
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// JWT secret is required for signing tokens
	cfg.JWTSecret = os.Getenv("JWT_SECRET")
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if cfg.JWTAccessTokenTTL, err = getEnvAsDuration("JWT_ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BcryptCost, err = getEnvAsInt("BCRYPT_COST", 12); err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %w", err)
	}

	if cfg.WorkStartHour, err = getEnvAsInt("WORK_START_HOUR", 9); err != nil {
		return nil, err
	}
	if cfg.WorkEndHour, err = getEnvAsInt("WORK_END_HOUR", 17); err != nil {
		return nil, err
	}
	if cfg.WorkStartHour < 0 || cfg.WorkEndHour > 24 || cfg.WorkStartHour >= cfg.WorkEndHour {
		return nil, fmt.Errorf("invalid working hours %d-%d", cfg.WorkStartHour, cfg.WorkEndHour)
	}
	if cfg.SlotStep, err = getEnvAsDuration("SLOT_STEP", 30*time.Minute); err != nil {
		return nil, err
	}
	if cfg.SlotStep <= 0 {
		return nil, fmt.Errorf("SLOT_STEP must be positive")
	}
	if cfg.EnforceBuffer, err = getEnvAsBool("ENFORCE_BUFFER", true); err != nil {
		return nil, err
	}

	tzName := getEnv("SCHEDULE_TIMEZONE", "UTC")
	if cfg.Timezone, err = time.LoadLocation(tzName); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE %q: %w", tzName, err)
	}

	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisChannel = getEnv("REDIS_CHANNEL", "booking-events")
	if cfg.NotifyQueueSize, err = getEnvAsInt("NOTIFY_QUEUE_SIZE", 100); err != nil {
		return nil, err
	}

	cfg.PublicBaseURL = strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:5173"), "/")
	cfg.MediaDir = getEnv("MEDIA_DIR", "./data/media")
	if cfg.BookingRatePerMinute, err = getEnvAsInt("BOOKING_RATE_PER_MINUTE", 10); err != nil {
		return nil, err
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable if set,
// otherwise returns the provided default value.
func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// getEnvAsInt retrieves an environment variable as an integer.
// It returns the default value if the variable is not set.
// It returns an error if the variable is set but is not a valid integer.
func getEnvAsInt(key string, defaultValue int) (int, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.Atoi(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid integer: %w", key, valStr, err)
	}

	return val, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := time.ParseDuration(valStr)
	if err != nil {
		return 0, fmt.Errorf("env %s value %q is not a valid duration: %w", key, valStr, err)
	}
	return val, nil
}

func getEnvAsBool(key string, defaultValue bool) (bool, error) {
	valStr := getEnv(key, "")
	if valStr == "" {
		return defaultValue, nil
	}

	val, err := strconv.ParseBool(valStr)
	if err != nil {
		return false, fmt.Errorf("env %s value %q is not a valid boolean: %w", key, valStr, err)
	}
	return val, nil
}
