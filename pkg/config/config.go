package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// maxHorizonDays mirrors scheduler.MaxHorizonDays
const maxHorizonDays = 366

// Config covers process level configuration read from environment variables.
type Config struct {
	Environment string
	Port        string
	GinMode     string

	DatabaseURL string
	DataPath    string

	APIKey      string // routing provider
	AccessToken string // inbound shared token
	JWTSecret   string

	AdminUsername string
	AdminPassword string

	DirectionsBaseURL string
	OracleTimeout     time.Duration
	OracleRate        float64
	OracleConcurrency int

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	TravelCacheTTL time.Duration

	HorizonDays int
}

// LoadEnvFiles loads the first .env found in the working directory or its parents
func LoadEnvFiles(paths ...string) {
	if len(paths) == 0 {
		paths = []string{".env", "../.env", "../../.env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			_ = godotenv.Load(p)
			return
		}
	}
}

// Load reads the environment
func Load() (*Config, error) {
	cfg := &Config{
		Environment: getEnv("APP_ENV", "production"),
		Port:        getEnv("PORT", "8000"),
		GinMode:     getEnv("GIN_MODE", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		DataPath:    getEnv("DATA_PATH", "autoschedule.db"),

		APIKey:      getEnv("API_KEY", ""),
		AccessToken: getEnv("ACCESS_TOKEN", ""),
		JWTSecret:   getEnv("JWT_SECRET", ""),

		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),

		DirectionsBaseURL: getEnv("DIRECTIONS_BASE_URL", "https://maps.googleapis.com/maps/api/directions/json"),
		OracleTimeout:     time.Duration(getEnvInt("ORACLE_TIMEOUT_SECONDS", 10)) * time.Second,
		OracleRate:        getEnvFloat("ORACLE_RATE_PER_SECOND", 10),
		OracleConcurrency: getEnvInt("ORACLE_CONCURRENCY", 4),

		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		TravelCacheTTL: time.Duration(getEnvInt("TRAVEL_CACHE_TTL_MINUTES", 15)) * time.Minute,

		HorizonDays: getEnvInt("HORIZON_DAYS", 14),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values the service cannot run without
func (c *Config) Validate() error {
	var errs []error
	if c.APIKey == "" {
		errs = append(errs, errors.New("API_KEY is required"))
	}
	if c.AccessToken == "" {
		errs = append(errs, errors.New("ACCESS_TOKEN is required"))
	}
	if c.OracleTimeout <= 0 {
		errs = append(errs, errors.New("ORACLE_TIMEOUT_SECONDS must be positive"))
	}
	if c.HorizonDays <= 0 || c.HorizonDays > maxHorizonDays {
		errs = append(errs, fmt.Errorf("HORIZON_DAYS must be between 1 and %d", maxHorizonDays))
	}
	return errors.Join(errs...)
}

// IsDevelopment reports whether verbose logging should be enabled
func (c *Config) IsDevelopment() bool {
	return strings.EqualFold(c.Environment, "development")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := getEnv(key, ""); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := getEnv(key, ""); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}
