package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all settings for the CLI, the API server and the dbtool.
// An empty Profile means unset: the scenario profile, then
// domain.DefaultProfile, applies.
type Config struct {
	OSRMBaseURL  string        `validate:"required,url"`
	Profile      string        `validate:"omitempty,osrm_profile"`
	Delay        time.Duration `validate:"gte=0"`
	MaxTableSize int           `validate:"gte=2"`
	HTTPTimeout  time.Duration `validate:"gt=0"`

	CacheDriver string        `validate:"oneof=none sqlite postgres redis"`
	DatabaseURL string        `validate:"required_if=CacheDriver postgres"`
	SQLitePath  string        `validate:"required_if=CacheDriver sqlite"`
	RedisURL    string        `validate:"required_if=CacheDriver redis"`
	CacheTTL    time.Duration `validate:"gte=0"`

	ResultsDir   string `validate:"required"`
	ScenarioPath string
	Offline      bool

	Port     string `validate:"required,numeric"`
	LogLevel string `validate:"oneof=debug info warn error"`
}

// LoadDotEnv reads .env into the process environment when present.
// Variables already set are not overridden.
func LoadDotEnv() bool {
	return godotenv.Load() == nil
}

// Get returns the value of key, or fallback when unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	delay, err := getSeconds("OSRM_DELAY_SECONDS", time.Second)
	if err != nil {
		return nil, err
	}
	timeout, err := getSeconds("OSRM_TIMEOUT_SECONDS", 10*time.Second)
	if err != nil {
		return nil, err
	}
	ttl, err := getSeconds("CACHE_TTL_SECONDS", 0)
	if err != nil {
		return nil, err
	}
	maxTable, err := getInt("OSRM_MAX_TABLE_SIZE", 100)
	if err != nil {
		return nil, err
	}
	offline, err := getBool("OSRM_OFFLINE", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		OSRMBaseURL:  Get("OSRM_BASE_URL", "https://router.project-osrm.org"),
		Profile:      Get("OSRM_PROFILE", ""),
		Delay:        delay,
		MaxTableSize: maxTable,
		HTTPTimeout:  timeout,
		CacheDriver:  Get("CACHE_DRIVER", "none"),
		DatabaseURL:  Get("DATABASE_URL", ""),
		SQLitePath:   Get("SQLITE_PATH", "data/osrm_cache.db"),
		RedisURL:     Get("REDIS_URL", ""),
		CacheTTL:     ttl,
		ResultsDir:   Get("RESULTS_DIR", "results"),
		ScenarioPath: Get("SCENARIO_PATH", ""),
		Offline:      offline,
		Port:         Get("PORT", "8080"),
		LogLevel:     Get("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if err := structValidator().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getSeconds(key string, fallback time.Duration) (time.Duration, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	secs, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not a number of seconds: %w", key, raw, err)
	}
	return time.Duration(secs * float64(time.Second)), nil
}

func getInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config: %s=%q is not an integer: %w", key, raw, err)
	}
	return n, nil
}

func getBool(key string, fallback bool) (bool, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config: %s=%q is not a boolean: %w", key, raw, err)
	}
	return b, nil
}
