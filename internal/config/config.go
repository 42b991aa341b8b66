package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/joho/godotenv"
)

type Config struct {
	Env            string
	LogLevel       string
	HTTPAddr       string
	StorageBackend string
	PostgresDSN    string
	SQLitePath     string
	DataDir        string
	AuthServiceURL string
	RateLimitRPS   float64
	RateLimitBurst int
}

var (
	cfg  *Config
	once sync.Once
)

// Load reads the configuration once per process. A .env file in the working
// directory is applied first; real environment variables win over it.
func Load() *Config {
	once.Do(func() {
		_ = godotenv.Load()
		c, err := FromEnv()
		if err != nil {
			panic("Invalid config: " + err.Error())
		}
		cfg = c
	})
	return cfg
}

// FromEnv builds and validates a Config from the current environment.
func FromEnv() (*Config, error) {
	rps, err := getFloat("RATE_LIMIT_RPS", 10)
	if err != nil {
		return nil, err
	}
	burst, err := getInt("RATE_LIMIT_BURST", 20)
	if err != nil {
		return nil, err
	}
	c := &Config{
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		HTTPAddr:       getEnv("HTTP_ADDR", ":8088"),
		StorageBackend: getEnv("STORAGE_BACKEND", "file"),
		PostgresDSN:    getEnv("POSTGRES_DSN", ""),
		SQLitePath:     getEnv("SQLITE_PATH", "data/smartcoach.db"),
		DataDir:        getEnv("DATA_DIR", "data"),
		AuthServiceURL: getEnv("AUTH_SERVICE_URL", ""),
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) Validate() error {
	switch c.StorageBackend {
	case "file":
		if c.DataDir == "" {
			return errors.New("DATA_DIR is required when STORAGE_BACKEND=file")
		}
	case "postgres":
		if c.PostgresDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be one of: file, postgres, sqlite (got %q)", c.StorageBackend)
	}
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return errors.New("APP_ENV must be one of: development, staging, production")
	}
	if c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_RPS must not be negative")
	}
	if c.RateLimitRPS > 0 && c.RateLimitBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be at least 1 when rate limiting is enabled")
	}
	return nil
}

// IsProduction reports whether the service runs outside local development.
func (c *Config) IsProduction() bool {
	return c.Env == "staging" || c.Env == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return f, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}
