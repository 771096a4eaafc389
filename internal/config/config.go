package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	LogLevel string
	HTTPAddr string

	DBType     string
	SQLitePath string
	DBDSN      string

	JWTSecret        string
	JWTExpiresIn     time.Duration
	JWTRefreshExpiry time.Duration
	BcryptCost       int

	ClientURL       string
	RateLimitWindow time.Duration
	RateLimitMax    int

	LLMProvider   string
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string
	GeminiKey     string
	GeminiModel   string
	LLMTimeout    time.Duration

	InsightCooldown   time.Duration
	InsightTTL        time.Duration
	InsightWindowDays int
	InsightCron       string
	SchedulerEnabled  bool
}

const devJWTSecret = "dev-only-insecure-jwt-secret"

var (
	cfg  *Config
	once sync.Once
)

// Load reads the process configuration once. It panics on invalid input.
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
	var errs []error
	c := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		HTTPAddr: getEnv("HTTP_ADDR", ":3001"),

		DBType:     getEnv("STORAGE_BACKEND", "sqlite"),
		SQLitePath: getEnv("SQLITE_PATH", "data/sleepwell.db"),
		DBDSN:      getEnv("POSTGRES_DSN", ""),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTExpiresIn:     getDuration("JWT_EXPIRES_IN", 15*time.Minute, &errs),
		JWTRefreshExpiry: getDuration("JWT_REFRESH_EXPIRES_IN", 7*24*time.Hour, &errs),
		BcryptCost:       getInt("BCRYPT_COST", 12, &errs),

		ClientURL:       getEnv("CLIENT_URL", "http://localhost:5173"),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", 15*time.Minute, &errs),
		RateLimitMax:    getInt("RATE_LIMIT_MAX_REQUESTS", 100, &errs),

		LLMProvider:   strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		GeminiKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:   getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		LLMTimeout:    getDuration("LLM_TIMEOUT", 30*time.Second, &errs),

		InsightCooldown:   getDuration("INSIGHT_REFRESH_COOLDOWN", time.Hour, &errs),
		InsightTTL:        getDuration("INSIGHT_TTL", 24*time.Hour, &errs),
		InsightWindowDays: getInt("INSIGHT_WINDOW_DAYS", 30, &errs),
		InsightCron:       getEnv("INSIGHT_GENERATION_CRON", "0 6 * * *"),
		SchedulerEnabled:  getBool("INSIGHT_SCHEDULER_ENABLED", true, &errs),
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	if c.JWTSecret == "" && c.IsDevelopment() {
		c.JWTSecret = devJWTSecret
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "test"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Validate() error {
	switch c.Env {
	case "development", "staging", "production", "test":
	default:
		return errors.New("APP_ENV must be one of: development, staging, production, test")
	}
	switch c.DBType {
	case "sqlite":
		if c.SQLitePath == "" {
			return errors.New("SQLITE_PATH is required when STORAGE_BACKEND=sqlite")
		}
	case "postgres":
		if c.DBDSN == "" {
			return errors.New("POSTGRES_DSN is required when STORAGE_BACKEND=postgres")
		}
	default:
		return errors.New("STORAGE_BACKEND must be one of: sqlite, postgres")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.LLMProvider != "openai" && c.LLMProvider != "gemini" {
		return errors.New("LLM_PROVIDER must be one of: openai, gemini")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return errors.New("BCRYPT_COST must be between 4 and 31")
	}
	if err := validateOrigin(c.ClientURL); err != nil {
		return err
	}
	if c.RateLimitMax < 1 || c.RateLimitWindow <= 0 {
		return errors.New("RATE_LIMIT_MAX_REQUESTS and RATE_LIMIT_WINDOW must be positive")
	}
	if c.InsightWindowDays < 1 {
		return errors.New("INSIGHT_WINDOW_DAYS must be positive")
	}
	if c.InsightTTL <= 0 {
		return errors.New("INSIGHT_TTL must be positive")
	}
	return nil
}

// validateOrigin requires an absolute http(s) URL, the only form the CORS
// middleware accepts as an allowed origin.
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CLIENT_URL must be an http(s) origin such as http://localhost:5173, got %q", origin)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration, errs *[]error) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return d
}

func getInt(key string, fallback int, errs *[]error) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return n
}

func getBool(key string, fallback bool, errs *[]error) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("%s: %w", key, err))
		return fallback
	}
	return b
}
