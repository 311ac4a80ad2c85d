package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: empty URL disables the snapshot store)
	Database DatabaseConfig

	// Redis (optional: shared rate limit + response cache)
	Redis RedisConfig

	// Upstream market data
	AlphaVantage AlphaVantageConfig

	// Scan defaults
	Scan ScanConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a database URL was configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// AlphaVantageConfig holds Alpha Vantage API configuration
type AlphaVantageConfig struct {
	APIKey            string
	BaseURL           string
	RequestsPerMinute int           // free tier: 5/min
	MinDelay          time.Duration // enforced gap between upstream calls
	Timeout           time.Duration
	PassthroughWait   time.Duration // max wait for a rate slot on passthrough endpoints
	Enrich            bool          // fetch RSI/MACD/EMA/news per symbol (5 extra calls)
}

// enrichMinRPM is the budget at which enrichment is on by default
const enrichMinRPM = 30

// ScanConfig holds defaults for a ranking pass
type ScanConfig struct {
	Symbols         []string
	MaxSymbols      int
	Capital         float64
	Limit           int
	MinScore        float64
	RiskProfile     string
	ProfileFile     string // optional YAML with weights / volatility tables
	Workers         int
	CollectSchedule string // cron expression (with seconds)
	DemoMode        bool   // rank built-in fixtures when live fetch yields nothing
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "3000"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:            getEnv("ALPHA_VANTAGE_API_KEY", ""),
			BaseURL:           getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			RequestsPerMinute: getEnvAsInt("ALPHA_VANTAGE_RPM", 5),
			MinDelay:          getEnvAsDuration("ALPHA_VANTAGE_DELAY", "12s"),
			Timeout:           getEnvAsDuration("ALPHA_VANTAGE_TIMEOUT", "30s"),
			PassthroughWait:   getEnvAsDuration("ALPHA_VANTAGE_PASSTHROUGH_WAIT", "2s"),
		},

		Scan: ScanConfig{
			Symbols:         getEnvAsList("SCAN_SYMBOLS", []string{"AAPL", "MSFT", "GOOGL", "TSLA", "NVDA", "AMD"}),
			MaxSymbols:      getEnvAsInt("SCAN_MAX_SYMBOLS", 6),
			Capital:         getEnvAsFloat("SCAN_CAPITAL", 10000),
			Limit:           getEnvAsInt("SCAN_LIMIT", 5),
			MinScore:        getEnvAsFloat("SCAN_MIN_SCORE", 0),
			RiskProfile:     getEnv("SCAN_RISK_PROFILE", "moderate"),
			ProfileFile:     getEnv("SCAN_PROFILE_FILE", ""),
			Workers:         getEnvAsInt("SCAN_WORKERS", 2),
			CollectSchedule: getEnv("COLLECT_SCHEDULE", "0 30 16 * * 1-5"),
			DemoMode:        getEnvAsBool("DEMO_MODE", true),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	cfg.AlphaVantage.Enrich = getEnvAsBool("ALPHA_VANTAGE_ENRICH", cfg.AlphaVantage.RequestsPerMinute >= enrichMinRPM)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	// Live data is mandatory outside development unless demo mode covers it
	if c.AlphaVantage.APIKey == "" && c.Env == "production" && !c.Scan.DemoMode {
		return fmt.Errorf("ALPHA_VANTAGE_API_KEY is required in production without DEMO_MODE")
	}

	if c.AlphaVantage.RequestsPerMinute <= 0 {
		return fmt.Errorf("ALPHA_VANTAGE_RPM must be > 0")
	}

	if c.Scan.Capital <= 0 {
		return fmt.Errorf("SCAN_CAPITAL must be > 0")
	}

	if c.Scan.MaxSymbols <= 0 {
		return fmt.Errorf("SCAN_MAX_SYMBOLS must be > 0")
	}

	if c.Scan.Workers <= 0 {
		c.Scan.Workers = 1
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

// getEnvAsList splits a comma separated value, dropping blanks
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	items := make([]string, 0)
	for _, part := range strings.Split(valueStr, ",") {
		part = strings.ToUpper(strings.TrimSpace(part))
		if part != "" {
			items = append(items, part)
		}
	}

	if len(items) == 0 {
		return defaultValue
	}
	return items
}
