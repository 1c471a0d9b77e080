package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Firebase  FirebaseConfig
	Ledger    LedgerConfig
	Fees      FeeConfig
	Outbox    OutboxConfig
	RateLimit RateLimitConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type FirebaseConfig struct {
	ServiceAccountPath string
}

// LedgerConfig holds the wallet ledger knobs shared by the stake and transfer services.
type LedgerConfig struct {
	Currency          string
	PlatformFeeUserID string
	// Stakes at or above this amount trigger the referrer's setup-fee waiver.
	FeeWaiverThreshold string
	// Upper bound for fail-open read paths (stake list, ledger history, earnings).
	ReadTimeout time.Duration
}

type FeeConfig struct {
	RefreshInterval time.Duration
}

type OutboxConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
}

type RateLimitConfig struct {
	// Global per-IP limit.
	RequestsPerSecond float64
	Burst             int
	// Per-user limit on stake/transfer endpoints.
	MutationsPerSecond float64
	MutationBurst      int
}

// Load reads configuration from the environment, loading a .env file first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8099"),
			Env:            getEnv("APP_ENV", "development"),
			ReadTimeout:    getEnvAsDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:   getEnvAsDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			AllowedOrigins: getEnvAsSlice("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DB_DSN", "tokenvault:tokenvault@tcp(localhost:3306)/tokenvault?charset=utf8mb4&parseTime=True&loc=UTC"),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getEnvAsDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "tokenvault"),
		},
		Firebase: FirebaseConfig{
			ServiceAccountPath: getEnv("FIREBASE_SERVICE_ACCOUNT_PATH", ""),
		},
		Ledger: LedgerConfig{
			Currency:           getEnv("LEDGER_CURRENCY", "TKN"),
			PlatformFeeUserID:  getEnv("PLATFORM_FEE_USER_ID", "platform-fee-wallet"),
			FeeWaiverThreshold: getEnv("FEE_WAIVER_THRESHOLD", "20"),
			ReadTimeout:        getEnvAsDuration("LEDGER_READ_TIMEOUT", 3*time.Second),
		},
		Fees: FeeConfig{
			RefreshInterval: getEnvAsDuration("FEE_REFRESH_INTERVAL", time.Minute),
		},
		Outbox: OutboxConfig{
			PollInterval: getEnvAsDuration("OUTBOX_POLL_INTERVAL", 2*time.Second),
			BatchSize:    getEnvAsInt("OUTBOX_BATCH_SIZE", 50),
			MaxAttempts:  getEnvAsInt("OUTBOX_MAX_ATTEMPTS", 8),
			BaseBackoff:  getEnvAsDuration("OUTBOX_BASE_BACKOFF", 5*time.Second),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond:  getEnvAsFloat("RATE_LIMIT_RPS", 5),
			Burst:              getEnvAsInt("RATE_LIMIT_BURST", 10),
			MutationsPerSecond: getEnvAsFloat("RATE_LIMIT_MUTATIONS_RPS", 1),
			MutationBurst:      getEnvAsInt("RATE_LIMIT_MUTATIONS_BURST", 3),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if val, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if val, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if val, err := time.ParseDuration(getEnv(key, "")); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsSlice(key string, defaultValue []string) []string {
	val := getEnv(key, "")
	if val == "" {
		return defaultValue
	}
	parts := strings.Split(val, ",")
	for i, part := range parts {
		parts[i] = strings.TrimSpace(part)
	}
	return parts
}
