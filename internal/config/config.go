package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Markets  MarketConfig
	Chain    ChainConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port string
}

// AppConfig holds application-specific settings
type AppConfig struct {
	JWTSecret string
}

// MarketConfig holds market-economics settings
type MarketConfig struct {
	// PoolSplitYes is the fraction of the initial pool seeded on the yes
	// side at market creation (the rest seeds no). Must be in (0,1).
	PoolSplitYes decimal.Decimal
	// MinInitialPool is the smallest seed liquidity a market may open with.
	MinInitialPool decimal.Decimal
	// MinBet is the smallest accepted bet amount.
	MinBet decimal.Decimal
	// AllowEarlyResolution permits resolving straight from active, skipping
	// the ended state. Off by default.
	AllowEarlyResolution bool
	// LockWait bounds how long a bet or resolution waits for the per-market
	// lock before failing with a busy error.
	LockWait time.Duration
	// CloseInterval is how often the background job scans for markets whose
	// end date has passed.
	CloseInterval time.Duration
}

// ChainConfig holds on-chain mirroring settings
type ChainConfig struct {
	Enabled          bool
	Network          string
	ServerPrivateKey string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	poolSplit, err := decimal.NewFromString(getEnv("POOL_SPLIT_YES", "0.5"))
	if err != nil {
		return nil, fmt.Errorf("invalid POOL_SPLIT_YES: %w", err)
	}
	if poolSplit.LessThanOrEqual(decimal.Zero) || poolSplit.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, fmt.Errorf("POOL_SPLIT_YES must be between 0 and 1 exclusive, got %s", poolSplit)
	}

	minInitialPool, err := decimal.NewFromString(getEnv("MIN_INITIAL_POOL", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_INITIAL_POOL: %w", err)
	}

	minBet, err := decimal.NewFromString(getEnv("MIN_BET", "1"))
	if err != nil {
		return nil, fmt.Errorf("invalid MIN_BET: %w", err)
	}

	lockWait, err := time.ParseDuration(getEnv("MARKET_LOCK_WAIT", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_LOCK_WAIT: %w", err)
	}

	closeInterval, err := time.ParseDuration(getEnv("MARKET_CLOSE_INTERVAL", "1m"))
	if err != nil {
		return nil, fmt.Errorf("invalid MARKET_CLOSE_INTERVAL: %w", err)
	}

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "trendmarket"),
		},
		Server: ServerConfig{
			Port: getEnv("SERVER_PORT", "8080"),
		},
		App: AppConfig{
			JWTSecret: getEnv("JWT_SECRET", ""),
		},
		Markets: MarketConfig{
			PoolSplitYes:         poolSplit,
			MinInitialPool:       minInitialPool,
			MinBet:               minBet,
			AllowEarlyResolution: getEnvBool("ALLOW_EARLY_RESOLUTION", false),
			LockWait:             lockWait,
			CloseInterval:        closeInterval,
		},
		Chain: ChainConfig{
			Enabled:          getEnvBool("CHAIN_ENABLED", false),
			Network:          getEnv("CHAIN_NETWORK", "devnet"),
			ServerPrivateKey: getEnv("CHAIN_SERVER_PRIVATE_KEY", ""),
		},
	}

	// Validate required fields
	if config.App.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	if config.Chain.Enabled && config.Chain.ServerPrivateKey == "" {
		return nil, fmt.Errorf("CHAIN_SERVER_PRIVATE_KEY is required when CHAIN_ENABLED=true")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvBool gets a boolean environment variable with a fallback default
func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}
