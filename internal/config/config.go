package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Upstream
	HeliusAPIKey  string
	HeliusBaseURL string
	RPCURL        string
	RPCWSURL      string

	// Stores
	PostgresDSN string
	RedisAddr   string
	RedisPass   string
	CacheTTL    time.Duration

	// Allow-list sources (local path or http(s) URL)
	DegenBonusCSV string
	OGListCSV     string
	RoleHolderCSV string

	// Fetcher
	MaxPages    int
	MaxAttempts int

	// Server
	Port int
}

func Load() *Config {
	return &Config{
		HeliusAPIKey:  getEnv("HELIUS_API_KEY", ""),
		HeliusBaseURL: strings.TrimSuffix(getEnv("HELIUS_BASE_URL", "https://api.helius.xyz"), "/"),
		RPCURL:        getEnv("RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCWSURL:      getEnv("RPC_WS_URL", ""),

		PostgresDSN: getEnv("POSTGRES_DSN", ""),
		RedisAddr:   getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPass:   getEnv("REDIS_PASSWORD", ""),
		CacheTTL:    getEnvDuration("CACHE_TTL", 24*time.Hour),

		DegenBonusCSV: getEnv("DEGEN_BONUS_CSV", ""),
		OGListCSV:     getEnv("OG_LIST_CSV", ""),
		RoleHolderCSV: getEnv("ROLE_HOLDER_CSV", ""),

		MaxPages:    getEnvInt("FETCH_MAX_PAGES", 10),
		MaxAttempts: getEnvInt("FETCH_MAX_ATTEMPTS", 5),

		Port: getEnvInt("PORT", 5000),
	}
}

// Validate checks the settings the process cannot run without.
func (c *Config) Validate() error {
	if c.HeliusAPIKey == "" {
		return errors.New("missing HELIUS_API_KEY in environment")
	}
	if c.PostgresDSN == "" {
		return errors.New("missing POSTGRES_DSN in environment")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
