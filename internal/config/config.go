// Package config provides configuration for the llm service.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the llm service configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Key-attribute store
	StoreDriver string // "redis" or "sqlite"
	RedisURL    string
	SQLitePath  string

	// Generation runtime
	ModelDir        string
	ExecCandidates  []string
	GenerateTimeout time.Duration

	// Conversation history
	HistoryTTL            time.Duration
	KeepAllAssistantTurns bool

	// Auth
	SecretKey   string
	TokenExpiry time.Duration

	// Search enrichment
	SearchEnabled bool
	SearchURL     string
}

// defaultExecCandidates are the known llama.cpp install locations, checked in
// order.
var defaultExecCandidates = []string{
	"/llama.cpp/build/bin/llama-cli",
	"/llama.cpp/build/llama-cli",
	"/llama.cpp/build/bin/main",
	"/llama.cpp/build/main",
}

// Load loads configuration from environment variables.
func Load() *Config {
	cfg := &Config{
		HTTPPort:              getEnvInt("HTTP_PORT", 8000),
		StoreDriver:           getEnv("STORE_DRIVER", "redis"),
		RedisURL:              getEnv("REDIS_URL", "redis://redis:6379/0"),
		SQLitePath:            getEnv("SQLITE_PATH", "file:llm.db?cache=shared&mode=rwc"),
		ModelDir:              getEnv("MODEL_DIR", "/llama.cpp/models"),
		ExecCandidates:        getEnvList("LLAMA_EXEC_CANDIDATES", defaultExecCandidates),
		GenerateTimeout:       getEnvDuration("GENERATE_TIMEOUT_MS", 300_000*time.Millisecond),
		HistoryTTL:            getEnvDuration("HISTORY_TTL_MS", 3_600_000*time.Millisecond),
		KeepAllAssistantTurns: getEnvBool("KEEP_ALL_ASSISTANT_TURNS", false),
		SecretKey:             getEnv("SECRET_KEY", "c8f3e0e7f2c49aa647d944fa19b7a81e5fbd49e6c534a3a8c22ef13ccf7bd189"),
		TokenExpiry:           getEnvDuration("TOKEN_EXPIRY_MS", 3_600_000*time.Millisecond),
		SearchEnabled:         getEnvBool("SEARCH_ENABLED", true),
		SearchURL:             getEnv("SEARCH_URL", "https://api.duckduckgo.com/"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if boolVal, err := strconv.ParseBool(val); err == nil {
			return boolVal
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return time.Duration(intVal) * time.Millisecond
		}
	}
	return defaultVal
}

func getEnvList(key string, defaultVal []string) []string {
	if val := os.Getenv(key); val != "" {
		parts := strings.Split(val, ":")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultVal
}
