// Package config provides configuration for the agentpress backend.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the backend configuration.
type Config struct {
	// Server settings
	HTTPPort    int
	CORSOrigins string

	// Database
	DatabaseURL string

	// Agent platform
	FoundryEndpoint     string
	FoundryAPIKey       string
	ModelDeploymentName string
	Mode                string

	// Pipeline
	MaxIterations int

	// Timeouts
	AgentTimeout time.Duration

	// Logging
	LogLevel string
}

// Load loads configuration from the environment. A .env file in the
// working directory is read first when present.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		HTTPPort:            getEnvInt("HTTP_PORT", 8080),
		CORSOrigins:         getEnv("CORS_ORIGINS", ""),
		DatabaseURL:         getEnv("DATABASE_URL", "file:agentpress.db?cache=shared&mode=rwc"),
		FoundryEndpoint:     getEnv("AI_FOUNDRY_ENDPOINT", ""),
		FoundryAPIKey:       getEnv("AI_FOUNDRY_API_KEY", ""),
		ModelDeploymentName: getEnv("MODEL_DEPLOYMENT_NAME", "gpt-4o-mini"),
		Mode:                getEnv("AGENTPRESS_MODE", ""),
		MaxIterations:       getEnvInt("MAX_ITERATIONS", 3),
		AgentTimeout:        time.Duration(getEnvInt("AGENT_TIMEOUT_MS", 300000)) * time.Millisecond,
		LogLevel:            getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

// Validate reports startup-time configuration errors. Missing cloud
// connection settings fail here, never inside a request.
func (c *Config) Validate() error {
	if c.Mode != "MOCK" && c.FoundryEndpoint == "" {
		return fmt.Errorf("AI_FOUNDRY_ENDPOINT is required (or set AGENTPRESS_MODE=MOCK)")
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("MAX_ITERATIONS must be at least 1")
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
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
