// Package config provides configuration management for the cinelens application.
// It handles loading and validation of configuration values from environment variables,
// with support for required variables, default values, and collective error reporting.
// A `.env` file is honoured in development (see main.go), while production sets
// the variables directly.
package config

import (
	"fmt"
	// `os` package provides operating system functionalities, like reading environment variables.
	"os"
	"strconv"
	"strings"
	"time"
)

// Supported JWT signing algorithms. Only the HMAC family is accepted since the
// key is a shared secret.
var supportedAlgorithms = map[string]struct{}{
	"HS256": {},
	"HS384": {},
	"HS512": {},
}

// DatabaseConfig holds the credential store connection settings.
type DatabaseConfig struct {
	URL      string // Connection string; its scheme selects the backend
	PoolSize int    // Max connections for the Postgres pool
}

// AuthConfig holds authentication-related configuration.
type AuthConfig struct {
	SecretKey           string        // Secret key for signing JWTs
	Algorithm           string        // JWT signing algorithm, e.g. HS256
	AccessTokenDuration time.Duration // Lifetime of access tokens
}

// CatalogConfig tells the loader where the CSV tables live.
type CatalogConfig struct {
	DataDir string
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port           string   // Port for the HTTP server
	AllowedOrigins []string // CORS origins
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string
	Format string
}

// AppConfig is the top-level configuration structure for the application.
type AppConfig struct {
	Database *DatabaseConfig
	Auth     *AuthConfig
	Catalog  *CatalogConfig
	Server   *ServerConfig
	Log      *LogConfig
}

// Helper function to get a required environment variable.
// Appends an error to the errors slice if the variable is not set or blank.
func getRequiredEnv(key string, errors *[]string) string {
	value, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(value) == "" {
		*errors = append(*errors, fmt.Sprintf("missing required environment variable: %s", key))
		return "" // Return empty string, error is collected
	}
	return value
}

// Helper function to get an optional environment variable with a default string value.
func getOptionalEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

// Helper function to get an optional environment variable parsed as an int.
// Uses defaultValue if not set or if parsing fails. Appends an error if parsing fails.
func getOptionalEnvInt(key string, defaultValue int, errors *[]string) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue
	}
	valueInt, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		*errors = append(*errors, fmt.Sprintf("invalid value for %s: expected integer, got '%s': %v", key, valueStr, err))
		return defaultValue // Return default, error is collected
	}
	return valueInt
}

// Helper function to get an optional comma separated list.
func getOptionalEnvList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}

// clampPoolSize keeps the pool size within 1..100.
func clampPoolSize(size int, errors *[]string) int {
	if size < 1 {
		*errors = append(*errors, fmt.Sprintf("DB_POOL_SIZE (%d) must be at least 1", size))
		return 1
	}
	if size > 100 {
		return 100
	}
	return size
}

// LoadConfig creates and returns an AppConfig by reading and validating environment variables.
// It collects all errors encountered during loading and returns a single error if any exist.
func LoadConfig() (*AppConfig, error) {
	// `errors` slice collects all validation/parsing errors during config loading.
	var errors []string

	// Database Configuration
	// MONGO_DETAILS is accepted for deployments that still use the old variable name.
	dbURL := getOptionalEnv("DATABASE_URL", os.Getenv("MONGO_DETAILS"))
	if strings.TrimSpace(dbURL) == "" {
		errors = append(errors, "missing required environment variable: DATABASE_URL")
	}
	poolSize := clampPoolSize(getOptionalEnvInt("DB_POOL_SIZE", 10, &errors), &errors)

	// Auth Configuration
	secretKey := getRequiredEnv("SECRET_KEY", &errors)
	algorithm := strings.ToUpper(getOptionalEnv("ALGORITHM", "HS256"))
	if _, ok := supportedAlgorithms[algorithm]; !ok {
		errors = append(errors, fmt.Sprintf("unsupported ALGORITHM %q: expected one of HS256, HS384, HS512", algorithm))
	}
	expireMinutes := getOptionalEnvInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30, &errors)
	if expireMinutes <= 0 {
		errors = append(errors, fmt.Sprintf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive, got %d", expireMinutes))
	}

	serverConfig := &ServerConfig{
		// Port is kept as a string because it's used directly in the listen address (e.g., ":8000").
		Port:           getOptionalEnv("PORT", "8000"),
		AllowedOrigins: getOptionalEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
	}

	logConfig := &LogConfig{
		Level:  getOptionalEnv("LOG_LEVEL", "info"),
		Format: getOptionalEnv("LOG_FORMAT", "json"),
	}

	// If any errors were collected during loading, return a single aggregated error message.
	if len(errors) > 0 {
		return nil, fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return &AppConfig{
		Database: &DatabaseConfig{
			URL:      dbURL,
			PoolSize: poolSize,
		},
		Auth: &AuthConfig{
			SecretKey:           secretKey,
			Algorithm:           algorithm,
			AccessTokenDuration: time.Duration(expireMinutes) * time.Minute,
		},
		Catalog: &CatalogConfig{
			DataDir: getOptionalEnv("DATA_DIR", "."),
		},
		Server: serverConfig,
		Log:    logConfig,
	}, nil
}
