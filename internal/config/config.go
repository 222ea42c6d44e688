package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds every option the engine recognizes. The locale hint only
// affects how the UI displays currency separators; the engine never parses
// localized numbers back.
type Config struct {
	DataDir            string
	DBName             string
	Port               string
	LocaleHint         string
	AdminUser          string
	AdminPassword      string
	EnforceCreditLimit bool
	AllowedOrigins     []string
}

// Load reads configs/.env when present and falls back to defaults.
func Load() *Config {
	_ = godotenv.Load("configs/.env")

	return &Config{
		DataDir:            getEnv("DATA_DIR", "data"),
		DBName:             getEnv("DB_NAME", "deli.db"),
		Port:               getEnv("PORT", "8080"),
		LocaleHint:         getEnv("LOCALE_HINT", "es-AR"),
		AdminUser:          getEnv("ADMIN_USER", "admin"),
		AdminPassword:      getEnv("ADMIN_PASSWORD", "admin"),
		EnforceCreditLimit: getEnvBool("ENFORCE_CREDIT_LIMIT", false),
		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
	}
}

// DBPath is the location of the embedded store file.
func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, c.DBName)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}
