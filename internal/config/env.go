package config

import (
	"log/slog"

	"github.com/joho/godotenv"
)

// loadEnvFile loads environment variables from the first of .env and
// .env.local that exists. Existing process variables are never overwritten.
func loadEnvFile() {
	for _, envPath := range []string{".env", ".env.local"} {
		if err := godotenv.Load(envPath); err == nil {
			slog.Debug("Loaded environment variables", slog.String("path", envPath))
			return
		}
	}
}
