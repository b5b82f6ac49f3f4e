package config

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"

	"git.home.luguber.info/inful/docsite/internal/logfields"
)

var envFiles = []string{".env", ".env.local"}

// loadEnvFiles loads the existing env files in order. Variables already set
// in the process environment win.
func loadEnvFiles() {
	for _, name := range envFiles {
		if _, err := os.Stat(name); err != nil {
			continue
		}
		if err := godotenv.Load(name); err != nil {
			slog.Warn("Failed to load env file", logfields.File(name), logfields.Error(err))
			continue
		}
		slog.Debug("Loaded environment variables", logfields.File(name))
	}
}
