package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/sadopc/streakr/internal/store"
)

// AppConfig holds everything main needs to start the app.
type AppConfig struct {
	DBPath    string
	LogFile   string
	ExportDir string
	Debug     bool
}

// Load reads an optional .env file, then the STREAKR_* environment variables,
// falling back to paths under the user's config and home directories.
func Load(envFiles ...string) (AppConfig, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return AppConfig{}, fmt.Errorf("load env file: %w", err)
	}

	dbPath := strings.TrimSpace(os.Getenv("STREAKR_DB_PATH"))
	if dbPath == "" {
		p, err := store.DefaultDBPath()
		if err != nil {
			return AppConfig{}, fmt.Errorf("default db path: %w", err)
		}
		dbPath = p
	}

	logFile := strings.TrimSpace(os.Getenv("STREAKR_LOG_FILE"))
	if logFile == "" {
		logFile = filepath.Join(filepath.Dir(dbPath), "streakr.log")
	}

	exportDir := strings.TrimSpace(os.Getenv("STREAKR_EXPORT_DIR"))
	if exportDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Printf("config: no home directory, exporting to working dir: %v", err)
			home = "."
		}
		exportDir = home
	}

	return AppConfig{
		DBPath:    dbPath,
		LogFile:   logFile,
		ExportDir: exportDir,
		Debug:     parseBool(os.Getenv("STREAKR_DEBUG")),
	}, nil
}

func parseBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
