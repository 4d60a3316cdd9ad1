package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/Sign-up-admin/safe-room-sub007/internal/logging"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
)

const usage = "usage: migrate [up|down|steps N|version]"

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found")
	}
	logging.SetupGlobalHandler("gym-console-migrate", false)

	if err := run(os.Args[1:]); err != nil {
		slog.Error("Migration failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		return errors.New("DB_URL environment variable is required")
	}

	migrationsPath, err := findMigrationsDir()
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+migrationsPath, dbURL)
	if err != nil {
		return fmt.Errorf("open migrations: %w", err)
	}
	defer m.Close()

	cmd := "up"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "up":
		err = m.Up()
	case "down":
		err = m.Down()
	case "steps":
		if len(args) < 2 {
			return errors.New(usage)
		}
		n, convErr := strconv.Atoi(args[1])
		if convErr != nil {
			return fmt.Errorf("steps must be an integer: %w", convErr)
		}
		err = m.Steps(n)
	case "version":
		version, dirty, verErr := m.Version()
		if errors.Is(verErr, migrate.ErrNilVersion) {
			slog.Info("No migrations applied")
			return nil
		}
		if verErr != nil {
			return verErr
		}
		slog.Info("Current schema version", "version", version, "dirty", dirty)
		return nil
	default:
		return errors.New(usage)
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	slog.Info("Migration successful", "command", cmd, "path", migrationsPath)
	return nil
}

// findMigrationsDir looks for a migrations directory above the working
// directory, then next to the executable.
func findMigrationsDir() (string, error) {
	var candidates []string
	if cwd, err := os.Getwd(); err == nil {
		current := cwd
		for i := 0; i < 6; i++ {
			candidates = append(candidates, filepath.Join(current, "migrations"))
			parent := filepath.Dir(current)
			if parent == current {
				break
			}
			current = parent
		}
	}
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "migrations"),
			filepath.Join(exeDir, "..", "migrations"),
		)
	}

	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return filepath.Abs(candidate)
		}
	}
	return "", errors.New("migrations directory not found")
}
