package main

import (
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"storefront-be/internal/logger"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// Migrator is the part of *migrate.Migrate the command drives.
type Migrator interface {
	Up() error
	Steps(n int) error
	Version() (version uint, dirty bool, err error)
}

func main() {
	_ = godotenv.Load()

	mode := flag.String("mode", "up", "migration mode: up, down or version")
	steps := flag.Int("steps", 1, "number of migrations to roll back in down mode")
	dir := flag.String("dir", "migrations", "directory holding the migration files")
	flag.Parse()

	logger.Init(os.Getenv("APP_ENV"))
	defer logger.Sync()
	log := logger.L()

	dbURL := os.Getenv("DB_URL")
	if dbURL == "" {
		log.Fatal("DB_URL not set in environment")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatal("failed to connect db", zap.Error(err))
	}
	defer db.Close()

	m, err := newMigrator(db, *dir)
	if err != nil {
		log.Fatal("failed to initialize migrator", zap.Error(err))
	}

	if err := run(m, *mode, *steps); err != nil {
		log.Fatal("migration failed", zap.String("mode", *mode), zap.Error(err))
	}
}

func newMigrator(db *sql.DB, dir string) (*migrate.Migrate, error) {
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to create migration driver: %w", err)
	}
	return migrate.NewWithDatabaseInstance("file://"+dir, "postgres", driver)
}

func run(m Migrator, mode string, steps int) error {
	log := logger.L().With(zap.String("mode", mode))

	switch mode {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("failed to apply migrations: %w", err)
		}
	case "down":
		if steps < 1 {
			return fmt.Errorf("steps must be at least 1, got %d", steps)
		}
		if err := m.Steps(-steps); err != nil {
			if errors.Is(err, migrate.ErrNilVersion) {
				log.Info("no migrations to roll back")
				return nil
			}
			return fmt.Errorf("failed to roll back: %w", err)
		}
	case "version":
	default:
		return fmt.Errorf("unknown mode: %s (use 'up', 'down' or 'version')", mode)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("database has no migrations applied")
		return nil
	case err != nil:
		return fmt.Errorf("failed to read version: %w", err)
	case dirty:
		return fmt.Errorf("database is dirty at version %d", version)
	}
	log.Info("migrations done", zap.Uint("version", version))
	return nil
}
