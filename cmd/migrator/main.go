package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/fairhouse/casino-core/internal/config"
	"github.com/fairhouse/casino-core/internal/infra/logging"
	"github.com/fairhouse/casino-core/internal/migrations"
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error running migrator: %v", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadMigrator()
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupJSON(cfg.LogLevel)

	db, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	seed := cfg.AppEnv == "DEV"

	err = migrations.Apply(db, seed)
	if err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	slog.Info("migrations applied", "seeded", seed)

	return nil
}
