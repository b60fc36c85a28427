// Package migrations embeds the schema and dev seed SQL and applies them
// with golang-migrate. Both the migrator binary and the test database
// helper go through Apply, so tests always run against the exact schema
// production gets.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed schema/*.sql
var schemaFS embed.FS

//go:embed seed/*.sql
var seedFS embed.FS

// Apply runs the schema migrations against db. With seed set it also
// applies the dev seed data on top. The two sets track their versions in
// separate tables, so seeding never confuses the schema version.
func Apply(db *sql.DB, seed bool) error {
	err := run(db, schemaFS, "schema", "schema_migrations")
	if err != nil {
		return fmt.Errorf("schema migrations: %w", err)
	}

	if seed {
		err = run(db, seedFS, "seed", "seed_migrations")
		if err != nil {
			return fmt.Errorf("seed migrations: %w", err)
		}
	}

	return nil
}

func run(db *sql.DB, fsys embed.FS, dir, table string) error {
	driver, err := postgres.WithInstance(db, &postgres.Config{MigrationsTable: table})
	if err != nil {
		return fmt.Errorf("init postgres driver: %w", err)
	}
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return fmt.Errorf("migrate instance: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("m.Up: %w", err)
	}

	return nil
}
