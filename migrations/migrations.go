// Package migrations holds the watch database schema as goose SQL
// migrations compiled into the binary, so a fresh deployment needs
// nothing beyond the executable and a writable path.
package migrations

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// FS carries the numbered migration files. The migrate command reads
// the same FS, keeping the CLI and the in-process path on one schema.
//
//go:embed *.sql
var FS embed.FS

// Run brings db up to the latest schema version. Called on every
// store open; applying an already-current schema is a no-op.
func Run(db *sql.DB) error {
	goose.SetBaseFS(FS)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	return nil
}
