package db

import (
	"database/sql"
	"embed"
	"fmt"
	stdfs "io/fs"
	"sort"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Open opens (or creates) a local SQLite database file and prepares it for use.
// Migrations are NOT applied here; call MigrateAll so the caller decides how to
// handle a failed migration (the server logs and keeps running).
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = "app.db"
	}
	d, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if err := d.Ping(); err != nil {
		_ = d.Close()
		return nil, err
	}
	// Pragmas for robustness
	// journal_mode may not be supported in some contexts (e.g., in-memory). Ignore errors.
	_, _ = d.Exec(`PRAGMA journal_mode=WAL`)
	if _, err := d.Exec(`PRAGMA busy_timeout=5000`); err != nil {
		_ = d.Close()
		return nil, err
	}
	if _, err := d.Exec(`PRAGMA foreign_keys=ON`); err != nil {
		_ = d.Close()
		return nil, err
	}
	// SQLite permits a single writer at a time. One pooled connection keeps
	// concurrent purchase transactions queued instead of failing with SQLITE_BUSY.
	d.SetMaxOpenConns(1)
	if err := ensureMigrationsTable(d); err != nil {
		_ = d.Close()
		return nil, err
	}
	return d, nil
}

//go:embed migrations/*.sql
var migrationsFS embed.FS

func ensureMigrationsTable(d *sql.DB) error {
	_, err := d.Exec(`CREATE TABLE IF NOT EXISTS __migrations (
        name TEXT PRIMARY KEY,
        applied_at DATETIME NOT NULL DEFAULT (CURRENT_TIMESTAMP)
    )`)
	return err
}

// migrationNames returns the embedded migration file names in lexical order,
// so numeric-prefixed files apply in the intended sequence.
func migrationNames() ([]string, error) {
	list, err := stdfs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		// if directory missing, just return empty set
		return nil, nil
	}
	names := make([]string, 0, len(list))
	for _, de := range list {
		if de.IsDir() || !strings.HasSuffix(de.Name(), ".sql") {
			continue
		}
		names = append(names, de.Name())
	}
	sort.Strings(names)
	return names, nil
}

func appliedNames(d *sql.DB) (map[string]bool, error) {
	if err := ensureMigrationsTable(d); err != nil {
		return nil, err
	}
	rows, err := d.Query(`SELECT name FROM __migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	got := map[string]bool{}
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		got[n] = true
	}
	return got, rows.Err()
}

// Pending returns the names of migrations that have not been applied yet,
// in the order they would be applied.
func Pending(d *sql.DB) ([]string, error) {
	names, err := migrationNames()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, nil
	}
	applied, err := appliedNames(d)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, n := range names {
		if !applied[n] {
			out = append(out, n)
		}
	}
	return out, nil
}

// Apply runs a single migration by name. The migration SQL and the insertion of
// its tracking row commit as one transaction; on failure both roll back and the
// migration stays unapplied.
func Apply(d *sql.DB, name string) error {
	sqlText, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return err
	}
	tx, err := d.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(string(sqlText)); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("migration %s failed: %w", name, err)
	}
	if _, err := tx.Exec(`INSERT INTO __migrations(name) VALUES(?)`, name); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// MigrateAll applies every pending migration in order and returns the names
// actually applied. Re-running after success is a no-op returning an empty list.
func MigrateAll(d *sql.DB) ([]string, error) {
	pending, err := Pending(d)
	if err != nil {
		return nil, err
	}
	applied := make([]string, 0, len(pending))
	for _, name := range pending {
		if err := Apply(d, name); err != nil {
			return applied, err
		}
		applied = append(applied, name)
	}
	return applied, nil
}
