// Package db prepares the Postgres schema behind the dispatch audit trail.
// The scheduling pathways themselves never touch Postgres; only the audit
// log lives there, so the whole migration surface is the handful of
// dispatch_* tables under migrations/.
package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const trackingTable = `
	CREATE TABLE IF NOT EXISTS dispatch_schema_migrations (
		version VARCHAR(255) PRIMARY KEY,
		applied_at TIMESTAMP NOT NULL DEFAULT NOW()
	);
`

// Migrate applies every pending *.up.sql file in dir, oldest first. Each
// file runs inside its own transaction together with the row that records
// it in dispatch_schema_migrations, so a rerun is a no-op and a failure
// leaves neither the schema change nor its record behind.
func Migrate(database *sql.DB, dir string) error {
	if _, err := database.Exec(trackingTable); err != nil {
		return fmt.Errorf("db: create tracking table: %w", err)
	}

	todo, err := pending(database, dir)
	if err != nil {
		return err
	}
	if len(todo) == 0 {
		log.Printf("db: dispatch-audit schema is up to date")
		return nil
	}

	for _, name := range todo {
		script, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			return fmt.Errorf("db: read migration %s: %w", name, err)
		}
		log.Printf("db: applying dispatch-audit migration %s", name)
		if err := applyOne(database, name, string(script)); err != nil {
			return fmt.Errorf("db: apply migration %s: %w", name, err)
		}
	}

	log.Printf("db: applied %d dispatch-audit migration(s)", len(todo))
	return nil
}

// pending lists the *.up.sql files in dir that dispatch_schema_migrations
// doesn't know about yet, sorted so the numeric filename prefixes run in
// order.
func pending(database *sql.DB, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("db: read migrations dir %s: %w", dir, err)
	}

	rows, err := database.Query("SELECT version FROM dispatch_schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("db: list applied migrations: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var todo []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".up.sql") || applied[name] {
			continue
		}
		todo = append(todo, name)
	}
	sort.Strings(todo)
	return todo, nil
}

func applyOne(database *sql.DB, name, script string) error {
	tx, err := database.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO dispatch_schema_migrations (version) VALUES ($1)", name); err != nil {
		return err
	}
	return tx.Commit()
}

// MigrateCommand is the `dockplanner migrate` entry point: it opens its own
// connection, runs Migrate, and closes — so the one-shot CLI mode doesn't
// drag the server's pooled connection settings along.
func MigrateCommand(databaseURL, dir string) error {
	database, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return fmt.Errorf("db: open: %w", err)
	}
	defer database.Close()

	if err := database.Ping(); err != nil {
		return fmt.Errorf("db: ping: %w", err)
	}
	return Migrate(database, dir)
}
