// Package teams stores the team database the pipeline uses for goal
// attribution.
//
// Each team is identified by a league and a key (for example "epl" and
// "arsenal") and carries a display name plus the name variations an
// overlay may show ("Man Utd", "Manchester United"). The database is a
// SQLite file accessed through modernc.org/sqlite, so no cgo toolchain is
// needed for it.
package teams

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed team database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path and runs migrations. The path
// ":memory:" gives a private in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database location.
func (s *Store) Path() string { return s.path }
