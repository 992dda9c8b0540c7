package store

import (
	"database/sql"
	_ "embed"
	"fmt"
	"net/url"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// connOptions are go-sqlite3 DSN parameters applied to each connection.
var connOptions = url.Values{
	"_journal_mode": {"WAL"},
	"_synchronous":  {"NORMAL"},
	"_busy_timeout": {"5000"},
	"_foreign_keys": {"on"},
}

// Store records harness reports in a SQLite database.
type Store struct {
	db *sql.DB
}

// Open opens the history database at path, creating the file and its
// tables on first use.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("open history: path is required")
	}

	db, err := sql.Open("sqlite3", path+"?"+connOptions.Encode())
	if err != nil {
		return nil, fmt.Errorf("open history %s: %w", path, err)
	}
	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("open history %s: create tables: %w", path, err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}
