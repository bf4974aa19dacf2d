package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DB wraps the sql connection pool. SQLite is a single-writer store, so the
// pool is capped at one connection to avoid SQLITE_BUSY under load.
type DB struct {
	*sql.DB
}

// NewDB opens (or creates) the SQLite database at path.
func NewDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	slog.Debug("Database connection established", "path", path)

	return &DB{DB: db}, nil
}
