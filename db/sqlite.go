package db

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

var ErrNotFound = errors.New("record not found")

// ConnectToSQLite initializes and returns a SQLite connection
func ConnectToSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Println("Connected to SQLite database")
	return db, nil
}

// InitializeSchema creates all the necessary tables if they don't exist
func InitializeSchema(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS locale_cache (
		id TEXT PRIMARY KEY,
		key TEXT NOT NULL UNIQUE,
		country TEXT NOT NULL,
		country_code TEXT NOT NULL,
		region TEXT NOT NULL,
		city TEXT NOT NULL,
		timezone TEXT NOT NULL,
		locale TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		expires_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create locale_cache table: %w", err)
	}

	_, err = db.Exec(`CREATE INDEX IF NOT EXISTS idx_locale_cache_expires ON locale_cache(expires_at)`)
	if err != nil {
		return fmt.Errorf("failed to create locale_cache index: %w", err)
	}

	return nil
}
