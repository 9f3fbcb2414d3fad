package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// InitDB initializes the database connection and creates tables
func InitDB(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Create tables
	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	log.Println("Database initialized successfully")
	return db, nil
}

func createTables(db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		username TEXT UNIQUE NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS manga (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		title TEXT NOT NULL,
		title_key TEXT UNIQUE NOT NULL,
		summary TEXT NOT NULL DEFAULT '',
		cover_url TEXT NOT NULL DEFAULT '',
		rating TEXT NOT NULL DEFAULT '',
		rank TEXT NOT NULL DEFAULT '',
		alternative TEXT NOT NULL DEFAULT '',
		genres TEXT NOT NULL DEFAULT '[]',
		type TEXT NOT NULL DEFAULT '',
		status TEXT NOT NULL DEFAULT '',
		chapter_count INTEGER NOT NULL DEFAULT 0,
		availability INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS chapters (
		manga_id INTEGER NOT NULL,
		chapter_no TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		visible INTEGER NOT NULL DEFAULT 0,
		images TEXT NOT NULL DEFAULT '[]',
		position INTEGER NOT NULL,
		PRIMARY KEY (manga_id, chapter_no),
		FOREIGN KEY (manga_id) REFERENCES manga(id) ON DELETE CASCADE
	);

	CREATE INDEX IF NOT EXISTS idx_manga_availability ON manga(availability);
	CREATE INDEX IF NOT EXISTS idx_chapters_manga ON chapters(manga_id, position);
	`

	_, err := db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}
