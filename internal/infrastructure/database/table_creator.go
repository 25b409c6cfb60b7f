// Package database provides the remote store schema
package database

import (
	"database/sql"
	"fmt"

	"github.com/rajcreationz/livesite/internal/domain/errs"
)

// TableCreator handles the creation of the remote store schema.
type TableCreator struct{}

// NewTableCreator creates a new TableCreator.
func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and indexes.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}

	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// VerifySchema checks that every required table exists. A missing table is
// reported as a ConfigurationError naming the fix.
func (tc *TableCreator) VerifySchema(db *sql.DB) error {
	for _, name := range RequiredTables {
		var found string
		err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, name).Scan(&found)
		if err == sql.ErrNoRows {
			return &errs.ConfigurationError{
				Problem: fmt.Sprintf("Table %q does not exist", name),
				Hint:    "Start the server with AUTO_MIGRATE=true or run the schema statements against the database",
			}
		}
		if err != nil {
			return fmt.Errorf("failed to check table %s: %w", name, err)
		}
	}
	return nil
}

// RequiredTables lists the tables the site reads and writes.
var RequiredTables = []string{"thumbnails", "settings", "schedule_events", "photos", "videos", "events", "aai_tokens_used"}

var tables = []string{
	`CREATE TABLE IF NOT EXISTS thumbnails (id TEXT PRIMARY KEY, type TEXT NOT NULL UNIQUE, file_name TEXT NOT NULL, image_url TEXT NOT NULL, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS settings (id TEXT PRIMARY KEY, setting_key TEXT NOT NULL UNIQUE, setting_value TEXT NOT NULL, setting_type TEXT NOT NULL DEFAULT 'text', description TEXT, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS schedule_events (id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT, event_date TEXT NOT NULL, start_time TEXT NOT NULL, end_time TEXT NOT NULL, timezone TEXT NOT NULL DEFAULT 'IST (UTC+5:30)', category TEXT NOT NULL DEFAULT 'Regular Show', status TEXT NOT NULL DEFAULT 'upcoming', is_recurring BOOLEAN NOT NULL DEFAULT 0, recurring_pattern TEXT, location TEXT, video_url TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS photos (id TEXT PRIMARY KEY, file_name TEXT NOT NULL, url TEXT NOT NULL, description TEXT, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS videos (id TEXT PRIMARY KEY, title TEXT NOT NULL, thumbnail_url TEXT, duration TEXT, video_date TEXT, views TEXT, embed_link TEXT, display_order INTEGER NOT NULL DEFAULT 0, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS events (id TEXT PRIMARY KEY, title TEXT NOT NULL, description TEXT, event_date TEXT, event_time TEXT, thumbnail_url TEXT, embed_code TEXT, is_live BOOLEAN NOT NULL DEFAULT 0, updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
	`CREATE TABLE IF NOT EXISTS aai_tokens_used (id INTEGER PRIMARY KEY, timestamp DATETIME NOT NULL, tokens_used INTEGER NOT NULL)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_schedule_events_date ON schedule_events(event_date)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_events_status ON schedule_events(status)`,
	`CREATE INDEX IF NOT EXISTS idx_schedule_events_category ON schedule_events(category)`,
	`CREATE INDEX IF NOT EXISTS idx_photos_created_at ON photos(created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_videos_order ON videos(display_order, created_at)`,
	`CREATE INDEX IF NOT EXISTS idx_aai_tokens_used_timestamp ON aai_tokens_used(timestamp)`,
}
