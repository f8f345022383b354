package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmoiron/sqlx"
)

// schemaVersion is recorded in schema_migrations after a successful migrateDB.
const schemaVersion = 2

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
        id TEXT PRIMARY KEY NOT NULL,
        email TEXT NOT NULL UNIQUE COLLATE NOCASE,
        password_hash TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL
    );`,
	`CREATE TABLE IF NOT EXISTS songs (
        id TEXT PRIMARY KEY NOT NULL,
        title TEXT NOT NULL,
        artist TEXT NOT NULL,
        audio_path TEXT NOT NULL,
        cover_path TEXT NOT NULL,
        user_id TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
    );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_songs_title_artist ON songs (title COLLATE NOCASE, artist COLLATE NOCASE);`,
	`CREATE INDEX IF NOT EXISTS idx_songs_user ON songs (user_id);`,
	`CREATE TABLE IF NOT EXISTS playlists (
        id TEXT PRIMARY KEY NOT NULL,
        name TEXT NOT NULL,
        cover_path TEXT NOT NULL,
        user_id TEXT NOT NULL,
        created_at DATETIME NOT NULL,
        updated_at DATETIME NOT NULL,
        FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE
    );`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_playlists_user_name ON playlists (user_id, name COLLATE NOCASE);`,
	`CREATE TABLE IF NOT EXISTS playlist_songs (
        playlist_id TEXT NOT NULL,
        song_id TEXT NOT NULL,
        added_at DATETIME NOT NULL,
        PRIMARY KEY (playlist_id, song_id),
        FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE,
        FOREIGN KEY(song_id) REFERENCES songs(id) ON DELETE CASCADE
    );`,
	`CREATE INDEX IF NOT EXISTS idx_playlist_songs_song ON playlist_songs (song_id);`,
	`CREATE TABLE IF NOT EXISTS liked_songs (
        user_id TEXT NOT NULL,
        song_id TEXT NOT NULL,
        liked_at DATETIME NOT NULL,
        PRIMARY KEY (user_id, song_id),
        FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
        FOREIGN KEY(song_id) REFERENCES songs(id) ON DELETE CASCADE
    );`,
	`CREATE INDEX IF NOT EXISTS idx_liked_songs_song ON liked_songs (song_id);`,
	`CREATE TABLE IF NOT EXISTS liked_playlists (
        user_id TEXT NOT NULL,
        playlist_id TEXT NOT NULL,
        liked_at DATETIME NOT NULL,
        PRIMARY KEY (user_id, playlist_id),
        FOREIGN KEY(user_id) REFERENCES users(id) ON DELETE CASCADE,
        FOREIGN KEY(playlist_id) REFERENCES playlists(id) ON DELETE CASCADE
    );`,
	`CREATE INDEX IF NOT EXISTS idx_liked_playlists_playlist ON liked_playlists (playlist_id);`,
	`CREATE TABLE IF NOT EXISTS schema_migrations (
        version INTEGER PRIMARY KEY NOT NULL,
        applied_at DATETIME NOT NULL
    );`,
}

// migrateDB performs lightweight, idempotent schema migrations to bring
// older databases up-to-date without destroying existing data.
func migrateDB(ctx context.Context, db *sqlx.DB, logger *log.Logger) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate schema: %w", err)
		}
	}

	// Version 2 added song duration.
	if err := ensureColumnExists(ctx, db, "songs", "duration", "INTEGER NOT NULL DEFAULT 0"); err != nil {
		return fmt.Errorf("migrate songs.duration: %w", err)
	}

	res, err := db.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
		schemaVersion, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}
	if n, _ := res.RowsAffected(); n > 0 {
		logger.Info("database migrated", "version", schemaVersion)
	}
	return nil
}

// ensureColumnExists will attempt to add a column to a table if it doesn't exist.
// For SQLite we attempt to ALTER TABLE ADD COLUMN and ignore duplicate column errors.
func ensureColumnExists(ctx context.Context, db *sqlx.DB, table, column, definition string) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s;", table, column, definition))
	if err != nil {
		if strings.Contains(err.Error(), "duplicate column name") || strings.Contains(err.Error(), "already exists") {
			return nil
		}
		return err
	}
	return nil
}

// currentSchemaVersion returns the highest applied version, 0 on a fresh database.
func currentSchemaVersion(ctx context.Context, db *sqlx.DB) (int, error) {
	var version int
	err := db.GetContext(ctx, &version, `SELECT COALESCE(MAX(version), 0) FROM schema_migrations`)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}
