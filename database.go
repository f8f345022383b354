package main

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
)

// driverName is go-sqlite3 with unicode_lower(text) registered on every
// connection. SQLite's own lower() and LIKE only fold ASCII.
const driverName = "sqlite3_music"

func init() {
	sql.Register(driverName, &sqlite3.SQLiteDriver{
		ConnectHook: func(conn *sqlite3.SQLiteConn) error {
			return conn.RegisterFunc("unicode_lower", strings.ToLower, true)
		},
	})
	sqlx.BindDriver(driverName, sqlx.QUESTION)
}

// Stores bundles the repositories over one query executor, either the
// connection pool or an open transaction.
type Stores struct {
	Users     UserRepository
	Songs     SongRepository
	Playlists PlaylistRepository
	Likes     LikeRepository
	Search    SearchRepository
}

func newStores(q sqlx.ExtContext) Stores {
	songs := NewSongStore(q)
	playlists := NewPlaylistStore(q)
	return Stores{
		Users:     NewUserStore(q),
		Songs:     songs,
		Playlists: playlists,
		Likes:     NewLikeStore(q),
		Search:    NewSearchStore(songs, playlists),
	}
}

// Database owns the connection pool. Its embedded Stores run outside any
// transaction; InTx hands out Stores bound to a transaction.
type Database struct {
	Stores
	db *sqlx.DB
}

func NewDatabase(db *sqlx.DB) *Database {
	return &Database{Stores: newStores(db), db: db}
}

// DB exposes the underlying pool for migrations and health checks.
func (d *Database) DB() *sqlx.DB { return d.db }

func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

func (d *Database) Close() error { return d.db.Close() }

// InTx runs fn inside a transaction and commits when fn returns nil.
// fn must only use the Stores it is given; the pool may hold a single
// connection, so touching d.Stores inside fn would block.
func (d *Database) InTx(ctx context.Context, fn func(s Stores) error) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(newStores(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func isMemoryPath(path string) bool {
	return path == ":memory:" || strings.HasPrefix(path, "file::memory:")
}

// sqliteDSN enables foreign keys (needed for cascades) and a busy timeout.
// The query string is consumed by the driver.
func sqliteDSN(path string) string {
	if isMemoryPath(path) {
		return ":memory:?_foreign_keys=on"
	}
	return path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

// openDB connects to SQLite and verifies the connection.
func openDB(cfg DatabaseConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open(driverName, sqliteDSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if isMemoryPath(cfg.Path) {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
		db.SetConnMaxLifetime(0)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return db, nil
}
