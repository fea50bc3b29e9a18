package db

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

var sqliteSchema = []string{
	`PRAGMA foreign_keys = ON`,
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content BLOB,
    content_hash TEXT NOT NULL DEFAULT '',
    author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_author_updated ON drafts (author_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content BLOB,
    content_hash TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_hash ON posts (author_id, content_hash)`,
}

type SQLite struct {
	conn
	dsn string
}

func NewSQLite(dsn string) *SQLite {
	if dsn == "" {
		dsn = "./database.db"
	}
	return &SQLite{dsn: dsn}
}

// NewSQLiteWithConn wraps an already open handle. InitDB will only apply the schema.
func NewSQLiteWithConn(c *sql.DB) *SQLite {
	return &SQLite{conn: conn{db: sqlx.NewDb(c, DriverSQLite)}}
}

func (s *SQLite) InitDB() error {
	if s.db == nil {
		db, err := sqlx.Open(DriverSQLite, s.dsn)
		if err != nil {
			return err
		}
		// One writer at a time; this also keeps ":memory:" databases on a single connection.
		db.SetMaxOpenConns(1)
		s.db = db
	}

	if err := s.migrate(sqliteSchema); err != nil {
		return err
	}

	dbLogger.Info().Str("driver", DriverSQLite).Str("dsn", s.dsn).Msg("Database initialized")
	return nil
}
