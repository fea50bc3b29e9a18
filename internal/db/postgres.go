package db

import (
	"database/sql"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    password_hash TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE TABLE IF NOT EXISTS drafts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content BYTEA,
    content_hash TEXT NOT NULL DEFAULT '',
    author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_author_updated ON drafts (author_id, updated_at DESC)`,
	`CREATE TABLE IF NOT EXISTS posts (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    content BYTEA,
    content_hash TEXT NOT NULL DEFAULT '',
    excerpt TEXT NOT NULL DEFAULT '',
    author_id TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_created ON posts (created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_posts_author_hash ON posts (author_id, content_hash)`,
}

type Postgres struct {
	conn
	dsn string
}

func NewPostgres(dsn string) *Postgres {
	return &Postgres{dsn: dsn}
}

func NewPostgresWithConn(c *sql.DB) *Postgres {
	return &Postgres{conn: conn{db: sqlx.NewDb(c, DriverPostgres)}}
}

func (p *Postgres) InitDB() error {
	if p.db == nil {
		db, err := sqlx.Open(DriverPostgres, p.dsn)
		if err != nil {
			return err
		}
		if err := db.Ping(); err != nil {
			db.Close()
			return err
		}
		p.db = db
	}

	if err := p.migrate(postgresSchema); err != nil {
		return err
	}

	dbLogger.Info().Str("driver", DriverPostgres).Msg("Database initialized")
	return nil
}
