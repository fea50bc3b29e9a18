package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/debemdeboas/quill/internal/config"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// DB is the store used by the repositories. Queries are written with '?'
// placeholders and passed through Rebind before execution.
type DB interface {
	InitDB() error

	Get() *sqlx.DB
	Close() error
	DriverName() string
	Rebind(query string) string

	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

var dbLogger zerolog.Logger

func SetLogger(l zerolog.Logger) {
	dbLogger = l
}

// Open returns an initialized store for the configured driver.
func Open(cfg config.DatabaseConfig) (DB, error) {
	var d DB
	switch cfg.Driver {
	case DriverSQLite, "sqlite", "":
		d = NewSQLite(cfg.DSN)
	case DriverPostgres, "pgx":
		d = NewPostgres(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	if err := d.InitDB(); err != nil {
		d.Close()
		return nil, err
	}
	return d, nil
}

// conn holds what both drivers share once the handle is open.
type conn struct {
	db *sqlx.DB
}

func (c *conn) Get() *sqlx.DB {
	return c.db
}

func (c *conn) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

func (c *conn) DriverName() string {
	return c.db.DriverName()
}

func (c *conn) Rebind(query string) string {
	return c.db.Rebind(query)
}

func (c *conn) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	dbLogger.Debug().Str("query", query).Msg("Exec")
	return c.db.ExecContext(ctx, query, args...)
}

func (c *conn) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	dbLogger.Debug().Str("query", query).Msg("Get")
	return c.db.GetContext(ctx, dest, query, args...)
}

func (c *conn) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	dbLogger.Debug().Str("query", query).Msg("Select")
	return c.db.SelectContext(ctx, dest, query, args...)
}

func (c *conn) migrate(statements []string) error {
	for _, stmt := range statements {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("error applying schema: %w", err)
		}
	}
	return nil
}
