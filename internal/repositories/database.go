package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/XSAM/otelsql"
	"github.com/aaravmahajanofficial/resilient-catalog-cache/internal/config"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	_ "github.com/lib/pq"
)

// Database holds the two logical routes into the relational store: writes
// always hit the primary, reads may be pointed at a replica.
type Database struct {
	Write *sql.DB
	Read  *sql.DB
}

func New(cfg *config.Config) (*Database, error) {

	write, err := open(cfg, cfg.Database.WriteDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open write route: %w", err)
	}

	read := write

	// A separate pool only when a distinct read endpoint is configured.
	if cfg.Database.ReadDSN() != cfg.Database.WriteDSN() {
		read, err = open(cfg, cfg.Database.ReadDSN())
		if err != nil {
			write.Close()
			return nil, fmt.Errorf("failed to open read route: %w", err)
		}
	}

	return &Database{Write: write, Read: read}, nil
}

func open(cfg *config.Config, dsn string) (*sql.DB, error) {

	db, err := otelsql.Open("postgres", dsn, otelsql.WithAttributes(semconv.DBSystemPostgreSQL))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	// Test the connection to make sure DB is reachable
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return db, nil
}

// Migrate bootstraps the products table on the write route.
func (d *Database) Migrate(ctx context.Context) error {

	_, err := d.Write.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS products (
			id BIGSERIAL PRIMARY KEY,
			name TEXT NOT NULL,
			price_cents BIGINT NOT NULL CHECK (price_cents >= 0),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return fmt.Errorf("failed to create products table: %w", err)
	}

	return nil
}

func (d *Database) Close() error {

	if d.Read != d.Write {
		if err := d.Read.Close(); err != nil {
			return err
		}
	}

	return d.Write.Close()
}
