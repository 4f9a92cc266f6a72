package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// PostgresKV keeps storefront state in a single upsert table, for deployments
// where the instance must survive host loss.
type PostgresKV struct {
	db *sql.DB
}

// ConnectPostgres opens and pings a PostgreSQL connection.
func ConnectPostgres(connStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return db, nil
}

func NewPostgresKV(db *sql.DB) (*PostgresKV, error) {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS storefront_state (
			key        TEXT PRIMARY KEY,
			value      JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`)
	if err != nil {
		return nil, fmt.Errorf("creating state table: %w", err)
	}
	return &PostgresKV{db: db}, nil
}

func (p *PostgresKV) Get(key string) ([]byte, error) {
	var value []byte
	err := p.db.QueryRow(
		"SELECT value FROM storefront_state WHERE key = $1", key,
	).Scan(&value)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (p *PostgresKV) Set(key string, value []byte) error {
	_, err := p.db.Exec(`
		INSERT INTO storefront_state (key, value, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (key) DO UPDATE SET value = $2, updated_at = now()`,
		key, value)
	return err
}

func (p *PostgresKV) Delete(key string) error {
	_, err := p.db.Exec("DELETE FROM storefront_state WHERE key = $1", key)
	return err
}
