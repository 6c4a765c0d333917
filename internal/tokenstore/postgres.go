package tokenstore

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres keeps the slot as one row of client_sessions keyed by slot name.
type Postgres struct {
	pool *pgxpool.Pool
	slot string
}

// NewPostgres returns a store bound to the given slot.
func NewPostgres(pool *pgxpool.Pool, slot string) *Postgres {
	return &Postgres{pool: pool, slot: slot}
}

func (p *Postgres) Save(ctx context.Context, token string) error {
	const query = `
        INSERT INTO client_sessions (slot, token, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (slot) DO UPDATE SET token = EXCLUDED.token, updated_at = NOW()`

	_, err := p.pool.Exec(ctx, query, p.slot, token)
	return err
}

func (p *Postgres) Read(ctx context.Context) (string, error) {
	const query = `SELECT token FROM client_sessions WHERE slot=$1`
	return p.scan(ctx, query)
}

// Clear drops the whole row, taking both values with it.
func (p *Postgres) Clear(ctx context.Context) error {
	const query = `DELETE FROM client_sessions WHERE slot=$1`

	_, err := p.pool.Exec(ctx, query, p.slot)
	return err
}

func (p *Postgres) SaveDisplayName(ctx context.Context, name string) error {
	const query = `
        INSERT INTO client_sessions (slot, username, updated_at)
        VALUES ($1, $2, NOW())
        ON CONFLICT (slot) DO UPDATE SET username = EXCLUDED.username, updated_at = NOW()`

	_, err := p.pool.Exec(ctx, query, p.slot, name)
	return err
}

func (p *Postgres) ReadDisplayName(ctx context.Context) (string, error) {
	const query = `SELECT username FROM client_sessions WHERE slot=$1`
	return p.scan(ctx, query)
}

func (p *Postgres) scan(ctx context.Context, query string) (string, error) {
	var val *string
	if err := p.pool.QueryRow(ctx, query, p.slot).Scan(&val); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", err
	}
	if val == nil || *val == "" {
		return "", ErrNotFound
	}
	return *val, nil
}
