package searchlog

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS logs_bot (
	id      BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	code    INTEGER NOT NULL,
	created TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_logs_bot_user_created ON logs_bot (user_id, created);
`

// Postgres stores the log in the logs_bot table.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres connects to dsn and makes sure the table exists.
func NewPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("searchlog: failed to open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("searchlog: failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("searchlog: failed to initialize schema: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Record(ctx context.Context, userID int64, code int) error {
	if _, err := p.pool.Exec(ctx, `INSERT INTO logs_bot (user_id, code) VALUES ($1, $2)`, userID, code); err != nil {
		return fmt.Errorf("searchlog: failed to insert: %w", err)
	}
	return nil
}

func (p *Postgres) CountSuccess(ctx context.Context, userID int64, since time.Time) (int, error) {
	var count int
	err := p.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM logs_bot WHERE user_id = $1 AND code = $2 AND created > $3`,
		userID, successCode, since,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("searchlog: failed to count: %w", err)
	}
	return count, nil
}

func (p *Postgres) Enabled() bool { return true }

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
