package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

func MustOpen(ctx context.Context, dsn string) *pgxpool.Pool {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect fail")
	}
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("db ping fail")
	}
	if err := Migrate(ctx, pool); err != nil {
		log.Fatal().Err(err).Msg("db migrate fail")
	}
	return pool
}

const schema = `
CREATE TABLE IF NOT EXISTS currencies (
	id   TEXT PRIMARY KEY,
	code CHAR(3) NOT NULL
);

CREATE TABLE IF NOT EXISTS orders (
	number            TEXT PRIMARY KEY,
	currency_id       TEXT NOT NULL REFERENCES currencies(id),
	total_with_tax    NUMERIC(18,2) NOT NULL,
	transaction_id    TEXT NOT NULL DEFAULT '',
	payment_status    TEXT NOT NULL DEFAULT 'pending',
	amount_authorized NUMERIC(18,2) NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS orders_status_updated_idx ON orders (payment_status, updated_at);

CREATE TABLE IF NOT EXISTS payment_provider_settings (
	provider   TEXT NOT NULL,
	key        TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (provider, key)
);
`

// Migrate creates the tables the host needs; it is safe to run on every start
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schema)
	return err
}
