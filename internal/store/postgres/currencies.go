package postgres

import (
	"context"
	"errors"

	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/store/repositories"

	"github.com/jackc/pgx/v5"
)

func (r *Repo) GetCurrency(ctx context.Context, id string) (payment.Currency, error) {
	var c payment.Currency
	err := r.db.QueryRow(ctx, `SELECT id, code FROM currencies WHERE id=$1`, id).Scan(&c.ID, &c.Code)
	if errors.Is(err, pgx.ErrNoRows) {
		return payment.Currency{}, repositories.ErrCurrencyNotFound
	}
	return c, err
}

func (r *Repo) UpsertCurrency(ctx context.Context, c payment.Currency) error {
	_, err := r.db.Exec(ctx, `INSERT INTO currencies (id, code) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET code = EXCLUDED.code`, c.ID, c.Code)
	return err
}
