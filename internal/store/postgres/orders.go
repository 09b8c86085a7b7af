package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"buckaroopay/internal/domain/payment"
	"buckaroopay/internal/store/repositories"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const orderColumns = `number, currency_id, total_with_tax::text, transaction_id, payment_status, amount_authorized::text`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (payment.Order, error) {
	var (
		o                 payment.Order
		total, authorized string
		status            string
	)
	if err := row.Scan(&o.Number, &o.CurrencyID, &total, &o.TransactionInfo.TransactionID, &status, &authorized); err != nil {
		return payment.Order{}, err
	}

	var err error
	if o.TotalWithTax, err = decimal.NewFromString(total); err != nil {
		return payment.Order{}, fmt.Errorf("order %s total: %w", o.Number, err)
	}
	if o.TransactionInfo.AmountAuthorized, err = decimal.NewFromString(authorized); err != nil {
		return payment.Order{}, fmt.Errorf("order %s amount authorized: %w", o.Number, err)
	}
	o.TransactionInfo.PaymentStatus = payment.Status(status)
	return o, nil
}

func (r *Repo) FindByNumber(ctx context.Context, number string) (payment.Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE number=$1`, number))
	if errors.Is(err, pgx.ErrNoRows) {
		return payment.Order{}, repositories.ErrOrderNotFound
	}
	return o, err
}

// SaveTransactionInfo overwrites the payment part of an order
func (r *Repo) SaveTransactionInfo(ctx context.Context, number string, info payment.TransactionInfo) error {
	tag, err := r.db.Exec(ctx, `UPDATE orders
		SET transaction_id    = $2,
		    payment_status    = $3,
		    amount_authorized = $4::numeric,
		    updated_at        = now()
		WHERE number=$1`,
		number, info.TransactionID, string(info.PaymentStatus), info.AmountAuthorized.String(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return repositories.ErrOrderNotFound
	}
	return nil
}

// FindStaleAuthorized lists authorized orders not touched since olderThan, oldest first
func (r *Repo) FindStaleAuthorized(ctx context.Context, olderThan time.Time, limit int) ([]payment.Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		  FROM orders
		 WHERE payment_status=$1 AND updated_at < $2
		 ORDER BY updated_at
		 LIMIT $3`,
		string(payment.StatusAuthorized), olderThan, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payment.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CreateOrder inserts a pending order; used by seeding and tests
func (r *Repo) CreateOrder(ctx context.Context, o payment.Order) error {
	_, err := r.db.Exec(ctx, `INSERT INTO orders (number, currency_id, total_with_tax)
		VALUES ($1, $2, $3::numeric)`,
		o.Number, o.CurrencyID, o.TotalWithTax.String(),
	)
	return err
}
