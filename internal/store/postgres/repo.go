package postgres

import (
	"buckaroopay/internal/store/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repo implements the host repositories on a pgx pool
type Repo struct {
	db *pgxpool.Pool
}

var (
	_ repositories.OrderRepository    = (*Repo)(nil)
	_ repositories.CurrencyRepository = (*Repo)(nil)
	_ repositories.SettingsRepository = (*Repo)(nil)
)

func NewRepo(db *pgxpool.Pool) *Repo { return &Repo{db: db} }

// DB exposes the pool for tests and one-off tooling
func (r *Repo) DB() *pgxpool.Pool { return r.db }
