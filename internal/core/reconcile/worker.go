package reconcile

import (
	"context"
	"time"

	"buckaroopay/internal/domain/payment"

	"github.com/rs/zerolog/log"
)

// OrderSource lists orders whose payment is still open
type OrderSource interface {
	FindStaleAuthorized(ctx context.Context, olderThan time.Time, limit int) ([]payment.Order, error)
}

// StatusRefresher polls the provider for one order and persists the result
type StatusRefresher interface {
	RefreshStatus(ctx context.Context, number string) (payment.TransactionInfo, error)
}

// Worker finalizes authorized orders whose push never arrived by polling the
// gateway for their status
type Worker struct {
	orders    OrderSource
	refresher StatusRefresher
	pollEvery time.Duration
	minAge    time.Duration
	batch     int
	now       func() time.Time
}

func NewWorker(orders OrderSource, refresher StatusRefresher, pollEvery, minAge time.Duration, batch int) *Worker {
	if batch <= 0 {
		batch = 50
	}
	return &Worker{
		orders:    orders,
		refresher: refresher,
		pollEvery: pollEvery,
		minAge:    minAge,
		batch:     batch,
		now:       time.Now,
	}
}

func (w *Worker) Run(ctx context.Context) {
	log.Info().Msg("reconcile worker: started")
	t := time.NewTicker(w.pollEvery)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("reconcile worker: stopping")
			return
		case <-t.C:
			w.tick(ctx)
		}
	}
}

func (w *Worker) tick(ctx context.Context) int {
	orders, err := w.orders.FindStaleAuthorized(ctx, w.now().Add(-w.minAge), w.batch)
	if err != nil {
		log.Error().Err(err).Msg("reconcile worker: fetch orders failed")
		return 0
	}

	finalized := 0
	for _, o := range orders {
		if ctx.Err() != nil {
			break
		}
		info, err := w.refresher.RefreshStatus(ctx, o.Number)
		if err != nil {
			log.Error().Err(err).Str("order_number", o.Number).Msg("reconcile worker: refresh failed")
			continue
		}
		if info.PaymentStatus.IsTerminal() {
			finalized++
		}
	}
	if len(orders) > 0 {
		log.Info().Int("checked", len(orders)).Int("finalized", finalized).Msg("reconcile worker: tick")
	}
	return finalized
}
