package reconcile

import (
	"context"
	"errors"
	"testing"
	"time"

	"buckaroopay/internal/domain/payment"

	"github.com/stretchr/testify/assert"
)

type fakeSource struct {
	orders    []payment.Order
	err       error
	olderThan time.Time
	limit     int
}

func (f *fakeSource) FindStaleAuthorized(_ context.Context, olderThan time.Time, limit int) ([]payment.Order, error) {
	f.olderThan = olderThan
	f.limit = limit
	return f.orders, f.err
}

type fakeRefresher map[string]payment.Status

func (f fakeRefresher) RefreshStatus(_ context.Context, number string) (payment.TransactionInfo, error) {
	status, ok := f[number]
	if !ok {
		return payment.TransactionInfo{}, errors.New("boom")
	}
	return payment.TransactionInfo{PaymentStatus: status}, nil
}

func TestTick(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{orders: []payment.Order{{Number: "A"}, {Number: "B"}, {Number: "C"}}}
	w := NewWorker(src, fakeRefresher{
		"A": payment.StatusCaptured,
		"B": payment.StatusAuthorized,
	}, time.Minute, 15*time.Minute, 0)
	w.now = func() time.Time { return now }

	assert.Equal(t, 1, w.tick(context.Background()))
	assert.Equal(t, now.Add(-15*time.Minute), src.olderThan)
	assert.Equal(t, 50, src.limit)
}

func TestTickSourceError(t *testing.T) {
	w := NewWorker(&fakeSource{err: errors.New("db down")}, fakeRefresher{}, time.Minute, time.Minute, 10)
	assert.Zero(t, w.tick(context.Background()))
}

func TestRunStopsOnCancel(t *testing.T) {
	w := NewWorker(&fakeSource{}, fakeRefresher{}, time.Millisecond, time.Minute, 10)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
