package redis

import (
	"context"
	"errors"
	"time"

	"buckaroopay/internal/store/repositories"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const keyPrefix = "order_lock:"

// release only deletes the key while we still own it
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// OrderLocker is a per-order SETNX lock with a TTL
type OrderLocker struct {
	client  goredis.UniversalClient
	ttl     time.Duration
	maxWait time.Duration
}

var _ repositories.OrderLocker = (*OrderLocker)(nil)

func NewOrderLocker(client goredis.UniversalClient, ttl time.Duration) *OrderLocker {
	return &OrderLocker{client: client, ttl: ttl, maxWait: 5 * time.Second}
}

// Lock waits up to maxWait for the order lock. The returned release is safe
// to call after the TTL expired.
func (l *OrderLocker) Lock(ctx context.Context, orderNumber string) (func(context.Context) error, error) {
	key := keyPrefix + orderNumber
	token := uuid.NewString()

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 25 * time.Millisecond
	eb.MaxInterval = 500 * time.Millisecond
	eb.MaxElapsedTime = l.maxWait

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return repositories.ErrOrderLocked
		}
		return nil
	}, backoff.WithContext(eb, ctx))
	if err != nil {
		if errors.Is(err, repositories.ErrOrderLocked) {
			log.Warn().Str("order_number", orderNumber).Msg("order lock busy")
		}
		return nil, err
	}

	return func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}, nil
}

// Open connects to Redis and pings it
func Open(ctx context.Context, addr string) (*goredis.Client, error) {
	client := goredis.NewClient(&goredis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}
