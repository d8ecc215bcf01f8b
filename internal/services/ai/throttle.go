package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	memorystore "github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"
)

const throttleKey = "openai"

// Throttle paces model calls to a requests-per-minute budget
type Throttle struct {
	limiter *limiter.Limiter
	key     string
	now     func() time.Time
}

// NewThrottle creates an in-process throttle. rpm <= 0 returns nil, which disables throttling.
func NewThrottle(rpm int) *Throttle {
	if rpm <= 0 {
		return nil
	}
	return newThrottle(memorystore.NewStore(), rpm)
}

// NewRedisThrottle creates a throttle whose budget is shared by every process using client
func NewRedisThrottle(client *redis.Client, rpm int) (*Throttle, error) {
	if rpm <= 0 {
		return nil, nil
	}
	store, err := redisstore.NewStoreWithOptions(client, limiter.StoreOptions{Prefix: "journal_ai_throttle"})
	if err != nil {
		return nil, fmt.Errorf("failed to create redis throttle store: %w", err)
	}
	return newThrottle(store, rpm), nil
}

func newThrottle(store limiter.Store, rpm int) *Throttle {
	rate := limiter.Rate{Period: time.Minute, Limit: int64(rpm)}
	return &Throttle{limiter: limiter.New(store, rate), key: throttleKey, now: time.Now}
}

// Wait blocks until a request slot is available or ctx is done
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	for {
		lc, err := t.limiter.Get(ctx, t.key)
		if err != nil {
			return fmt.Errorf("throttle: %w", err)
		}
		if !lc.Reached {
			return nil
		}

		wait := time.Unix(lc.Reset, 0).Sub(t.now())
		if wait < 100*time.Millisecond {
			wait = 100 * time.Millisecond
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
