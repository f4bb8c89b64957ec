package limiter

import (
	"context"
	"sync"
	"time"

	"salonloyalty/internal/interfaces"

	"github.com/go-redis/redis_rate/v10"
	"github.com/hiendaovinh/toolkit/pkg/limiter"
	"github.com/redis/go-redis/v9"
)

type Limiter struct {
	instance *redis_rate.Limiter
}

var _ interfaces.Limiter = (*Limiter)(nil)

func NewLimiter(client redis.UniversalClient) (*Limiter, error) {
	return &Limiter{redis_rate.NewLimiter(client)}, nil
}

func (l *Limiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) error {
	res, err := l.instance.Allow(ctx, key, limit)
	if err != nil {
		return err
	}
	if res.Allowed == 0 {
		return limiter.ErrRateLimited
	}
	return nil
}

type window struct {
	start time.Time
	count int
}

// Local is a fixed-window limiter for a single process.
type Local struct {
	mu      sync.Mutex
	windows map[string]*window
	now     func() time.Time
}

var _ interfaces.Limiter = (*Local)(nil)

func NewLocal() *Local {
	return &Local{windows: map[string]*window{}, now: time.Now}
}

func (l *Local) Allow(_ context.Context, key string, limit redis_rate.Limit) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) >= limit.Period {
		w = &window{start: now}
		l.windows[key] = w
	}

	max := limit.Burst
	if max < limit.Rate {
		max = limit.Rate
	}
	if w.count >= max {
		return limiter.ErrRateLimited
	}
	w.count++
	return nil
}
