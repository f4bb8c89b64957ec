package locker

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"salonloyalty/internal/interfaces"

	"github.com/go-redsync/redsync/v4"
)

type Redsync struct {
	rs *redsync.Redsync
}

var _ interfaces.Locker = (*Redsync)(nil)

func NewRedsync(rs *redsync.Redsync) *Redsync {
	return &Redsync{rs}
}

// TryLock makes a single attempt; a held key yields interfaces.ErrLocked.
func (l *Redsync) TryLock(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	mutex := l.rs.NewMutex(key, redsync.WithExpiry(ttl), redsync.WithTries(1))
	if err := mutex.TryLockContext(ctx); err != nil {
		var taken *redsync.ErrTaken
		if errors.Is(err, redsync.ErrFailed) || errors.As(err, &taken) {
			return nil, interfaces.ErrLocked
		}
		return nil, err
	}

	return func() {
		if _, err := mutex.UnlockContext(context.WithoutCancel(ctx)); err != nil {
			log.Println("unlock", key, err)
		}
	}, nil
}

// Local holds locks in process memory.
type Local struct {
	mu   sync.Mutex
	held map[string]time.Time
}

var _ interfaces.Locker = (*Local)(nil)

func NewLocal() *Local {
	return &Local{held: map[string]time.Time{}}
}

func (l *Local) TryLock(_ context.Context, key string, ttl time.Duration) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	if until, ok := l.held[key]; ok && now.Before(until) {
		return nil, interfaces.ErrLocked
	}
	until := now.Add(ttl)
	l.held[key] = until

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.held[key].Equal(until) {
			delete(l.held, key)
		}
	}, nil
}
