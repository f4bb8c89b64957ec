package locker

import (
	"context"
	"testing"
	"time"

	"salonloyalty/internal/interfaces"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalTryLock(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	unlock, err := l.TryLock(ctx, "lock:birthday-job:14.03.2024", time.Minute)
	require.NoError(t, err)

	_, err = l.TryLock(ctx, "lock:birthday-job:14.03.2024", time.Minute)
	assert.ErrorIs(t, err, interfaces.ErrLocked)

	other, err := l.TryLock(ctx, "lock:birthday-job:15.03.2024", time.Minute)
	require.NoError(t, err)
	other()

	unlock()
	unlock, err = l.TryLock(ctx, "lock:birthday-job:14.03.2024", time.Minute)
	require.NoError(t, err)
	unlock()
}

func TestLocalTryLockExpires(t *testing.T) {
	ctx := context.Background()
	l := NewLocal()

	_, err := l.TryLock(ctx, "k", time.Nanosecond)
	require.NoError(t, err)
	time.Sleep(time.Millisecond)

	unlock, err := l.TryLock(ctx, "k", time.Minute)
	require.NoError(t, err)
	unlock()
}
