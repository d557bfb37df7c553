package locker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLocker_MutualExclusion(t *testing.T) {
	l := NewLocalLocker(time.Second)
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Acquire(context.Background(), AccountKey("u1"))
			if !assert.NoError(t, err) {
				return
			}
			mu.Lock()
			inside++
			if inside > maxSeen {
				maxSeen = inside
			}
			mu.Unlock()
			time.Sleep(time.Millisecond)
			mu.Lock()
			inside--
			mu.Unlock()
			assert.NoError(t, unlock())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, l.size())
}

func TestLocalLocker_IndependentKeys(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)

	u1, err := l.Acquire(context.Background(), AccountKey("u1"))
	require.NoError(t, err)
	u2, err := l.Acquire(context.Background(), AccountKey("u2"))
	require.NoError(t, err)

	require.NoError(t, u1())
	require.NoError(t, u2())
}

func TestLocalLocker_Timeout(t *testing.T) {
	l := NewLocalLocker(20 * time.Millisecond)

	unlock, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), "k")
	assert.ErrorIs(t, err, ErrLockTimeout)

	require.NoError(t, unlock())
	require.NoError(t, unlock())

	again, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	require.NoError(t, again())
	assert.Equal(t, 0, l.size())
}

func TestLocalLocker_ContextCancelled(t *testing.T) {
	l := NewLocalLocker(0)
	unlock, err := l.Acquire(context.Background(), "k")
	require.NoError(t, err)
	defer unlock()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = l.Acquire(ctx, "k")
	assert.ErrorIs(t, err, ErrLockTimeout)
}
