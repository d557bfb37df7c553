package locker

import (
	"context"
	"sync"
	"time"
)

type localEntry struct {
	ch   chan struct{}
	refs int
}

// LocalLocker is an in-process keyed mutex. Entries are dropped once no
// goroutine holds or waits on them.
type LocalLocker struct {
	mu      sync.Mutex
	entries map[string]*localEntry
	wait    time.Duration
}

// NewLocalLocker returns a LocalLocker that gives up after wait. A zero wait
// means only the context bounds acquisition.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{entries: make(map[string]*localEntry), wait: wait}
}

func (l *LocalLocker) ref(key string) *localEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[key]
	if !ok {
		e = &localEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *LocalLocker) unref(key string, e *localEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

func (l *LocalLocker) Acquire(ctx context.Context, key string) (Unlock, error) {
	if l.wait > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	e := l.ref(key)
	select {
	case e.ch <- struct{}{}:
	case <-ctx.Done():
		l.unref(key, e)
		return nil, ErrLockTimeout
	}

	var once sync.Once
	return func() error {
		once.Do(func() {
			<-e.ch
			l.unref(key, e)
		})
		return nil
	}, nil
}

func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
