// Package locker serialises mutations of a single account across requests
// and, with the Redis backend, across processes.
package locker

import (
	"context"
	"errors"
)

// ErrLockTimeout is returned when the lock could not be acquired before the
// wait deadline or the context ended.
var ErrLockTimeout = errors.New("lock acquisition timed out")

// Unlock releases a held lock.
type Unlock func() error

type Locker interface {
	Acquire(ctx context.Context, key string) (Unlock, error)
}

// AccountKey is the lock key for an account's cart and order list.
func AccountKey(userID string) string {
	return "lock:account:" + userID
}
