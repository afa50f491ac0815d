// Package cartlock serializes work on a single cart across requests. A cart
// builder holds one mutable aggregate without locking, so callers take the
// cart's lock around load, mutate and save.
package cartlock

import (
	"context"
	"errors"
)

// ErrEmptyKey is returned when Lock is called without a key.
var ErrEmptyKey = errors.New("lock key required")

// Locker hands out exclusive locks by key. The returned unlock func is safe to
// call more than once.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
