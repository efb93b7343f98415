// Package lease serializes ingestion per ticker.
package lease

import (
	"context"
	"errors"
)

// ErrLost is the cancellation cause of a held context whose lease expired or
// was taken over before release.
var ErrLost = errors.New("lease lost")

// Locker grants at most one holder per key at a time. Acquire blocks until the
// key is free or ctx is done. Work done under the lease must use the returned
// context: it is cancelled on release and, with cause ErrLost, as soon as the
// lease can no longer be guaranteed. The release func is safe to call more
// than once.
type Locker interface {
	Acquire(ctx context.Context, key string) (held context.Context, release func(), err error)
}
