// Package limiter counts login attempts per client and blocks further ones
// once a fixed window holds too many of them.
package limiter

import (
	"context"
	"errors"
	"time"
)

var ErrUnavailable = errors.New("limiter backend unavailable")

// Limiter tracks attempts per key (the client IP). Attempt counts before the
// credentials are checked, so concurrent requests cannot all slip under the
// limit; callers give the slot back with Release when the attempt did not end
// in a credential failure.
type Limiter interface {
	// Attempt takes one slot for key. A positive duration means the key is
	// blocked for that long and nothing was counted.
	Attempt(ctx context.Context, key string) (time.Duration, error)
	// Release returns a slot taken by Attempt.
	Release(ctx context.Context, key string) error
	// Reset forgets the key, typically after a successful login.
	Reset(ctx context.Context, key string) error
}
