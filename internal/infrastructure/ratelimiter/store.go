package ratelimiter

import (
	"errors"
	"time"
)

// ErrCounterNotFound reports a counter that was never written or whose TTL
// has lapsed.
var ErrCounterNotFound = errors.New("ratelimiter: counter not found")

// CounterStore persists the limiter's bucket counters. Implementations must
// be safe for concurrent use.
type CounterStore interface {
	Get(key string) (int, error)
	Set(key string, value int) error
	SetWithExpiration(key string, value int, ttl time.Duration) error
	Close() error
}
