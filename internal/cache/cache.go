package cache

import "time"

// Cache is a TTL byte cache for remote read responses. Entries expire by
// wall-clock age only; writes elsewhere never invalidate them.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration)
}

// Noop caches nothing. Used when caching is disabled.
type Noop struct{}

func (Noop) Get(string) ([]byte, bool)         { return nil, false }
func (Noop) Set(string, []byte, time.Duration) {}
