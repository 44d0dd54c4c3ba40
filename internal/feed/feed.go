// Package feed implements the ranked home-feed index and its fan-out engine:
// scoring, per-post engagement counters, per-user sorted-set indexes, score
// propagation to followers, and the paginated read path.
//
// Everything this package keeps in Redis is derived, rebuildable state. The
// durable store stays authoritative; counters fall back to it on cache
// misses, and the reader drops index entries the store can no longer
// resolve.
package feed

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// ErrCacheUnavailable indicates the Redis store backing the feed index and
// counters is unreachable. Callers surface this as a service-degraded
// condition; silently skipping the cache would corrupt score ordering.
var ErrCacheUnavailable = errors.New("feed cache unavailable")

// wrapCacheErr converts a Redis transport error into ErrCacheUnavailable.
// redis.Nil is a miss, not a failure.
func wrapCacheErr(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return nil
	}
	return fmt.Errorf("%w: %v", ErrCacheUnavailable, err)
}
