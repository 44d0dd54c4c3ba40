package feed

import (
	"context"
	"errors"
	"strconv"

	"ripple/internal/cache"
	"ripple/internal/observability"

	"github.com/redis/go-redis/v9"
)

// CountStore is the durable-store fallback consulted when a counter or
// membership entry is missing from the cache. Counters is the only component
// allowed to fall back to the store, which keeps the rebuild path in one
// place.
type CountStore interface {
	CountLikes(ctx context.Context, postID uint) (int64, error)
	CountComments(ctx context.Context, postID uint) (int64, error)
	HasLiked(ctx context.Context, userID, postID uint) (bool, error)
}

// Counters maintains the cached per-post engagement counters and the like
// membership set. Increments rely on Redis's atomic increment-from-zero
// semantics; decrements are clamped at 0 before any caller sees them, since
// a flushed cache can otherwise underflow.
type Counters struct {
	rdb   *redis.Client
	store CountStore
}

// NewCounters creates a counter cache over rdb with store as the
// authoritative fallback.
func NewCounters(rdb *redis.Client, store CountStore) *Counters {
	return &Counters{rdb: rdb, store: store}
}

func clampCount(n int64) int64 {
	if n < 0 {
		return 0
	}
	return n
}

// AddLike records userID's like of postID: membership-set add and counter
// increment are issued as one atomically executed pair, so there is never a
// visible state where the set says liked but the count has not moved.
// Returns the new like count.
func (c *Counters) AddLike(ctx context.Context, userID, postID uint) (int64, error) {
	if c.rdb == nil {
		return 0, ErrCacheUnavailable
	}
	var incr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SAdd(ctx, cache.LikeMembersKey(postID), member(userID))
		incr = p.Incr(ctx, cache.LikeCountKey(postID))
		return nil
	})
	if err != nil {
		return 0, wrapCacheErr(err)
	}
	return clampCount(incr.Val()), nil
}

// RemoveLike is the inverse of AddLike, with the decremented count clamped
// at 0.
func (c *Counters) RemoveLike(ctx context.Context, userID, postID uint) (int64, error) {
	if c.rdb == nil {
		return 0, ErrCacheUnavailable
	}
	var decr *redis.IntCmd
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.SRem(ctx, cache.LikeMembersKey(postID), member(userID))
		decr = p.Decr(ctx, cache.LikeCountKey(postID))
		return nil
	})
	if err != nil {
		return 0, wrapCacheErr(err)
	}
	return clampCount(decr.Val()), nil
}

// IncrComments atomically increments the cached comment count for postID.
func (c *Counters) IncrComments(ctx context.Context, postID uint) (int64, error) {
	if c.rdb == nil {
		return 0, ErrCacheUnavailable
	}
	n, err := c.rdb.Incr(ctx, cache.CommentCountKey(postID)).Result()
	if err != nil {
		return 0, wrapCacheErr(err)
	}
	return clampCount(n), nil
}

// DecrComments atomically decrements the cached comment count for postID,
// clamped at 0.
func (c *Counters) DecrComments(ctx context.Context, postID uint) (int64, error) {
	if c.rdb == nil {
		return 0, ErrCacheUnavailable
	}
	n, err := c.rdb.Decr(ctx, cache.CommentCountKey(postID)).Result()
	if err != nil {
		return 0, wrapCacheErr(err)
	}
	return clampCount(n), nil
}

// LikeCount returns the cached like count for postID, falling back to the
// durable store on a miss and writing the authoritative value back into the
// cache.
func (c *Counters) LikeCount(ctx context.Context, postID uint) (int64, error) {
	return c.cachedCount(ctx, cache.LikeCountKey(postID), "like", func() (int64, error) {
		return c.store.CountLikes(ctx, postID)
	})
}

// CommentCount is the comment-side counterpart of LikeCount.
func (c *Counters) CommentCount(ctx context.Context, postID uint) (int64, error) {
	return c.cachedCount(ctx, cache.CommentCountKey(postID), "comment", func() (int64, error) {
		return c.store.CountComments(ctx, postID)
	})
}

func (c *Counters) cachedCount(ctx context.Context, key, kind string, fetch func() (int64, error)) (int64, error) {
	if c.rdb == nil {
		return 0, ErrCacheUnavailable
	}
	val, err := c.rdb.Get(ctx, key).Result()
	if err == nil {
		n, parseErr := strconv.ParseInt(val, 10, 64)
		if parseErr == nil {
			return clampCount(n), nil
		}
		// Unparseable cached value: fall through and repair from the store.
	} else if !errors.Is(err, redis.Nil) {
		return 0, wrapCacheErr(err)
	}

	observability.CounterCacheMisses.WithLabelValues(kind).Inc()
	n, err := fetch()
	if err != nil {
		return 0, err
	}
	if setErr := c.rdb.Set(ctx, key, n, 0).Err(); setErr != nil {
		return 0, wrapCacheErr(setErr)
	}
	return clampCount(n), nil
}

// IsLiked reports whether userID currently likes postID. The membership set
// is checked first; absence falls back to the durable store so a flushed
// cache cannot make a like look revocable twice.
func (c *Counters) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if c.rdb == nil {
		return false, ErrCacheUnavailable
	}
	inSet, err := c.rdb.SIsMember(ctx, cache.LikeMembersKey(postID), member(userID)).Result()
	if err != nil {
		return false, wrapCacheErr(err)
	}
	if inSet {
		return true, nil
	}
	return c.store.HasLiked(ctx, userID, postID)
}
