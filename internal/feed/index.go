package feed

import (
	"context"
	"strconv"

	"ripple/internal/cache"
	"ripple/internal/observability"

	"github.com/redis/go-redis/v9"
)

// Index is the per-user ranked feed: one sorted set per user mapping postID
// to score. A postID appears at most once per feed; upserting replaces the
// score, so re-applying the same (postID, score) write is a no-op.
type Index struct {
	rdb *redis.Client
}

// NewIndex creates a feed index backed by the given Redis client.
func NewIndex(rdb *redis.Client) *Index {
	return &Index{rdb: rdb}
}

func member(postID uint) string {
	return strconv.FormatUint(uint64(postID), 10)
}

// Upsert inserts or replaces the entry for postID in userID's feed.
func (ix *Index) Upsert(ctx context.Context, userID, postID uint, score int64) error {
	if ix.rdb == nil {
		return ErrCacheUnavailable
	}
	err := ix.rdb.ZAdd(ctx, cache.FeedKey(userID), redis.Z{
		Score:  float64(score),
		Member: member(postID),
	}).Err()
	return wrapCacheErr(err)
}

// UpsertBatch writes the same (postID, score) entry into every listed user's
// feed in a single pipelined round trip. Each write is independent and
// idempotent; there is no cross-key transaction, so a mid-batch failure
// leaves some feeds updated and the rest stale until the next event on the
// post re-fans-out.
func (ix *Index) UpsertBatch(ctx context.Context, userIDs []uint, postID uint, score int64) error {
	if ix.rdb == nil {
		return ErrCacheUnavailable
	}
	if len(userIDs) == 0 {
		return nil
	}
	z := redis.Z{Score: float64(score), Member: member(postID)}
	_, err := ix.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, uid := range userIDs {
			p.ZAdd(ctx, cache.FeedKey(uid), z)
		}
		return nil
	})
	if err != nil {
		return wrapCacheErr(err)
	}
	observability.FanoutWrites.Add(float64(len(userIDs)))
	observability.FanoutBatchSize.Observe(float64(len(userIDs)))
	return nil
}

// RangeDescending returns the post IDs in userID's feed for the closed rank
// window [startRank, endRank], ordered by descending score (rank 0 is the
// highest score). Windows past the end of the feed yield an empty slice.
func (ix *Index) RangeDescending(ctx context.Context, userID uint, startRank, endRank int64) ([]uint, error) {
	if ix.rdb == nil {
		return nil, ErrCacheUnavailable
	}
	members, err := ix.rdb.ZRevRange(ctx, cache.FeedKey(userID), startRank, endRank).Result()
	if err != nil {
		return nil, wrapCacheErr(err)
	}
	ids := make([]uint, 0, len(members))
	for _, m := range members {
		id, parseErr := strconv.ParseUint(m, 10, 64)
		if parseErr != nil {
			// Foreign junk in the set; the durable store never saw it, skip.
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, nil
}

// Remove deletes postID from userID's feed if present.
func (ix *Index) Remove(ctx context.Context, userID, postID uint) error {
	if ix.rdb == nil {
		return ErrCacheUnavailable
	}
	return wrapCacheErr(ix.rdb.ZRem(ctx, cache.FeedKey(userID), member(postID)).Err())
}

// RemoveBatch deletes postID from every listed user's feed in one pipelined
// round trip. Like UpsertBatch, each removal is independent.
func (ix *Index) RemoveBatch(ctx context.Context, userIDs []uint, postID uint) error {
	if ix.rdb == nil {
		return ErrCacheUnavailable
	}
	if len(userIDs) == 0 {
		return nil
	}
	_, err := ix.rdb.Pipelined(ctx, func(p redis.Pipeliner) error {
		for _, uid := range userIDs {
			p.ZRem(ctx, cache.FeedKey(uid), member(postID))
		}
		return nil
	})
	return wrapCacheErr(err)
}
