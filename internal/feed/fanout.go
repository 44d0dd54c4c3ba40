package feed

import "context"

// FollowerResolver yields the current follower set of a user. Reads are
// snapshots; followers joining or leaving mid-fan-out simply catch up on the
// next event for the post.
type FollowerResolver interface {
	FollowerIDs(ctx context.Context, userID uint) ([]uint, error)
}

// PostRef carries the post fields the dispatcher needs; the caller has
// already resolved the post (and failed with a not-found error if it does
// not exist).
type PostRef struct {
	ID              uint
	AuthorID        uint
	CreatedAtMillis int64
}

// Dispatcher propagates score changes: on every qualifying event it
// recomputes the post's score and writes it into the author's feed and every
// current follower's feed.
type Dispatcher struct {
	index     *Index
	followers FollowerResolver
}

// NewDispatcher creates a dispatcher writing through index and resolving
// followers via followers.
func NewDispatcher(index *Index, followers FollowerResolver) *Dispatcher {
	return &Dispatcher{index: index, followers: followers}
}

// Refresh recomputes the score for post from the given counters and fans it
// out. Returns the computed score. The author's own entry is written before
// any follower entry; follower writes go out as one pipelined batch. No
// rollback on partial failure: every write is idempotent and the next event
// on this post repairs stragglers.
func (d *Dispatcher) Refresh(ctx context.Context, post PostRef, likeCount, commentCount int64) (int64, error) {
	score := ComputeScore(post.CreatedAtMillis, likeCount, commentCount)
	if err := d.Fanout(ctx, post.AuthorID, post.ID, score); err != nil {
		return 0, err
	}
	return score, nil
}

// Fanout writes an already-computed score for postID into authorID's feed
// and all follower feeds.
func (d *Dispatcher) Fanout(ctx context.Context, authorID, postID uint, score int64) error {
	if err := d.index.Upsert(ctx, authorID, postID, score); err != nil {
		return err
	}
	followerIDs, err := d.followers.FollowerIDs(ctx, authorID)
	if err != nil {
		return err
	}
	return d.index.UpsertBatch(ctx, followerIDs, postID, score)
}

// Retract removes postID from the author's feed and all current follower
// feeds, for when a post is deleted. A follower who unfollowed since the last
// fan-out keeps a stale entry; the reader drops it at hydration time.
func (d *Dispatcher) Retract(ctx context.Context, authorID, postID uint) error {
	if err := d.index.Remove(ctx, authorID, postID); err != nil {
		return err
	}
	followerIDs, err := d.followers.FollowerIDs(ctx, authorID)
	if err != nil {
		return err
	}
	return d.index.RemoveBatch(ctx, followerIDs, postID)
}
