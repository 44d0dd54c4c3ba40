package feed

import (
	"context"
	"strconv"
	"time"

	"ripple/internal/models"
	"ripple/internal/observability"
)

// PostSource resolves post IDs to full records. Return order is not trusted;
// the reader re-sorts to match the index order.
type PostSource interface {
	PostsByIDs(ctx context.Context, ids []uint) ([]*models.Post, error)
}

// Feed page statuses.
const (
	StatusFeedFetched = "FEED_FETCHED"
	StatusEmptyFeed   = "EMPTY_FEED"
)

// Pagination bounds for home-feed reads.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one window of a user's home feed. NextCursor is nil once a request
// returns fewer than the requested number of entries.
type Page struct {
	Edges      []*models.Post `json:"edges"`
	NextCursor *string        `json:"next_cursor"`
	Status     string         `json:"status"`
}

// Reader serves paginated reads of a user's ranked feed, hydrating index
// entries from the durable store.
type Reader struct {
	index *Index
	posts PostSource
}

// NewReader creates a feed reader over index and posts.
func NewReader(index *Index, posts PostSource) *Reader {
	return &Reader{index: index, posts: posts}
}

// HomeFeed returns one page of userID's feed. cursor is an opaque rank
// offset produced by a previous page ("" means rank 0); limit is clamped to
// [1, MaxPageSize] with DefaultPageSize for non-positive values.
//
// Index entries the durable store cannot resolve are dropped rather than
// erroring: the store is authoritative and the index entry is just stale.
func (r *Reader) HomeFeed(ctx context.Context, userID uint, cursor string, limit int) (*Page, error) {
	start := time.Now()
	defer func() {
		observability.FeedReadLatency.Observe(time.Since(start).Seconds())
	}()

	var startRank int64
	if cursor != "" {
		v, err := strconv.ParseInt(cursor, 10, 64)
		if err != nil || v < 0 {
			return nil, models.NewValidationError("Invalid cursor")
		}
		startRank = v
	}
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	endRank := startRank + int64(limit) - 1

	postIDs, err := r.index.RangeDescending(ctx, userID, startRank, endRank)
	if err != nil {
		return nil, err
	}
	if len(postIDs) == 0 {
		return &Page{Edges: []*models.Post{}, Status: StatusEmptyFeed}, nil
	}

	posts, err := r.posts.PostsByIDs(ctx, postIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint]*models.Post, len(posts))
	for _, p := range posts {
		byID[p.ID] = p
	}

	edges := make([]*models.Post, 0, len(postIDs))
	for _, id := range postIDs {
		if p, ok := byID[id]; ok {
			edges = append(edges, p)
		}
	}

	var nextCursor *string
	if len(postIDs) == limit {
		s := strconv.FormatInt(endRank+1, 10)
		nextCursor = &s
	}

	return &Page{Edges: edges, NextCursor: nextCursor, Status: StatusFeedFetched}, nil
}
