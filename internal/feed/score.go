package feed

// Engagement weights, in milliseconds of equivalent recency boost. Each like
// makes a post rank as if it were 5 seconds newer, each comment 8 seconds.
// A single descending read of the index then yields a recency-biased,
// engagement-boosted order with no separate decay job.
const (
	LikeWeight    = 5000
	CommentWeight = 8000
)

// ComputeScore returns the rank score for a post created at createdAtMillis
// (Unix milliseconds) with the given engagement counters. Pure and
// deterministic; with zero engagement the score equals the creation time.
func ComputeScore(createdAtMillis, likeCount, commentCount int64) int64 {
	return createdAtMillis + likeCount*LikeWeight + commentCount*CommentWeight
}
