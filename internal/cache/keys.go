package cache

import "fmt"

// Key schema shared by the feed index and the engagement counters. All four
// live in the same logical namespace so a wholesale FLUSHDB wipes the derived
// state together; everything here is rebuildable from the durable store.
const (
	feedKeyPrefix         = "feed:user:%d"
	likeCountKeyPrefix    = "like:count:%d"
	likeMembersKeyPrefix  = "like:user:%d"
	commentCountKeyPrefix = "comment:count:%d"
)

// FeedKey is the per-user ranked feed sorted set (postID -> score).
func FeedKey(userID uint) string {
	return fmt.Sprintf(feedKeyPrefix, userID)
}

// LikeCountKey is the cached like counter for a post.
func LikeCountKey(postID uint) string {
	return fmt.Sprintf(likeCountKeyPrefix, postID)
}

// LikeMembersKey is the set of user IDs that currently like a post.
func LikeMembersKey(postID uint) string {
	return fmt.Sprintf(likeMembersKeyPrefix, postID)
}

// CommentCountKey is the cached comment counter for a post.
func CommentCountKey(postID uint) string {
	return fmt.Sprintf(commentCountKeyPrefix, postID)
}
