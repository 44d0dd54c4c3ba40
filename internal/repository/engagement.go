package repository

import "context"

// EngagementStore bundles the durable like and comment rows behind the
// counter cache's fallback interface.
type EngagementStore struct {
	likes    LikeRepository
	comments CommentRepository
}

// NewEngagementStore returns an EngagementStore over the given repositories.
func NewEngagementStore(likes LikeRepository, comments CommentRepository) *EngagementStore {
	return &EngagementStore{likes: likes, comments: comments}
}

// CountLikes returns the authoritative like count for a post.
func (s *EngagementStore) CountLikes(ctx context.Context, postID uint) (int64, error) {
	return s.likes.CountByPost(ctx, postID)
}

// CountComments returns the authoritative comment count for a post.
func (s *EngagementStore) CountComments(ctx context.Context, postID uint) (int64, error) {
	return s.comments.CountByPost(ctx, postID)
}

// HasLiked reports whether the like row exists.
func (s *EngagementStore) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	return s.likes.Exists(ctx, userID, postID)
}
