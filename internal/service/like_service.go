package service

import (
	"context"

	"ripple/internal/feed"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// Like operation statuses. Re-liking and un-liking twice are reported as
// statuses, never as errors.
const (
	StatusLiked        = "LIKED_SUCCESSFULLY"
	StatusAlreadyLiked = "ALREADY_LIKED"
	StatusUnliked      = "UNLIKED_SUCCESSFULLY"
	StatusNotLiked     = "NOT_LIKED"
)

// LikeService handles like and unlike flows: cache counters move first, the
// durable mirror row follows, then the post's feed score is refreshed.
type LikeService struct {
	postRepo   repository.PostRepository
	likeRepo   repository.LikeRepository
	counters   *feed.Counters
	dispatcher *feed.Dispatcher
}

// LikeResult is the outcome of a like or unlike operation.
type LikeResult struct {
	Status    string `json:"status"`
	LikeCount int64  `json:"like_count"`
}

// NewLikeService returns a new LikeService.
func NewLikeService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	counters *feed.Counters,
	dispatcher *feed.Dispatcher,
) *LikeService {
	return &LikeService{
		postRepo:   postRepo,
		likeRepo:   likeRepo,
		counters:   counters,
		dispatcher: dispatcher,
	}
}

// Like records userID's like of postID and refreshes the post's rank. A
// repeat like returns ALREADY_LIKED with the current count and changes
// nothing.
func (s *LikeService) Like(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.counters.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if liked {
		count, err := s.counters.LikeCount(ctx, postID)
		if err != nil {
			return nil, err
		}
		return &LikeResult{Status: StatusAlreadyLiked, LikeCount: count}, nil
	}

	likeCount, err := s.counters.AddLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if err := s.likeRepo.Create(ctx, userID, postID); err != nil {
		return nil, err
	}

	if err := s.refreshScore(ctx, post, likeCount); err != nil {
		return nil, err
	}
	return &LikeResult{Status: StatusLiked, LikeCount: likeCount}, nil
}

// Unlike removes userID's like of postID. Unliking a post that was never
// liked returns NOT_LIKED and changes nothing.
func (s *LikeService) Unlike(ctx context.Context, userID, postID uint) (*LikeResult, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	liked, err := s.counters.IsLiked(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if !liked {
		count, err := s.counters.LikeCount(ctx, postID)
		if err != nil {
			return nil, err
		}
		return &LikeResult{Status: StatusNotLiked, LikeCount: count}, nil
	}

	likeCount, err := s.counters.RemoveLike(ctx, userID, postID)
	if err != nil {
		return nil, err
	}
	if err := s.likeRepo.Delete(ctx, userID, postID); err != nil {
		return nil, err
	}

	if err := s.refreshScore(ctx, post, likeCount); err != nil {
		return nil, err
	}
	return &LikeResult{Status: StatusUnliked, LikeCount: likeCount}, nil
}

// refreshScore recomputes the post's rank from the new like count and the
// current comment count, then fans it out.
func (s *LikeService) refreshScore(ctx context.Context, post *models.Post, likeCount int64) error {
	commentCount, err := s.counters.CommentCount(ctx, post.ID)
	if err != nil {
		return err
	}
	ref := feed.PostRef{
		ID:              post.ID,
		AuthorID:        post.AuthorID,
		CreatedAtMillis: post.CreatedAtMillis(),
	}
	_, err = s.dispatcher.Refresh(ctx, ref, likeCount, commentCount)
	return err
}

// LikeCount returns the post's like count, verifying the post exists.
func (s *LikeService) LikeCount(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return 0, err
	}
	return s.counters.LikeCount(ctx, postID)
}

// HasLiked reports whether userID currently likes postID.
func (s *LikeService) HasLiked(ctx context.Context, userID, postID uint) (bool, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return false, err
	}
	return s.counters.IsLiked(ctx, userID, postID)
}

// RecentLikers returns up to limit users who most recently liked the post.
func (s *LikeService) RecentLikers(ctx context.Context, postID uint, limit int) ([]models.User, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	return s.likeRepo.RecentLikers(ctx, postID, limit)
}
