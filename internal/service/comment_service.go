package service

import (
	"context"
	"strings"

	"ripple/internal/feed"
	"ripple/internal/models"
	"ripple/internal/repository"
)

// Comment operation statuses.
const (
	StatusCommentAdded   = "COMMENT_ADDED"
	StatusCommentDeleted = "COMMENT_DELETED"
)

const maxCommentTextLen = 2000

// CommentService handles comment flows and the score refreshes they trigger.
type CommentService struct {
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	counters    *feed.Counters
	dispatcher  *feed.Dispatcher
}

// CommentResult is the outcome of an add or delete comment operation.
type CommentResult struct {
	Comment      *models.Comment `json:"comment,omitempty"`
	Status       string          `json:"status"`
	CommentCount int64           `json:"comment_count"`
}

// NewCommentService returns a new CommentService.
func NewCommentService(
	postRepo repository.PostRepository,
	commentRepo repository.CommentRepository,
	counters *feed.Counters,
	dispatcher *feed.Dispatcher,
) *CommentService {
	return &CommentService{
		postRepo:    postRepo,
		commentRepo: commentRepo,
		counters:    counters,
		dispatcher:  dispatcher,
	}
}

// AddComment persists a comment on postID, bumps the cached comment count,
// and refreshes the post's rank.
func (s *CommentService) AddComment(ctx context.Context, userID, postID uint, text string) (*CommentResult, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(text) > maxCommentTextLen {
		return nil, models.NewValidationError("Text too long (max 2000 characters)")
	}

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	comment := &models.Comment{
		Text:   text,
		PostID: postID,
		UserID: userID,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	commentCount, err := s.counters.IncrComments(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshScore(ctx, post, commentCount); err != nil {
		return nil, err
	}
	return &CommentResult{Comment: comment, Status: StatusCommentAdded, CommentCount: commentCount}, nil
}

// DeleteComment removes userID's comment. Only the comment's author may
// delete it; the ownership check runs before any side effect, so a forbidden
// request never moves a counter.
func (s *CommentService) DeleteComment(ctx context.Context, userID, commentID uint) (*CommentResult, error) {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		return nil, err
	}
	if comment.UserID != userID {
		return nil, models.NewForbiddenError("You can only delete your own comments")
	}

	post, err := s.postRepo.GetByID(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}

	if err := s.commentRepo.Delete(ctx, commentID); err != nil {
		return nil, err
	}
	commentCount, err := s.counters.DecrComments(ctx, comment.PostID)
	if err != nil {
		return nil, err
	}
	if err := s.refreshScore(ctx, post, commentCount); err != nil {
		return nil, err
	}
	return &CommentResult{Status: StatusCommentDeleted, CommentCount: commentCount}, nil
}

func (s *CommentService) refreshScore(ctx context.Context, post *models.Post, commentCount int64) error {
	likeCount, err := s.counters.LikeCount(ctx, post.ID)
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

// ListComments returns the post's comments, newest first.
func (s *CommentService) ListComments(ctx context.Context, postID uint, limit, offset int) ([]*models.Comment, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = feed.DefaultPageSize
	}
	if limit > feed.MaxPageSize {
		limit = feed.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.commentRepo.ListByPost(ctx, postID, limit, offset)
}

// CommentCount returns the post's comment count, verifying the post exists.
func (s *CommentService) CommentCount(ctx context.Context, postID uint) (int64, error) {
	if _, err := s.postRepo.GetByID(ctx, postID); err != nil {
		return 0, err
	}
	return s.counters.CommentCount(ctx, postID)
}
