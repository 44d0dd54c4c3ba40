// Package service implements the application's business logic on top of the
// repository and feed layers.
package service

import (
	"context"
	"strings"

	"ripple/internal/feed"
	"ripple/internal/models"
	"ripple/internal/observability"
	"ripple/internal/repository"
)

// Post operation statuses.
const (
	StatusPostCreated = "POST_CREATED_SUCCESSFULLY"
	StatusPostDeleted = "POST_DELETED_SUCCESSFULLY"
)

const maxPostTextLen = 5000

// PostService handles post creation, reads, and deletion, driving feed
// fan-out on every mutation.
type PostService struct {
	postRepo   repository.PostRepository
	counters   *feed.Counters
	dispatcher *feed.Dispatcher
	fanoutLog  *observability.FanoutLogger
}

// CreatePostInput carries the fields for creating a post.
type CreatePostInput struct {
	UserID   uint
	Text     string
	MediaURL string
}

// CreatePostResult is the outcome of a post creation.
type CreatePostResult struct {
	Post   *models.Post `json:"post"`
	Status string       `json:"status"`
}

// PostView is a post with its cached engagement counters attached.
type PostView struct {
	Post         *models.Post `json:"post"`
	LikeCount    int64        `json:"like_count"`
	CommentCount int64        `json:"comment_count"`
}

// NewPostService returns a new PostService.
func NewPostService(
	postRepo repository.PostRepository,
	counters *feed.Counters,
	dispatcher *feed.Dispatcher,
) *PostService {
	return &PostService{
		postRepo:   postRepo,
		counters:   counters,
		dispatcher: dispatcher,
		fanoutLog:  observability.NewFanoutLogger(),
	}
}

// CreatePost persists the post and fans it out to the author's followers
// with a fresh-post score. The post row is written first and survives a
// fan-out failure; the failure itself is surfaced so callers see the
// degraded cache instead of a clean success.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*CreatePostResult, error) {
	text := strings.TrimSpace(in.Text)
	if text == "" {
		return nil, models.NewValidationError("Text is required")
	}
	if len(text) > maxPostTextLen {
		return nil, models.NewValidationError("Text too long (max 5000 characters)")
	}

	post := &models.Post{
		Text:     text,
		MediaURL: in.MediaURL,
		AuthorID: in.UserID,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	ref := feed.PostRef{
		ID:              post.ID,
		AuthorID:        post.AuthorID,
		CreatedAtMillis: post.CreatedAtMillis(),
	}
	if _, err := s.dispatcher.Refresh(ctx, ref, 0, 0); err != nil {
		s.fanoutLog.LogBatchError(ctx, post.AuthorID, post.ID, err)
		return nil, err
	}

	return &CreatePostResult{Post: post, Status: StatusPostCreated}, nil
}

// GetPost returns the post with its current engagement counters.
func (s *PostService) GetPost(ctx context.Context, postID uint) (*PostView, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	likes, err := s.counters.LikeCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	comments, err := s.counters.CommentCount(ctx, postID)
	if err != nil {
		return nil, err
	}
	return &PostView{Post: post, LikeCount: likes, CommentCount: comments}, nil
}

// PostsByAuthor lists an author's posts, newest first.
func (s *PostService) PostsByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]*models.Post, error) {
	if limit <= 0 {
		limit = feed.DefaultPageSize
	}
	if limit > feed.MaxPageSize {
		limit = feed.MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.postRepo.GetByAuthorID(ctx, authorID, limit, offset)
}

// DeletePost removes the post and retracts it from all feeds it was fanned
// out to. Only the author may delete; the ownership check runs before any
// side effect.
func (s *PostService) DeletePost(ctx context.Context, userID, postID uint) (string, error) {
	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return "", err
	}
	if post.AuthorID != userID {
		return "", models.NewForbiddenError("You can only delete your own posts")
	}
	if err := s.postRepo.Delete(ctx, postID); err != nil {
		return "", err
	}
	if err := s.dispatcher.Retract(ctx, post.AuthorID, postID); err != nil {
		s.fanoutLog.LogBatchError(ctx, post.AuthorID, postID, err)
		return "", err
	}
	return StatusPostDeleted, nil
}
