package service

import (
	"context"

	"ripple/internal/models"
	"ripple/internal/repository"
)

// Follow operation statuses.
const (
	StatusFollowed         = "FOLLOWED_SUCCESSFULLY"
	StatusAlreadyFollowing = "ALREADY_FOLLOWING"
	StatusUnfollowed       = "UNFOLLOWED_SUCCESSFULLY"
	StatusNotFollowing     = "NOT_FOLLOWING"
)

// FollowService handles the follow graph.
type FollowService struct {
	followRepo repository.FollowRepository
	userRepo   repository.UserRepository
}

// FollowResult is the outcome of a follow or unfollow operation.
type FollowResult struct {
	Status string `json:"status"`
}

// NewFollowService returns a new FollowService.
func NewFollowService(followRepo repository.FollowRepository, userRepo repository.UserRepository) *FollowService {
	return &FollowService{followRepo: followRepo, userRepo: userRepo}
}

// Follow creates the followerID -> followingID edge. Following someone
// already followed returns ALREADY_FOLLOWING and changes nothing. The new
// edge affects fan-out from the next event on; no backfill of past posts.
func (s *FollowService) Follow(ctx context.Context, followerID, followingID uint) (*FollowResult, error) {
	if followerID == followingID {
		return nil, models.NewValidationError("You cannot follow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return nil, err
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if exists {
		return &FollowResult{Status: StatusAlreadyFollowing}, nil
	}

	if err := s.followRepo.Create(ctx, followerID, followingID); err != nil {
		return nil, err
	}
	return &FollowResult{Status: StatusFollowed}, nil
}

// Unfollow removes the followerID -> followingID edge. Unfollowing someone
// not followed returns NOT_FOLLOWING and changes nothing. Entries already
// fanned out stay in the follower's feed until the post's next event.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followingID uint) (*FollowResult, error) {
	if followerID == followingID {
		return nil, models.NewValidationError("You cannot unfollow yourself")
	}
	if _, err := s.userRepo.GetByID(ctx, followingID); err != nil {
		return nil, err
	}

	exists, err := s.followRepo.Exists(ctx, followerID, followingID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return &FollowResult{Status: StatusNotFollowing}, nil
	}

	if err := s.followRepo.Delete(ctx, followerID, followingID); err != nil {
		return nil, err
	}
	return &FollowResult{Status: StatusUnfollowed}, nil
}

// IsFollowing reports whether followerID follows followingID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	return s.followRepo.Exists(ctx, followerID, followingID)
}

// Followers lists the users following userID.
func (s *FollowService) Followers(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Followers(ctx, userID, clampLimit(limit), clampOffset(offset))
}

// Following lists the users userID follows.
func (s *FollowService) Following(ctx context.Context, userID uint, limit, offset int) ([]models.User, error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.followRepo.Following(ctx, userID, clampLimit(limit), clampOffset(offset))
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return 20
	}
	if limit > 100 {
		return 100
	}
	return limit
}

func clampOffset(offset int) int {
	if offset < 0 {
		return 0
	}
	return offset
}
