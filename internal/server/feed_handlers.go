package server

import (
	"strconv"

	"ripple/internal/feed"
	"ripple/internal/models"

	"github.com/gofiber/fiber/v2"
)

// feedChronoFlag switches a user's home feed to a plain chronological query
// against the durable store, bypassing the Redis index entirely. It exists as
// a kill switch for ranked reads.
const feedChronoFlag = "feed_chronological"

// GetHomeFeed handles GET /api/feed. The cursor query parameter is the opaque
// value returned as next_cursor by the previous page; omit it for the first
// page.
func (s *Server) GetHomeFeed(c *fiber.Ctx) error {
	cursor := c.Query("cursor")
	limit := c.QueryInt("limit", feed.DefaultPageSize)
	userID := currentUserID(c)

	if s.flags.Enabled(feedChronoFlag, userID) {
		return s.chronologicalFeed(c, userID, cursor, limit)
	}

	page, err := s.feedReader.HomeFeed(c.Context(), userID, cursor, limit)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(page)
}

// chronologicalFeed serves newest-first posts from followed authors plus the
// user's own. Cursor semantics match the ranked path: a stringified offset.
func (s *Server) chronologicalFeed(c *fiber.Ctx, userID uint, cursor string, limit int) error {
	var offset int
	if cursor != "" {
		v, err := strconv.Atoi(cursor)
		if err != nil || v < 0 {
			return models.RespondWithError(c, fiber.StatusBadRequest,
				models.NewValidationError("Invalid cursor"))
		}
		offset = v
	}
	if limit <= 0 {
		limit = feed.DefaultPageSize
	}
	if limit > feed.MaxPageSize {
		limit = feed.MaxPageSize
	}

	authorIDs, err := s.followRepo.FollowingIDs(c.Context(), userID)
	if err != nil {
		return s.respondError(c, err)
	}
	authorIDs = append(authorIDs, userID)

	posts, err := s.postRepo.RecentByAuthors(c.Context(), authorIDs, limit, offset)
	if err != nil {
		return s.respondError(c, err)
	}

	page := &feed.Page{Edges: posts, Status: feed.StatusFeedFetched}
	if posts == nil {
		page.Edges = []*models.Post{}
	}
	if len(posts) == 0 {
		page.Status = feed.StatusEmptyFeed
	} else if len(posts) == limit {
		next := strconv.Itoa(offset + limit)
		page.NextCursor = &next
	}
	return c.JSON(page)
}
