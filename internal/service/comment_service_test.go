package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommentService_AddComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "hello")

	res, err := env.commentSvc.AddComment(ctx, commenter.ID, post.ID, "nice post")
	require.NoError(t, err)
	assert.Equal(t, StatusCommentAdded, res.Status)
	assert.Equal(t, int64(1), res.CommentCount)
	require.NotNil(t, res.Comment)
	assert.Equal(t, "nice post", res.Comment.Text)
	assert.Equal(t, commenter.ID, res.Comment.UserID)

	res, err = env.commentSvc.AddComment(ctx, author.ID, post.ID, "thanks")
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.CommentCount)
}

func TestCommentService_AddCommentValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.commentSvc.AddComment(ctx, author.ID, post.ID, "   ")
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = env.commentSvc.AddComment(ctx, author.ID, post.ID, strings.Repeat("x", 2001))
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	// Validation failures never move the counter.
	count, err := env.commentSvc.CommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestCommentService_AddCommentMissingPost(t *testing.T) {
	env := newTestEnv(t)
	user := env.createUser(t, "user")

	_, err := env.commentSvc.AddComment(context.Background(), user.ID, 9999, "hello")
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestCommentService_DeleteComment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	post := env.createPost(t, author.ID, "hello")

	added, err := env.commentSvc.AddComment(ctx, commenter.ID, post.ID, "first")
	require.NoError(t, err)

	res, err := env.commentSvc.DeleteComment(ctx, commenter.ID, added.Comment.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCommentDeleted, res.Status)
	assert.Equal(t, int64(0), res.CommentCount)
}

func TestCommentService_DeleteCommentForbiddenBeforeSideEffects(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	commenter := env.createUser(t, "commenter")
	intruder := env.createUser(t, "intruder")
	post := env.createPost(t, author.ID, "hello")

	added, err := env.commentSvc.AddComment(ctx, commenter.ID, post.ID, "mine")
	require.NoError(t, err)

	_, err = env.commentSvc.DeleteComment(ctx, intruder.ID, added.Comment.ID)
	assertAppErrorCode(t, err, "FORBIDDEN")

	// The comment and its counter are untouched.
	count, err := env.commentSvc.CommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	comments, err := env.commentSvc.ListComments(ctx, post.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, comments, 1)
}

func TestCommentService_CountSurvivesCacheFlush(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.commentSvc.AddComment(ctx, author.ID, post.ID, "one")
	require.NoError(t, err)
	_, err = env.commentSvc.AddComment(ctx, author.ID, post.ID, "two")
	require.NoError(t, err)

	env.mr.FlushAll()

	count, err := env.commentSvc.CommentCount(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}
