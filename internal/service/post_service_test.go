package service

import (
	"context"
	"strings"
	"testing"

	"ripple/internal/feed"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreatePostFansOut(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	follower := env.createUser(t, "follower")
	bystander := env.createUser(t, "bystander")
	env.follow(t, follower.ID, author.ID)

	res, err := env.postSvc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, StatusPostCreated, res.Status)
	require.NotNil(t, res.Post)
	assert.NotZero(t, res.Post.ID)

	// Author and follower feeds carry the post; non-followers see nothing.
	assert.Equal(t, []uint{res.Post.ID}, env.feedIDs(t, author.ID))
	assert.Equal(t, []uint{res.Post.ID}, env.feedIDs(t, follower.ID))
	assert.Empty(t, env.feedIDs(t, bystander.ID))
}

func TestPostService_CreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")
	ctx := context.Background()

	_, err := env.postSvc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Text: "  "})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = env.postSvc.CreatePost(ctx, CreatePostInput{
		UserID: author.ID,
		Text:   strings.Repeat("x", 5001),
	})
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestPostService_CreatePostTrimsText(t *testing.T) {
	env := newTestEnv(t)
	author := env.createUser(t, "author")

	res, err := env.postSvc.CreatePost(context.Background(), CreatePostInput{
		UserID: author.ID,
		Text:   "  hello  ",
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", res.Post.Text)
}

func TestPostService_CreatePostSurfacesFanoutFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author")

	env.mr.Close()

	_, err := env.postSvc.CreatePost(ctx, CreatePostInput{UserID: author.ID, Text: "hello"})
	require.ErrorIs(t, err, feed.ErrCacheUnavailable)

	// The post row outlives the failed fan-out; only the feeds lag behind.
	posts, dbErr := env.posts.GetByAuthorID(ctx, author.ID, 10, 0)
	require.NoError(t, dbErr)
	require.Len(t, posts, 1)
	assert.Equal(t, "hello", posts[0].Text)
}

func TestPostService_DeletePostSurfacesRetractFailure(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	author := env.createUser(t, "author")
	post := env.createPost(t, author.ID, "hello")

	env.mr.Close()

	_, err := env.postSvc.DeletePost(ctx, author.ID, post.ID)
	require.ErrorIs(t, err, feed.ErrCacheUnavailable)

	// The row is already gone even though retraction failed.
	_, err = env.posts.GetByID(ctx, post.ID)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestPostService_GetPostWithCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	liker := env.createUser(t, "liker")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.likeSvc.Like(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	_, err = env.commentSvc.AddComment(ctx, liker.ID, post.ID, "hi")
	require.NoError(t, err)

	view, err := env.postSvc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, view.Post.ID)
	assert.Equal(t, int64(1), view.LikeCount)
	assert.Equal(t, int64(1), view.CommentCount)
}

func TestPostService_GetPostMissing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.postSvc.GetPost(context.Background(), 9999)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestPostService_DeletePostRetractsFromFeeds(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	follower := env.createUser(t, "follower")
	env.follow(t, follower.ID, author.ID)
	post := env.createPost(t, author.ID, "hello")

	status, err := env.postSvc.DeletePost(ctx, author.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusPostDeleted, status)

	assert.Empty(t, env.feedIDs(t, author.ID))
	assert.Empty(t, env.feedIDs(t, follower.ID))

	_, err = env.postSvc.GetPost(ctx, post.ID)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestPostService_DeletePostForbidden(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	intruder := env.createUser(t, "intruder")
	post := env.createPost(t, author.ID, "hello")

	_, err := env.postSvc.DeletePost(ctx, intruder.ID, post.ID)
	assertAppErrorCode(t, err, "FORBIDDEN")

	// The post and its feed entries survive.
	view, err := env.postSvc.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, post.ID, view.Post.ID)
	assert.Equal(t, []uint{post.ID}, env.feedIDs(t, author.ID))
}

func TestPostService_PostsByAuthor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	other := env.createUser(t, "other")
	env.createPost(t, author.ID, "one")
	env.createPost(t, author.ID, "two")
	env.createPost(t, other.ID, "theirs")

	posts, err := env.postSvc.PostsByAuthor(ctx, author.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, posts, 2)
	for _, p := range posts {
		assert.Equal(t, author.ID, p.AuthorID)
	}
}
