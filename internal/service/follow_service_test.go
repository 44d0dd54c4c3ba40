package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowService_FollowAndUnfollow(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	res, err := env.followSvc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusFollowed, res.Status)

	following, err := env.followSvc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, following)

	res, err = env.followSvc.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusUnfollowed, res.Status)

	following, err = env.followSvc.IsFollowing(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, following)
}

func TestFollowService_RepeatOperationsAreStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	_, err := env.followSvc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	res, err := env.followSvc.Follow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusAlreadyFollowing, res.Status)

	_, err = env.followSvc.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	res, err = env.followSvc.Unfollow(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusNotFollowing, res.Status)
}

func TestFollowService_SelfFollowRejected(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	_, err := env.followSvc.Follow(context.Background(), alice.ID, alice.ID)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")

	_, err = env.followSvc.Unfollow(context.Background(), alice.ID, alice.ID)
	assertAppErrorCode(t, err, "VALIDATION_ERROR")
}

func TestFollowService_FollowMissingUser(t *testing.T) {
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	_, err := env.followSvc.Follow(context.Background(), alice.ID, 9999)
	assertAppErrorCode(t, err, "NOT_FOUND")
}

func TestFollowService_NewFollowerCatchesNextEvent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	author := env.createUser(t, "author")
	late := env.createUser(t, "latecomer")
	liker := env.createUser(t, "liker")

	post := env.createPost(t, author.ID, "hello")

	// Followed after the post was fanned out: feed is still empty.
	env.follow(t, late.ID, author.ID)
	assert.Empty(t, env.feedIDs(t, late.ID))

	// The next engagement event on the post reaches the new follower.
	_, err := env.likeSvc.Like(ctx, liker.ID, post.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{post.ID}, env.feedIDs(t, late.ID))
}

func TestFollowService_FollowersAndFollowing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")
	carol := env.createUser(t, "carol")

	env.follow(t, bob.ID, alice.ID)
	env.follow(t, carol.ID, alice.ID)
	env.follow(t, alice.ID, bob.ID)

	followers, err := env.followSvc.Followers(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, followers, 2)

	following, err := env.followSvc.Following(ctx, alice.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, following, 1)
	assert.Equal(t, bob.ID, following[0].ID)
}
