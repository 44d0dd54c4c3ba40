package service

import (
	"context"
	"testing"

	"ripple/internal/database"
	"ripple/internal/feed"
	"ripple/internal/models"
	"ripple/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the services over an in-memory SQLite database and a
// miniredis instance, mirroring the production dependency graph.
type testEnv struct {
	db  *gorm.DB
	mr  *miniredis.Miniredis
	rdb *redis.Client

	users    repository.UserRepository
	posts    repository.PostRepository
	comments repository.CommentRepository
	likes    repository.LikeRepository
	follows  repository.FollowRepository

	index      *feed.Index
	counters   *feed.Counters
	dispatcher *feed.Dispatcher

	postSvc    *PostService
	likeSvc    *LikeService
	commentSvc *CommentService
	followSvc  *FollowService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	env := &testEnv{
		db:       db,
		mr:       mr,
		rdb:      rdb,
		users:    repository.NewUserRepository(db),
		posts:    repository.NewPostRepository(db),
		comments: repository.NewCommentRepository(db),
		likes:    repository.NewLikeRepository(db),
		follows:  repository.NewFollowRepository(db),
	}
	env.index = feed.NewIndex(rdb)
	env.counters = feed.NewCounters(rdb, repository.NewEngagementStore(env.likes, env.comments))
	env.dispatcher = feed.NewDispatcher(env.index, env.follows)

	env.postSvc = NewPostService(env.posts, env.counters, env.dispatcher)
	env.likeSvc = NewLikeService(env.posts, env.likes, env.counters, env.dispatcher)
	env.commentSvc = NewCommentService(env.posts, env.comments, env.counters, env.dispatcher)
	env.followSvc = NewFollowService(env.follows, env.users)

	return env
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) createPost(t *testing.T, authorID uint, text string) *models.Post {
	t.Helper()
	result, err := e.postSvc.CreatePost(context.Background(), CreatePostInput{
		UserID: authorID,
		Text:   text,
	})
	require.NoError(t, err)
	return result.Post
}

func (e *testEnv) follow(t *testing.T, followerID, followingID uint) {
	t.Helper()
	_, err := e.followSvc.Follow(context.Background(), followerID, followingID)
	require.NoError(t, err)
}

// feedIDs returns the post IDs currently in userID's feed, highest score first.
func (e *testEnv) feedIDs(t *testing.T, userID uint) []uint {
	t.Helper()
	ids, err := e.index.RangeDescending(context.Background(), userID, 0, 99)
	require.NoError(t, err)
	return ids
}

func assertAppErrorCode(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	require.Equal(t, code, appErr.Code)
}
