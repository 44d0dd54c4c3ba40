package seed

import (
	"testing"

	"ripple/internal/database"
	"ripple/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func TestRun_CreatesConnectedGraph(t *testing.T) {
	db := newTestDB(t)

	res, err := Run(db, Options{NumUsers: 5, NumPosts: 10, Seed: 42})
	require.NoError(t, err)
	assert.Len(t, res.Users, 5)
	assert.Len(t, res.Posts, 10)
	assert.Greater(t, res.Follows, 0)

	var userCount, postCount, followCount int64
	require.NoError(t, db.Model(&models.User{}).Count(&userCount).Error)
	require.NoError(t, db.Model(&models.Post{}).Count(&postCount).Error)
	require.NoError(t, db.Model(&models.Follow{}).Count(&followCount).Error)
	assert.Equal(t, int64(5), userCount)
	assert.Equal(t, int64(10), postCount)
	assert.Greater(t, followCount, int64(0))

	// No self-follows.
	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).
		Where("follower_id = following_id").Count(&selfFollows).Error)
	assert.Equal(t, int64(0), selfFollows)

	// No duplicate like pairs.
	var likeCount int64
	require.NoError(t, db.Model(&models.Like{}).Count(&likeCount).Error)
	type pair struct {
		UserID uint
		PostID uint
	}
	var pairs []pair
	require.NoError(t, db.Model(&models.Like{}).
		Distinct("user_id", "post_id").Find(&pairs).Error)
	assert.Equal(t, likeCount, int64(len(pairs)))
}

func TestRun_RequiresUsers(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, Options{NumUsers: 1})
	assert.Error(t, err)
}

func TestRun_CleanRemovesExistingRows(t *testing.T) {
	db := newTestDB(t)

	_, err := Run(db, Options{NumUsers: 3, NumPosts: 4, Seed: 1})
	require.NoError(t, err)

	res, err := Run(db, Options{NumUsers: 3, NumPosts: 4, Seed: 2, ShouldClean: true})
	require.NoError(t, err)
	assert.Len(t, res.Users, 3)

	var userCount int64
	require.NoError(t, db.Unscoped().Model(&models.User{}).Count(&userCount).Error)
	assert.Equal(t, int64(3), userCount)
}
