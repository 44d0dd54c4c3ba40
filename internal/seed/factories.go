// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"math/rand"
	"time"

	"ripple/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Factory builds domain entities and persists them to the database.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	seedVal := opts.Seed
	if seedVal == 0 {
		seedVal = time.Now().UnixNano()
	}
	gofakeit.Seed(seedVal)
	return &Factory{db: db, opts: opts, rng: rand.New(rand.NewSource(seedVal))}
}

// sharedPasswordHash is computed once; bcrypt per-user is too slow for big seeds.
var sharedPasswordHash []byte

func (f *Factory) passwordHash() string {
	if sharedPasswordHash == nil {
		sharedPasswordHash, _ = bcrypt.GenerateFromPassword([]byte("SeededPass12!"), bcrypt.MinCost)
	}
	return string(sharedPasswordHash)
}

// CreateUser persists a user with fake but plausible profile fields.
func (f *Factory) CreateUser(i int) (*models.User, error) {
	user := &models.User{
		Username:  fmt.Sprintf("%s_%s%d", gofakeit.Adjective(), gofakeit.PetName(), i),
		Email:     fmt.Sprintf("user%d@%s", i, gofakeit.DomainName()),
		Password:  f.passwordHash(),
		Bio:       gofakeit.Sentence(8),
		AvatarURL: fmt.Sprintf("https://picsum.photos/seed/%s/200/200", gofakeit.UUID()),
	}
	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// CreatePost persists a post for the author with a created_at spread over the
// recent past, so seeded feeds have a realistic recency distribution.
func (f *Factory) CreatePost(author *models.User) (*models.Post, error) {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 30
	}
	age := time.Duration(f.rng.Intn(maxDays*24*60)) * time.Minute

	post := &models.Post{
		Text:     gofakeit.Paragraph(1, 3, 8, " "),
		AuthorID: author.ID,
	}
	if f.rng.Intn(4) == 0 {
		post.MediaURL = fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID())
	}
	post.CreatedAt = time.Now().Add(-age)

	if err := f.db.Create(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// CreateComment persists a comment by the user on the post.
func (f *Factory) CreateComment(user *models.User, post *models.Post) (*models.Comment, error) {
	comment := &models.Comment{
		Text:   gofakeit.Sentence(f.rng.Intn(12) + 3),
		PostID: post.ID,
		UserID: user.ID,
	}
	if err := f.db.Create(comment).Error; err != nil {
		return nil, err
	}
	return comment, nil
}

// CreateLike persists a like row; duplicate pairs are skipped by the unique index.
func (f *Factory) CreateLike(user *models.User, post *models.Post) error {
	like := &models.Like{UserID: user.ID, PostID: post.ID}
	return f.db.Where("user_id = ? AND post_id = ?", user.ID, post.ID).
		FirstOrCreate(like).Error
}

// CreateFollow persists a follow edge; self-edges and duplicates are skipped.
func (f *Factory) CreateFollow(follower, following *models.User) error {
	if follower.ID == following.ID {
		return nil
	}
	follow := &models.Follow{FollowerID: follower.ID, FollowingID: following.ID}
	return f.db.Where("follower_id = ? AND following_id = ?", follower.ID, following.ID).
		FirstOrCreate(follow).Error
}
