package seed

import (
	"fmt"
	"log/slog"

	"ripple/internal/models"

	"gorm.io/gorm"
)

// Options controls how much data Run generates.
type Options struct {
	NumUsers    int
	NumPosts    int
	ShouldClean bool
	// Seed fixes the random source; 0 means derive one from the clock.
	Seed int64
	// MaxDays bounds how far in the past seeded posts are dated.
	MaxDays int
}

// Result reports what Run created.
type Result struct {
	Users    []*models.User
	Posts    []*models.Post
	Follows  int
	Likes    int
	Comments int
}

// Run populates the database with a connected social graph: users, a follow
// mesh, posts spread over the recent past, and likes and comments on those
// posts. It is idempotent-ish: re-running adds more data rather than failing.
func Run(db *gorm.DB, opts Options) (*Result, error) {
	if opts.NumUsers < 2 {
		return nil, fmt.Errorf("seed requires at least 2 users, got %d", opts.NumUsers)
	}
	if opts.ShouldClean {
		if err := Clean(db); err != nil {
			return nil, fmt.Errorf("cleaning tables: %w", err)
		}
	}

	f := NewFactory(db, opts)
	res := &Result{}

	for i := 0; i < opts.NumUsers; i++ {
		user, err := f.CreateUser(i)
		if err != nil {
			return nil, fmt.Errorf("creating user %d: %w", i, err)
		}
		res.Users = append(res.Users, user)
	}
	slog.Info("seeded users", "count", len(res.Users))

	// Follow mesh: each user follows a random subset of the others, so
	// most users have at least a few followers to fan posts out to.
	for _, follower := range res.Users {
		n := f.rng.Intn(opts.NumUsers/2+1) + 1
		for j := 0; j < n; j++ {
			target := res.Users[f.rng.Intn(len(res.Users))]
			if err := f.CreateFollow(follower, target); err != nil {
				return nil, fmt.Errorf("creating follow: %w", err)
			}
			res.Follows++
		}
	}
	slog.Info("seeded follows", "count", res.Follows)

	for i := 0; i < opts.NumPosts; i++ {
		author := res.Users[f.rng.Intn(len(res.Users))]
		post, err := f.CreatePost(author)
		if err != nil {
			return nil, fmt.Errorf("creating post %d: %w", i, err)
		}
		res.Posts = append(res.Posts, post)
	}
	slog.Info("seeded posts", "count", len(res.Posts))

	for _, post := range res.Posts {
		nLikes := f.rng.Intn(opts.NumUsers)
		for j := 0; j < nLikes; j++ {
			if err := f.CreateLike(res.Users[f.rng.Intn(len(res.Users))], post); err != nil {
				return nil, fmt.Errorf("creating like: %w", err)
			}
			res.Likes++
		}
		nComments := f.rng.Intn(4)
		for j := 0; j < nComments; j++ {
			if _, err := f.CreateComment(res.Users[f.rng.Intn(len(res.Users))], post); err != nil {
				return nil, fmt.Errorf("creating comment: %w", err)
			}
			res.Comments++
		}
	}
	slog.Info("seeded engagement", "likes", res.Likes, "comments", res.Comments)

	return res, nil
}

// Clean removes all seeded rows. Order matters: children before parents.
func Clean(db *gorm.DB) error {
	for _, model := range []interface{}{
		&models.Like{}, &models.Comment{}, &models.Follow{},
		&models.Post{}, &models.User{},
	} {
		if err := db.Unscoped().Where("1 = 1").Delete(model).Error; err != nil {
			return err
		}
	}
	return nil
}
