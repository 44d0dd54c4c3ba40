// Command seed populates the development database with fake users, posts and
// engagement, and optionally warms the Redis feed indexes so the home feed
// has content immediately.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"

	"ripple/internal/cache"
	"ripple/internal/config"
	"ripple/internal/database"
	"ripple/internal/feed"
	"ripple/internal/repository"
	"ripple/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "number of users to create")
	numPosts := flag.Int("posts", 120, "number of posts to create")
	clean := flag.Bool("clean", false, "delete existing rows before seeding")
	warm := flag.Bool("warm", true, "fan seeded posts out into Redis feed indexes")
	randSeed := flag.Int64("seed", 0, "random seed (0 = from clock)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("connecting to database: %v", err)
	}

	res, err := seed.Run(db, seed.Options{
		NumUsers:    *numUsers,
		NumPosts:    *numPosts,
		ShouldClean: *clean,
		Seed:        *randSeed,
	})
	if err != nil {
		log.Fatalf("seeding: %v", err)
	}
	slog.Info("seed complete",
		"users", len(res.Users), "posts", len(res.Posts),
		"follows", res.Follows, "likes", res.Likes, "comments", res.Comments)

	if !*warm {
		return
	}

	rdb, err := cache.NewClient(cfg.RedisURL)
	if err != nil {
		log.Fatalf("connecting to redis: %v", err)
	}
	defer rdb.Close()

	ctx := context.Background()
	likeRepo := repository.NewLikeRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	index := feed.NewIndex(rdb)
	dispatcher := feed.NewDispatcher(index, followRepo)

	for _, post := range res.Posts {
		likes, err := likeRepo.CountByPost(ctx, post.ID)
		if err != nil {
			log.Fatalf("counting likes for post %d: %v", post.ID, err)
		}
		comments, err := commentRepo.CountByPost(ctx, post.ID)
		if err != nil {
			log.Fatalf("counting comments for post %d: %v", post.ID, err)
		}

		ref := feed.PostRef{
			ID:              post.ID,
			AuthorID:        post.AuthorID,
			CreatedAtMillis: post.CreatedAtMillis(),
		}
		if _, err := dispatcher.Refresh(ctx, ref, likes, comments); err != nil {
			log.Fatalf("warming feed for post %d: %v", post.ID, err)
		}
	}
	slog.Info("feed warm-up complete", "posts", len(res.Posts))
}
