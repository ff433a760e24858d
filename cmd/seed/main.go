// Command main runs the database seeder for framez.
package main

import (
	"context"
	"flag"
	"log"
	"time"

	"framez/internal/config"
	"framez/internal/database"
	"framez/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 20, "Number of users to create")
	numPosts := flag.Int("posts", 100, "Number of posts to create")
	maxComments := flag.Int("comments", 5, "Maximum comments per post")
	likeProbability := flag.Float64("likes", 0.3, "Probability that a user likes a post")
	repostProbability := flag.Float64("reposts", 0.15, "Probability that a post is reposted")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	randSeed := flag.Int64("seed", time.Now().UnixNano(), "Random seed for generated content")
	flag.Parse()

	log.Println("🌱 Database Seeder")
	log.Println("==================")

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx := context.Background()
	db, err := database.Connect(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	res, err := seed.NewSeeder(db, *randSeed).Seed(ctx, seed.Options{
		NumUsers:           *numUsers,
		NumPosts:           *numPosts,
		MaxCommentsPerPost: *maxComments,
		LikeProbability:    *likeProbability,
		RepostProbability:  *repostProbability,
		Clean:              *shouldClean,
	})
	if err != nil {
		log.Fatalf("❌ Seeding failed: %v", err)
	}

	log.Printf("✨ Seeded %d users and %d posts.", len(res.Users), len(res.Posts))
	log.Printf("📧 All seeded users have the password: %s", seed.DefaultPassword)
}
