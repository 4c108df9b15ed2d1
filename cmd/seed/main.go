// Command seed runs the database seeder for Warbler.
package main

import (
	"flag"
	"log"

	"warbler/internal/config"
	"warbler/internal/database"
	"warbler/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 50, "Number of users to create")
	numMessages := flag.Int("messages", 300, "Number of messages to create")
	follows := flag.Int("follows", 8, "Follows per user")
	likes := flag.Int("likes", 15, "Likes per user")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	fakerSeed := flag.Int64("seed", 0, "Fake data seed (0 picks a random one)")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	s, err := seed.NewSeeder(db, seed.Options{
		NumUsers:       *numUsers,
		NumMessages:    *numMessages,
		FollowsPerUser: *follows,
		LikesPerUser:   *likes,
		ShouldClean:    *shouldClean,
		Seed:           *fakerSeed,
		BcryptCost:     cfg.BcryptCost,
	})
	if err != nil {
		log.Fatalf("Seeder setup failed: %v", err)
	}

	sum, err := s.Run()
	if err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Printf("Created %d users, %d follows, %d messages, %d likes", sum.Users, sum.Follows, sum.Messages, sum.Likes)
	log.Printf("All seeded users have the password: %s", seed.DefaultPassword)
}
