package seed

import (
	"fmt"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"

	"gorm.io/gorm"
)

// Options configures a seeding run.
type Options struct {
	NumUsers       int
	NumMessages    int
	FollowsPerUser int
	LikesPerUser   int
	ShouldClean    bool
	// Seed fixes the fake data generator; zero means random.
	Seed       int64
	BcryptCost int
	MaxAge     time.Duration
}

// Summary reports how many rows a run created.
type Summary struct {
	Users    int
	Follows  int
	Messages int
	Likes    int
}

// Seeder populates a database with a connected social graph.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder for db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	if opts.MaxAge <= 0 {
		opts.MaxAge = 30 * 24 * time.Hour
	}
	f, err := NewFactory(db, opts.Seed, opts.BcryptCost)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: f, opts: opts}, nil
}

// ClearAll deletes every row, children before parents.
func (s *Seeder) ClearAll() error {
	for _, model := range []interface{}{
		&models.LikedMessage{},
		&models.Follow{},
		&models.Message{},
		&models.User{},
	} {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run seeds users, follows, messages and likes according to the options.
func (s *Seeder) Run() (Summary, error) {
	var sum Summary
	if s.opts.ShouldClean {
		if err := s.ClearAll(); err != nil {
			return sum, err
		}
	}

	users, err := s.SeedUsers(s.opts.NumUsers)
	if err != nil {
		return sum, fmt.Errorf("seed users: %w", err)
	}
	sum.Users = len(users)

	if sum.Follows, err = s.SeedFollows(users, s.opts.FollowsPerUser); err != nil {
		return sum, fmt.Errorf("seed follows: %w", err)
	}

	msgs, err := s.SeedMessages(users, s.opts.NumMessages)
	if err != nil {
		return sum, fmt.Errorf("seed messages: %w", err)
	}
	sum.Messages = len(msgs)

	if sum.Likes, err = s.SeedLikes(users, msgs, s.opts.LikesPerUser); err != nil {
		return sum, fmt.Errorf("seed likes: %w", err)
	}

	middleware.Logger.Info("seeding complete",
		"users", sum.Users, "follows", sum.Follows, "messages", sum.Messages, "likes", sum.Likes)
	return sum, nil
}

// SeedUsers creates n users.
func (s *Seeder) SeedUsers(n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	for i := 0; i < n; i++ {
		u, err := s.factory.CreateUser()
		if err != nil {
			return users, err
		}
		users = append(users, u)
	}
	return users, nil
}

// SeedFollows makes each user follow up to perUser distinct other users.
func (s *Seeder) SeedFollows(users []*models.User, perUser int) (int, error) {
	if len(users) < 2 {
		return 0, nil
	}
	if perUser > len(users)-1 {
		perUser = len(users) - 1
	}

	created := 0
	for i, follower := range users {
		for _, j := range s.pickIndexes(len(users), perUser, i) {
			if err := s.factory.Follow(follower, users[j]); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// SeedMessages spreads n messages across random authors.
func (s *Seeder) SeedMessages(users []*models.User, n int) ([]*models.Message, error) {
	if len(users) == 0 {
		return nil, nil
	}
	msgs := make([]*models.Message, 0, n)
	for i := 0; i < n; i++ {
		author := users[s.factory.faker.Number(0, len(users)-1)]
		m, err := s.factory.CreateMessage(author, s.opts.MaxAge)
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// SeedLikes has each user like up to perUser distinct messages written by others.
func (s *Seeder) SeedLikes(users []*models.User, msgs []*models.Message, perUser int) (int, error) {
	created := 0
	for _, u := range users {
		var candidates []*models.Message
		for _, m := range msgs {
			if m.UserID != u.ID {
				candidates = append(candidates, m)
			}
		}
		k := perUser
		if k > len(candidates) {
			k = len(candidates)
		}
		for _, j := range s.pickIndexes(len(candidates), k, -1) {
			if err := s.factory.Like(u, candidates[j]); err != nil {
				return created, err
			}
			created++
		}
	}
	return created, nil
}

// pickIndexes returns k distinct indexes in [0, n) excluding skip.
func (s *Seeder) pickIndexes(n, k, skip int) []int {
	pool := make([]int, 0, n)
	for i := 0; i < n; i++ {
		if i != skip {
			pool = append(pool, i)
		}
	}
	s.factory.faker.ShuffleInts(pool)
	if k > len(pool) {
		k = len(pool)
	}
	if k < 0 {
		k = 0
	}
	return pool[:k]
}
