package seed

import (
	"context"
	"testing"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestSeeder_Run(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{
		NumUsers:       6,
		NumMessages:    20,
		FollowsPerUser: 3,
		LikesPerUser:   4,
		Seed:           42,
		BcryptCost:     bcrypt.MinCost,
	})
	require.NoError(t, err)

	sum, err := s.Run()
	require.NoError(t, err)
	assert.Equal(t, 6, sum.Users)
	assert.Equal(t, 18, sum.Follows)
	assert.Equal(t, 20, sum.Messages)
	assert.Positive(t, sum.Likes)
	assert.LessOrEqual(t, sum.Likes, 24)

	var selfFollows int64
	require.NoError(t, db.Model(&models.Follow{}).Where("follower_id = followed_id").Count(&selfFollows).Error)
	assert.Zero(t, selfFollows)

	var ownLikes int64
	require.NoError(t, db.Model(&models.LikedMessage{}).
		Joins("JOIN messages ON messages.id = liked_messages.message_id").
		Where("messages.user_id = liked_messages.user_id").
		Count(&ownLikes).Error)
	assert.Zero(t, ownLikes)

	var long int64
	require.NoError(t, db.Model(&models.Message{}).Where("length(text) > ?", models.MaxMessageLength).Count(&long).Error)
	assert.Zero(t, long)
}

func TestSeeder_UsersCanSignIn(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{Seed: 7, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	users, err := s.SeedUsers(2)
	require.NoError(t, err)

	stored, err := repository.NewStore(db).Users().GetByUsername(context.Background(), users[0].Username)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(DefaultPassword)))
}

func TestSeeder_ClearAll(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{NumUsers: 3, NumMessages: 5, FollowsPerUser: 1, LikesPerUser: 1, Seed: 1, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)
	_, err = s.Run()
	require.NoError(t, err)

	require.NoError(t, s.ClearAll())
	for _, model := range []interface{}{&models.User{}, &models.Message{}, &models.Follow{}, &models.LikedMessage{}} {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		assert.Zero(t, n, "%T", model)
	}
}

func TestSeedFollows_FewUsers(t *testing.T) {
	db := testutil.NewTestDB(t)
	s, err := NewSeeder(db, Options{Seed: 3, BcryptCost: bcrypt.MinCost})
	require.NoError(t, err)

	users, err := s.SeedUsers(2)
	require.NoError(t, err)
	n, err := s.SeedFollows(users, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = s.SeedFollows(users[:1], 10)
	require.NoError(t, err)
	assert.Zero(t, n)
}
