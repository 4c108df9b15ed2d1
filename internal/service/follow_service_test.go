package service

import (
	"context"
	"testing"

	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func usernames(users []models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username
	}
	return out
}

func TestFollow_RoundTrip(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()
	u1 := c.signup(t, "testuser1")
	u2 := c.signup(t, "testuser2")

	following, err := c.follows.FollowingOf(ctx, u1.ID)
	require.NoError(t, err)
	assert.NotContains(t, usernames(following), "testuser2")
	ok, err := c.follows.IsFollowing(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, c.follows.Follow(ctx, u1.ID, u2.ID))

	following, err = c.follows.FollowingOf(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"testuser2"}, usernames(following))

	followers, err := c.follows.FollowersOf(ctx, u2.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"testuser1"}, usernames(followers))

	ok, err = c.follows.IsFollowedBy(ctx, u2.ID, u1.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	err = c.follows.Follow(ctx, u1.ID, u2.ID)
	assert.ErrorIs(t, err, models.ErrConstraintViolation)

	require.NoError(t, c.follows.Unfollow(ctx, u1.ID, u2.ID))
	require.NoError(t, c.follows.Unfollow(ctx, u1.ID, u2.ID))
	ok, err = c.follows.IsFollowing(ctx, u1.ID, u2.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFollow_SelfIsInvalidOperation(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()
	u := c.signup(t, "loner")

	err := c.follows.Follow(ctx, u.ID, u.ID)
	assert.ErrorIs(t, err, models.ErrInvalidOperation)

	following, err := c.follows.FollowingOf(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, following)
}

func TestFollow_Errors(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()
	u := c.signup(t, "alice")

	assert.ErrorIs(t, c.follows.Follow(ctx, u.ID, 999), models.ErrNotFound)
	assert.ErrorIs(t, c.follows.Follow(ctx, 0, u.ID), models.ErrUnauthorized)

	_, err := c.follows.FollowersOf(ctx, 999)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestFollowingOf_OrderedByUsername(t *testing.T) {
	c := newCore(t)
	ctx := context.Background()
	me := c.signup(t, "me")
	for _, name := range []string{"zoe", "adam", "mike"} {
		other := c.signup(t, name)
		require.NoError(t, c.follows.Follow(ctx, me.ID, other.ID))
	}

	following, err := c.follows.FollowingOf(ctx, me.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"adam", "mike", "zoe"}, usernames(following))
}
