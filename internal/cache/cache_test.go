package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type profile struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	SetClient(rdb)
	t.Cleanup(func() {
		SetClient(nil)
		_ = rdb.Close()
		mr.Close()
	})
	return mr
}

func TestAside_FetchesOnceThenServesFromRedis(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *profile) func() error {
		return func() error {
			calls++
			*dest = profile{ID: 1, Username: "u1"}
			return nil
		}
	}

	var first profile
	require.NoError(t, Aside(ctx, UserKey(1), &first, UserTTL, fetch(&first)))
	assert.Equal(t, "u1", first.Username)
	assert.True(t, mr.Exists("user:1"))

	var second profile
	require.NoError(t, Aside(ctx, UserKey(1), &second, UserTTL, fetch(&second)))
	assert.Equal(t, "u1", second.Username)
	assert.Equal(t, 1, calls)
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	boom := errors.New("not found")
	var p profile
	err := Aside(ctx, UserKey(2), &p, UserTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("user:2"))
}

func TestInvalidateUser(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	require.NoError(t, SetJSON(ctx, UserKey(3), profile{ID: 3}, UserTTL))
	require.True(t, mr.Exists("user:3"))

	InvalidateUser(ctx, 3)
	assert.False(t, mr.Exists("user:3"))
}

func TestNilClientIsNoop(t *testing.T) {
	SetClient(nil)
	ctx := context.Background()

	found, err := GetJSON(ctx, UserKey(4), &profile{})
	assert.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, SetJSON(ctx, UserKey(4), profile{}, UserTTL))
	InvalidateUser(ctx, 4)
}
