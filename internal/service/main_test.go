package service

import (
	"context"
	"testing"
	"time"

	"warbler/internal/models"
	"warbler/internal/repository"
	"warbler/internal/testutil"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type core struct {
	db       *gorm.DB
	identity *IdentityService
	follows  *FollowService
	messages *MessageService
	likes    *LikeService
}

func newCore(t *testing.T) *core {
	t.Helper()
	db := testutil.NewTestDB(t)
	store := repository.NewStore(db)
	return &core{
		db:       db,
		identity: NewIdentityService(store, bcrypt.MinCost, time.Second),
		follows:  NewFollowService(store, nil, time.Second),
		messages: NewMessageService(store, time.Second),
		likes:    NewLikeService(store, nil, time.Second),
	}
}

func (c *core) signup(t *testing.T, username string) *models.User {
	t.Helper()
	u, err := c.identity.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    username + "@test.com",
		Password: "password",
	})
	require.NoError(t, err)
	return u
}

func (c *core) post(t *testing.T, userID uint, text string) *models.Message {
	t.Helper()
	m, err := c.messages.Create(context.Background(), userID, text)
	require.NoError(t, err)
	return m
}
