package server

import (
	"context"

	"warbler/internal/models"
	"warbler/internal/service"
)

// IdentityCore is the account surface the handlers use.
type IdentityCore interface {
	Signup(ctx context.Context, in service.SignupInput) (*models.User, error)
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	UpdateProfile(ctx context.Context, in service.UpdateProfileInput) (*models.User, error)
	Delete(ctx context.Context, userID uint) error
	GetUser(ctx context.Context, id uint) (*models.User, error)
	ListUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error)
	Profile(ctx context.Context, id uint) (*service.Profile, error)
}

// FollowCore is the follow graph surface the handlers use.
type FollowCore interface {
	Follow(ctx context.Context, followerID, followedID uint) error
	Unfollow(ctx context.Context, followerID, followedID uint) error
	FollowingOf(ctx context.Context, userID uint) ([]models.User, error)
	FollowersOf(ctx context.Context, userID uint) ([]models.User, error)
	IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error)
}

// MessageCore is the message surface the handlers use.
type MessageCore interface {
	Create(ctx context.Context, userID uint, text string) (*models.Message, error)
	Delete(ctx context.Context, messageID, requesterID uint) error
	Get(ctx context.Context, messageID uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Feed(ctx context.Context, userID uint, limit int) ([]models.Message, error)
}

// LikeCore is the like index surface the handlers use.
type LikeCore interface {
	Like(ctx context.Context, userID, messageID uint) error
	Unlike(ctx context.Context, userID, messageID uint) error
	LikedMessagesOf(ctx context.Context, userID uint) ([]models.Message, error)
	IsLiked(ctx context.Context, userID, messageID uint) (bool, error)
}

var (
	_ IdentityCore = (*service.IdentityService)(nil)
	_ FollowCore   = (*service.FollowService)(nil)
	_ MessageCore  = (*service.MessageService)(nil)
	_ LikeCore     = (*service.LikeService)(nil)
)
