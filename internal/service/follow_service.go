package service

import (
	"context"
	"log/slog"
	"time"

	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/notifications"
	"warbler/internal/observability"
	"warbler/internal/policy"
	"warbler/internal/repository"
)

// FollowService maintains the directed follow graph between users.
type FollowService struct {
	store    *repository.Store
	notifier *notifications.Notifier
	timeout  time.Duration
}

// NewFollowService returns a FollowService. notifier may be nil.
func NewFollowService(store *repository.Store, notifier *notifications.Notifier, timeout time.Duration) *FollowService {
	return &FollowService{store: store, notifier: notifier, timeout: timeout}
}

// Follow adds the edge followerID -> followedID.
func (s *FollowService) Follow(ctx context.Context, followerID, followedID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "follows", "follow")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := rules.Check(policy.Authenticated(followerID), policy.Follow, policy.Target{OwnerID: followedID}); err != nil {
		return err
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, followerID); err != nil {
			return err
		}
		if _, err := tx.Users().GetByID(ctx, followedID); err != nil {
			return err
		}

		exists, err := tx.Follows().Exists(ctx, followerID, followedID)
		if err != nil {
			return err
		}
		if exists {
			return models.NewConstraintViolationError("already following this user", nil)
		}
		return tx.Follows().Create(ctx, &models.Follow{FollowerID: followerID, FollowedID: followedID})
	})
	if err != nil {
		return err
	}

	if nerr := s.notifier.NotifyFollowed(ctx, followerID, followedID); nerr != nil {
		middleware.Logger.WarnContext(ctx, "follow notification failed",
			slog.Uint64("followed_id", uint64(followedID)), slog.String("error", nerr.Error()))
	}
	return nil
}

// Unfollow removes the edge if it exists.
func (s *FollowService) Unfollow(ctx context.Context, followerID, followedID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "follows", "unfollow")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := requireUser(followerID); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx *repository.Store) error {
		return tx.Follows().Delete(ctx, followerID, followedID)
	})
}

// FollowingOf returns the users userID follows, ordered by username.
func (s *FollowService) FollowingOf(ctx context.Context, userID uint) ([]models.User, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows().Following(ctx, userID)
}

// FollowersOf returns the users following userID, ordered by username.
func (s *FollowService) FollowersOf(ctx context.Context, userID uint) ([]models.User, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Follows().Followers(ctx, userID)
}

// IsFollowing reports whether followerID follows followedID.
func (s *FollowService) IsFollowing(ctx context.Context, followerID, followedID uint) (bool, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.store.Follows().Exists(ctx, followerID, followedID)
}

// IsFollowedBy reports whether otherID follows userID.
func (s *FollowService) IsFollowedBy(ctx context.Context, userID, otherID uint) (bool, error) {
	return s.IsFollowing(ctx, otherID, userID)
}
