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

// LikeService records which users like which messages.
type LikeService struct {
	store    *repository.Store
	notifier *notifications.Notifier
	timeout  time.Duration
}

// NewLikeService returns a LikeService. notifier may be nil.
func NewLikeService(store *repository.Store, notifier *notifications.Notifier, timeout time.Duration) *LikeService {
	return &LikeService{store: store, notifier: notifier, timeout: timeout}
}

// Like records that userID likes messageID. Authors cannot like their own messages.
func (s *LikeService) Like(ctx context.Context, userID, messageID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "likes", "like")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := requireUser(userID); err != nil {
		return err
	}

	var authorID uint
	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		if _, err := tx.Users().GetByID(ctx, userID); err != nil {
			return err
		}
		msg, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if err := rules.Check(policy.Authenticated(userID), policy.Like, policy.Target{OwnerID: msg.UserID}); err != nil {
			return err
		}

		liked, err := tx.Likes().Exists(ctx, userID, messageID)
		if err != nil {
			return err
		}
		if liked {
			return models.NewConstraintViolationError("message already liked", nil)
		}

		authorID = msg.UserID
		return tx.Likes().Create(ctx, &models.LikedMessage{UserID: userID, MessageID: messageID})
	})
	if err != nil {
		return err
	}

	if nerr := s.notifier.NotifyMessageLiked(ctx, userID, authorID, messageID); nerr != nil {
		middleware.Logger.WarnContext(ctx, "like notification failed",
			slog.Uint64("message_id", uint64(messageID)), slog.String("error", nerr.Error()))
	}
	return nil
}

// Unlike removes the like if present.
func (s *LikeService) Unlike(ctx context.Context, userID, messageID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "likes", "unlike")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := requireUser(userID); err != nil {
		return err
	}
	return s.store.WithTx(ctx, func(tx *repository.Store) error {
		return tx.Likes().Delete(ctx, userID, messageID)
	})
}

// LikedMessagesOf returns the messages userID liked, newest message first.
func (s *LikeService) LikedMessagesOf(ctx context.Context, userID uint) ([]models.Message, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Likes().LikedMessages(ctx, userID)
}

// IsLiked reports whether userID likes messageID.
func (s *LikeService) IsLiked(ctx context.Context, userID, messageID uint) (bool, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.store.Likes().Exists(ctx, userID, messageID)
}
