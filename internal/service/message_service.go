package service

import (
	"context"
	"time"

	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/policy"
	"warbler/internal/repository"
	"warbler/internal/validation"
)

// MessageService creates, reads and deletes messages.
type MessageService struct {
	store   *repository.Store
	timeout time.Duration
}

// NewMessageService returns a MessageService.
func NewMessageService(store *repository.Store, timeout time.Duration) *MessageService {
	return &MessageService{store: store, timeout: timeout}
}

// Create posts text as userID. The timestamp is fixed at creation.
func (s *MessageService) Create(ctx context.Context, userID uint, text string) (msg *models.Message, err error) {
	ctx, finish := observability.StartOperation(ctx, "messages", "create")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := rules.Check(policy.Authenticated(userID), policy.PostMessage, policy.Target{OwnerID: userID}); err != nil {
		return nil, err
	}
	if err := validation.ValidateMessageText(text); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		author, err := tx.Users().GetByID(ctx, userID)
		if err != nil {
			return err
		}

		m := &models.Message{UserID: userID, Text: text, Timestamp: time.Now().UTC()}
		if err := tx.Messages().Create(ctx, m); err != nil {
			return err
		}
		m.User = author
		msg = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// Delete removes the message and its likes. Only the author may delete it.
func (s *MessageService) Delete(ctx context.Context, messageID, requesterID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "messages", "delete")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	return s.store.WithTx(ctx, func(tx *repository.Store) error {
		msg, err := tx.Messages().GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if err := rules.Check(policy.Authenticated(requesterID), policy.DeleteMessage, policy.Target{OwnerID: msg.UserID}); err != nil {
			return err
		}
		return tx.Messages().Delete(ctx, messageID)
	})
}

// Get loads a message with its author.
func (s *MessageService) Get(ctx context.Context, messageID uint) (*models.Message, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.store.Messages().GetByID(ctx, messageID)
}

// ListByUser returns userID's messages, newest first.
func (s *MessageService) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.store.Messages().ListByUser(ctx, userID, limit)
}

// Feed returns the home timeline: userID's messages and those of everyone
// they follow, newest first. A limit of zero means repository.DefaultFeedLimit.
func (s *MessageService) Feed(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return s.store.Messages().Feed(ctx, userID, limit)
}
