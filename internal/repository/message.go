package repository

import (
	"context"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// DefaultFeedLimit is the number of messages on the home timeline.
	DefaultFeedLimit = 100
	maxListLimit     = 100
)

// MessageRepository defines persistence operations for messages.
type MessageRepository interface {
	Create(ctx context.Context, message *models.Message) error
	GetByID(ctx context.Context, id uint) (*models.Message, error)
	ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	Feed(ctx context.Context, userID uint, limit int) ([]models.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	Delete(ctx context.Context, id uint) error
}

type messageRepository struct {
	db *gorm.DB
}

func (r *messageRepository) Create(ctx context.Context, message *models.Message) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(message).Error
	return mapError(err, "Message", message.UserID)
}

// GetByID loads a message with its author.
func (r *messageRepository) GetByID(ctx context.Context, id uint) (*models.Message, error) {
	var message models.Message
	if err := r.db.WithContext(ctx).Preload("User").First(&message, id).Error; err != nil {
		return nil, mapError(err, "Message", id)
	}
	return &message, nil
}

// ListByUser returns the user's messages, newest first.
func (r *messageRepository) ListByUser(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ?", userID).
		Order("timestamp DESC, id DESC").
		Limit(clampLimit(limit, DefaultFeedLimit, maxListLimit)).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// Feed returns messages by userID and by everyone userID follows, newest first.
func (r *messageRepository) Feed(ctx context.Context, userID uint, limit int) ([]models.Message, error) {
	var messages []models.Message
	followed := r.db.WithContext(ctx).Model(&models.Follow{}).Select("followed_id").Where("follower_id = ?", userID)
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("user_id = ? OR user_id IN (?)", userID, followed).
		Order("timestamp DESC, id DESC").
		Limit(clampLimit(limit, DefaultFeedLimit, maxListLimit)).
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *messageRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Message{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Delete removes the message and every like on it. Callers run it inside
// WithTx so both deletes commit together.
func (r *messageRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)
	if err := db.Where("message_id = ?", id).Delete(&models.LikedMessage{}).Error; err != nil {
		return mapError(err, "Message", id)
	}

	res := db.Delete(&models.Message{}, id)
	if res.Error != nil {
		return mapError(res.Error, "Message", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Message", id)
	}
	return nil
}
