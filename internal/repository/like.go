package repository

import (
	"context"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for liked messages.
type LikeRepository interface {
	Create(ctx context.Context, like *models.LikedMessage) error
	Delete(ctx context.Context, userID, messageID uint) error
	Exists(ctx context.Context, userID, messageID uint) (bool, error)
	LikedMessages(ctx context.Context, userID uint) ([]models.Message, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func (r *likeRepository) Create(ctx context.Context, like *models.LikedMessage) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(like).Error
	return mapError(err, "Like", like.MessageID)
}

// Delete removes the like if present. Removing a missing like is not an error.
func (r *likeRepository) Delete(ctx context.Context, userID, messageID uint) error {
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Delete(&models.LikedMessage{}).Error
	return mapError(err, "Like", messageID)
}

func (r *likeRepository) Exists(ctx context.Context, userID, messageID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LikedMessage{}).
		Where("user_id = ? AND message_id = ?", userID, messageID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// LikedMessages returns the messages userID liked, newest message first.
func (r *likeRepository) LikedMessages(ctx context.Context, userID uint) ([]models.Message, error) {
	var messages []models.Message
	if err := r.db.WithContext(ctx).
		Preload("User").
		Joins("JOIN liked_messages l ON l.message_id = messages.id").
		Where("l.user_id = ?", userID).
		Order("messages.timestamp DESC, messages.id DESC").
		Find(&messages).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (r *likeRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.LikedMessage{}).
		Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
