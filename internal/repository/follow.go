package repository

import (
	"context"

	"warbler/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines persistence operations for follow edges.
type FollowRepository interface {
	Create(ctx context.Context, follow *models.Follow) error
	Delete(ctx context.Context, followerID, followedID uint) error
	Exists(ctx context.Context, followerID, followedID uint) (bool, error)
	Following(ctx context.Context, userID uint) ([]models.User, error)
	Followers(ctx context.Context, userID uint) ([]models.User, error)
	Counts(ctx context.Context, userID uint) (following, followers int64, err error)
}

type followRepository struct {
	db *gorm.DB
}

func (r *followRepository) Create(ctx context.Context, follow *models.Follow) error {
	err := r.db.WithContext(ctx).Omit(clause.Associations).Create(follow).Error
	return mapError(err, "Follow", follow.FollowedID)
}

// Delete removes the edge if present. Removing a missing edge is not an error.
func (r *followRepository) Delete(ctx context.Context, followerID, followedID uint) error {
	err := r.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{}).Error
	return mapError(err, "Follow", followedID)
}

func (r *followRepository) Exists(ctx context.Context, followerID, followedID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return count > 0, nil
}

// Following returns the users userID follows, ordered by username.
func (r *followRepository) Following(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN follows f ON f.followed_id = users.id").
		Where("f.follower_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// Followers returns the users following userID, ordered by username.
func (r *followRepository) Followers(ctx context.Context, userID uint) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Joins("JOIN follows f ON f.follower_id = users.id").
		Where("f.followed_id = ?", userID).
		Order("users.username ASC").
		Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *followRepository) Counts(ctx context.Context, userID uint) (following, followers int64, err error) {
	db := r.db.WithContext(ctx).Model(&models.Follow{})
	if err = db.Where("follower_id = ?", userID).Count(&following).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	if err = r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("followed_id = ?", userID).Count(&followers).Error; err != nil {
		return 0, 0, models.NewInternalError(err)
	}
	return following, followers, nil
}
