package repository

import (
	"context"
	"strings"
	"errors"

	"warbler/internal/cache"
	"warbler/internal/models"

	"gorm.io/gorm"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id uint) error
	List(ctx context.Context, query string, limit, offset int) ([]models.User, error)
}

type userRepository struct {
	db     *gorm.DB
	cached bool
}

// GetByID loads a user. Outside a transaction reads go through the Redis
// cache; cached copies never carry the password hash.
func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	fetch := func() error {
		return mapError(r.db.WithContext(ctx).First(&user, id).Error, "User", id)
	}

	var err error
	if r.cached {
		err = cache.Aside(ctx, cache.UserKey(id), &user, cache.UserTTL, fetch)
	} else {
		err = fetch()
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// findOne returns (nil, nil) when no row matches.
func (r *userRepository) findOne(ctx context.Context, cond string, arg any) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where(cond, arg).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return mapError(r.db.WithContext(ctx).Create(user).Error, "User", user.Username)
}

func (r *userRepository) Update(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return mapError(err, "User", user.ID)
	}
	cache.InvalidateUser(ctx, user.ID)
	return nil
}

// Delete removes the user together with everything that references them:
// likes they made, likes on their messages, their messages and follow edges
// in both directions. Callers run it inside WithTx so the cascade is atomic.
func (r *userRepository) Delete(ctx context.Context, id uint) error {
	db := r.db.WithContext(ctx)

	ownMessages := db.Model(&models.Message{}).Select("id").Where("user_id = ?", id)
	if err := db.Where("user_id = ? OR message_id IN (?)", id, ownMessages).
		Delete(&models.LikedMessage{}).Error; err != nil {
		return mapError(err, "User", id)
	}
	if err := db.Where("user_id = ?", id).Delete(&models.Message{}).Error; err != nil {
		return mapError(err, "User", id)
	}
	if err := db.Where("follower_id = ? OR followed_id = ?", id, id).
		Delete(&models.Follow{}).Error; err != nil {
		return mapError(err, "User", id)
	}

	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return mapError(res.Error, "User", id)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}

	cache.InvalidateUser(ctx, id)
	return nil
}

// List returns users ordered by username. A non-empty query filters by
// username substring.
func (r *userRepository) List(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	var users []models.User
	q := r.db.WithContext(ctx).Order("username ASC").Limit(clampLimit(limit, 50, 100))
	if offset > 0 {
		q = q.Offset(offset)
	}
	if query != "" {
		q = q.Where("username LIKE ? ESCAPE '\\'", "%"+likeEscaper.Replace(query)+"%")
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

// likeEscaper makes LIKE metacharacters match literally under ESCAPE '\'.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
