package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"warbler/internal/cache"
	"warbler/internal/middleware"
	"warbler/internal/models"
	"warbler/internal/observability"
	"warbler/internal/policy"
	"warbler/internal/repository"
	"warbler/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

// IdentityService owns user accounts: signup, login, profile edits and deletion.
type IdentityService struct {
	store      *repository.Store
	bcryptCost int
	timeout    time.Duration
}

// SignupInput carries the fields of a new account.
type SignupInput struct {
	Username string
	Email    string
	Password string
	ImageURL string
}

// UpdateProfileInput edits a user's profile. CurrentPassword must match the
// stored hash. Nil fields are left unchanged; an empty image URL restores the
// default image.
type UpdateProfileInput struct {
	UserID          uint
	CurrentPassword string
	Username        *string
	Email           *string
	ImageURL        *string
	HeaderImageURL  *string
	Bio             *string
	Location        *string
}

// Profile is a user with the counts shown on their profile page.
type Profile struct {
	User           *models.User `json:"user"`
	MessageCount   int64        `json:"message_count"`
	FollowingCount int64        `json:"following_count"`
	FollowerCount  int64        `json:"follower_count"`
	LikeCount      int64        `json:"like_count"`
}

// NewIdentityService returns an IdentityService. A bcryptCost of zero selects
// bcrypt.DefaultCost.
func NewIdentityService(store *repository.Store, bcryptCost int, timeout time.Duration) *IdentityService {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &IdentityService{store: store, bcryptCost: bcryptCost, timeout: timeout}
}

// Signup creates an account. Username and email must be unused.
func (s *IdentityService) Signup(ctx context.Context, in SignupInput) (user *models.User, err error) {
	ctx, finish := observability.StartOperation(ctx, "identity", "signup")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	imageURL := strings.TrimSpace(in.ImageURL)
	if imageURL == "" {
		imageURL = models.DefaultImageURL
	}

	user = &models.User{
		Username:       in.Username,
		Email:          validation.NormalizeEmail(in.Email),
		PasswordHash:   string(hash),
		ImageURL:       imageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		if err := checkUnique(ctx, tx, 0, user.Username, user.Email); err != nil {
			return err
		}
		return tx.Users().Create(ctx, user)
	})
	if err != nil {
		return nil, err
	}

	middleware.Logger.InfoContext(ctx, "user signed up", slog.Uint64("new_user_id", uint64(user.ID)))
	return user, nil
}

// checkUnique rejects a username or email held by a user other than selfID.
// The unique indexes still decide races at insert time.
func checkUnique(ctx context.Context, tx *repository.Store, selfID uint, username, email string) error {
	existing, err := tx.Users().GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return models.NewConstraintViolationError("username already taken", nil)
	}

	existing, err = tx.Users().GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	if existing != nil && existing.ID != selfID {
		return models.NewConstraintViolationError("email already taken", nil)
	}
	return nil
}

// Authenticate returns the user when username and password match, and
// (nil, nil) otherwise. Errors are reserved for storage failures.
func (s *IdentityService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	user, err := s.store.Users().GetByUsername(ctx, username)
	if err != nil {
		observability.AuthenticationsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	if user == nil {
		observability.AuthenticationsTotal.WithLabelValues("failure").Inc()
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			middleware.Logger.WarnContext(ctx, "stored password hash unreadable",
				slog.Uint64("target_user_id", uint64(user.ID)), slog.String("error", err.Error()))
		}
		observability.AuthenticationsTotal.WithLabelValues("failure").Inc()
		return nil, nil
	}

	observability.AuthenticationsTotal.WithLabelValues("success").Inc()
	return user, nil
}

// UpdateProfile applies in to the user after re-verifying their password.
func (s *IdentityService) UpdateProfile(ctx context.Context, in UpdateProfileInput) (user *models.User, err error) {
	ctx, finish := observability.StartOperation(ctx, "identity", "update_profile")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	if err := rules.Check(policy.Authenticated(in.UserID), policy.EditProfile, policy.Target{OwnerID: in.UserID}); err != nil {
		return nil, err
	}
	if err := validateProfileInput(in); err != nil {
		return nil, err
	}

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		current, err := tx.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}
		if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(in.CurrentPassword)); err != nil {
			return models.NewUnauthorizedError("invalid password")
		}

		applyProfile(current, in)
		if err := checkUnique(ctx, tx, current.ID, current.Username, current.Email); err != nil {
			return err
		}
		if err := tx.Users().Update(ctx, current); err != nil {
			return err
		}
		user = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	// a concurrent read may have refilled the cache before commit
	cache.InvalidateUser(ctx, user.ID)
	return user, nil
}

func validateProfileInput(in UpdateProfileInput) error {
	if in.Username != nil {
		if err := validation.ValidateUsername(*in.Username); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.Email != nil {
		if err := validation.ValidateEmail(*in.Email); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.Bio != nil {
		if err := validation.ValidateBio(*in.Bio); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	if in.Location != nil {
		if err := validation.ValidateLocation(*in.Location); err != nil {
			return models.NewValidationError(err.Error())
		}
	}
	return nil
}

func applyProfile(u *models.User, in UpdateProfileInput) {
	if in.Username != nil {
		u.Username = *in.Username
	}
	if in.Email != nil {
		u.Email = validation.NormalizeEmail(*in.Email)
	}
	if in.ImageURL != nil {
		u.ImageURL = orDefault(*in.ImageURL, models.DefaultImageURL)
	}
	if in.HeaderImageURL != nil {
		u.HeaderImageURL = orDefault(*in.HeaderImageURL, models.DefaultHeaderImageURL)
	}
	if in.Bio != nil {
		u.Bio = *in.Bio
	}
	if in.Location != nil {
		u.Location = *in.Location
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// Delete removes the user and everything that references them.
func (s *IdentityService) Delete(ctx context.Context, userID uint) (err error) {
	ctx, finish := observability.StartOperation(ctx, "identity", "delete")
	defer func() { finish(err) }()
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	err = s.store.WithTx(ctx, func(tx *repository.Store) error {
		return tx.Users().Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	cache.InvalidateUser(ctx, userID)
	middleware.Logger.InfoContext(ctx, "user deleted", slog.Uint64("deleted_user_id", uint64(userID)))
	return nil
}

// GetUser loads a user, through the cache when one is configured.
func (s *IdentityService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.store.Users().GetByID(ctx, id)
}

// ListUsers lists users by username, filtered by substring when query is set.
func (s *IdentityService) ListUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()
	return s.store.Users().List(ctx, strings.TrimSpace(query), limit, offset)
}

// Profile loads a user with their message, follow and like counts.
func (s *IdentityService) Profile(ctx context.Context, id uint) (*Profile, error) {
	ctx, cancel := bounded(ctx, s.timeout)
	defer cancel()

	user, err := s.store.Users().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	p := &Profile{User: user}
	if p.MessageCount, err = s.store.Messages().CountByUser(ctx, id); err != nil {
		return nil, err
	}
	if p.FollowingCount, p.FollowerCount, err = s.store.Follows().Counts(ctx, id); err != nil {
		return nil, err
	}
	if p.LikeCount, err = s.store.Likes().CountByUser(ctx, id); err != nil {
		return nil, err
	}
	return p, nil
}
