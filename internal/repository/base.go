// Package repository implements the data access layer for the application.
package repository

import (
	"context"
	"errors"
	"strings"

	"warbler/internal/models"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// pgUniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// Store hands out repositories bound to one database handle. A Store obtained
// inside WithTx is bound to the transaction and bypasses the user cache.
type Store struct {
	db   *gorm.DB
	inTx bool
}

// NewStore returns a Store over db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// DB returns the underlying handle.
func (s *Store) DB() *gorm.DB {
	return s.db
}

// WithTx runs fn inside a database transaction. The transaction commits when
// fn returns nil and rolls back when it returns an error or panics.
func (s *Store) WithTx(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx, inTx: true})
	})
}

// Users returns the user repository for this store.
func (s *Store) Users() UserRepository {
	return &userRepository{db: s.db, cached: !s.inTx}
}

// Follows returns the follow edge repository for this store.
func (s *Store) Follows() FollowRepository {
	return &followRepository{db: s.db}
}

// Messages returns the message repository for this store.
func (s *Store) Messages() MessageRepository {
	return &messageRepository{db: s.db}
}

// Likes returns the like repository for this store.
func (s *Store) Likes() LikeRepository {
	return &likeRepository{db: s.db}
}

// mapError converts a storage error into the application's error taxonomy.
// AppErrors pass through untouched.
func mapError(err error, resource string, id any) error {
	if err == nil {
		return nil
	}

	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.NewNotFoundError(resource, id)
	}

	if isConstraintError(err) {
		return models.NewConstraintViolationError(resource+" violates a uniqueness or integrity constraint", err)
	}

	return models.NewInternalError(err)
}

// isConstraintError checks if a DB error is a unique, check or foreign key violation.
func isConstraintError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) ||
		errors.Is(err, gorm.ErrCheckConstraintViolated) ||
		errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}

	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "check constraint") ||
		strings.Contains(msg, pgUniqueViolation)
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
