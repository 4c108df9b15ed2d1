// Package testutil provides shared fixtures for package tests.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"warbler/internal/database"
	"warbler/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a private in-memory SQLite database with the full schema.
// The pool is pinned to one connection so every query sees the same memory
// database; code under test must route queries inside a transaction through
// the transaction handle.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString()[:8])

	db, err := database.Open(sqlite.Open(database.SQLiteDSN(dsn)))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.AutoMigrate(db))
	return db
}

// CreateUser inserts a user whose password is "password".
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.MinCost)
	require.NoError(t, err)

	user := &models.User{
		Username:       username,
		Email:          strings.ToLower(username) + "@test.com",
		PasswordHash:   string(hash),
		ImageURL:       models.DefaultImageURL,
		HeaderImageURL: models.DefaultHeaderImageURL,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
