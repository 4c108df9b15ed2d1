package database

import (
	"testing"

	"warbler/internal/config"
	"warbler/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSQLiteDSN(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "warbler.db?_foreign_keys=on", SQLiteDSN("warbler.db"))
	assert.Equal(t, "file:x?mode=memory&_foreign_keys=on", SQLiteDSN("file:x?mode=memory"))
	assert.Equal(t, "x.db?_foreign_keys=off", SQLiteDSN("x.db?_foreign_keys=off"))
}

func TestDialector_SelectsDriver(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		cfg    config.Config
		driver string
	}{
		{"sqlite url", config.Config{DatabaseURL: "sqlite:file::memory:"}, "sqlite"},
		{"postgres url", config.Config{DatabaseURL: "postgresql:///warbler"}, "postgres"},
		{"discrete settings", config.Config{DBHost: "localhost", DBPort: "5432"}, "postgres"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.driver, Dialector(&tt.cfg).Name())
		})
	}
}

func TestConnect_SQLiteMigratesSchema(t *testing.T) {
	cfg := &config.Config{
		Env:            "test",
		DatabaseURL:    "sqlite:file:connect_test?mode=memory&cache=shared",
		DBMaxOpenConns: 1,
	}

	db, err := Connect(cfg)
	require.NoError(t, err)

	for _, model := range PersistentModels() {
		assert.True(t, db.Migrator().HasTable(model))
	}
	assert.True(t, db.Migrator().HasIndex(&models.Follow{}, "idx_follows_pair"))
	assert.True(t, db.Migrator().HasIndex(&models.LikedMessage{}, "idx_liked_messages_pair"))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestSchemaStatus(t *testing.T) {
	db, err := Open(Dialector(&config.Config{DatabaseURL: "sqlite:file:schema_status?mode=memory&cache=shared"}))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	defer func() { _ = sqlDB.Close() }()

	status, err := SchemaStatus(db)
	require.NoError(t, err)
	require.Len(t, status, 4)
	for _, s := range status {
		assert.False(t, s.Exists, s.Table)
	}

	require.NoError(t, AutoMigrate(db))
	status, err = SchemaStatus(db)
	require.NoError(t, err)
	assert.Equal(t, "users", status[0].Table)
	for _, s := range status {
		assert.True(t, s.Exists, s.Table)
	}
}
