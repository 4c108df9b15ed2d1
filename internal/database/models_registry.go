package database

import (
	"warbler/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models,
// parents before children so foreign keys resolve.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Message{},
		&models.Follow{},
		&models.LikedMessage{},
	}
}

// TableStatus reports whether each persistent model's table exists.
type TableStatus struct {
	Table  string
	Exists bool
}

// SchemaStatus inspects the database for every persistent model's table.
func SchemaStatus(db *gorm.DB) ([]TableStatus, error) {
	stmt := &gorm.Statement{DB: db}
	out := make([]TableStatus, 0, len(PersistentModels()))
	for _, m := range PersistentModels() {
		if err := stmt.Parse(m); err != nil {
			return nil, err
		}
		out = append(out, TableStatus{
			Table:  stmt.Schema.Table,
			Exists: db.Migrator().HasTable(m),
		})
	}
	return out, nil
}
