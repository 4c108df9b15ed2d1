// Package models contains data structures for the application's domain models.
package models

import (
	"fmt"
	"time"
)

const (
	// DefaultImageURL is assigned to users who sign up without a profile image.
	DefaultImageURL = "/static/images/default-pic.png"
	// DefaultHeaderImageURL is assigned to every new user's profile header.
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

// User represents a Warbler account.
type User struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Username       string    `gorm:"size:30;uniqueIndex:idx_users_username;not null" json:"username"`
	Email          string    `gorm:"uniqueIndex:idx_users_email;not null" json:"email"`
	PasswordHash   string    `gorm:"column:password;not null" json:"-"`
	ImageURL       string    `json:"image_url"`
	HeaderImageURL string    `json:"header_image_url"`
	Bio            string    `gorm:"type:text" json:"bio"`
	Location       string    `gorm:"size:100" json:"location"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

func (u User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
