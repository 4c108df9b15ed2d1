package models

import "time"

// LikedMessage records that a user liked a message.
// The combination of UserID and MessageID must be unique.
type LikedMessage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_liked_messages_pair" json:"user_id"`
	MessageID uint      `gorm:"not null;uniqueIndex:idx_liked_messages_pair;index:idx_liked_messages_message" json:"message_id"`
	CreatedAt time.Time `json:"created_at"`

	User    User    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Message Message `gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (LikedMessage) TableName() string {
	return "liked_messages"
}
