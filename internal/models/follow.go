package models

import "time"

// Follow is a directed edge: FollowerID receives FollowedID's messages in their feed.
// The pair is unique and a user can never follow themselves.
type Follow struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FollowerID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;check:chk_follows_not_self,follower_id <> followed_id" json:"follower_id"`
	FollowedID uint      `gorm:"not null;uniqueIndex:idx_follows_pair;index:idx_follows_followed" json:"followed_id"`
	CreatedAt  time.Time `json:"created_at"`

	Follower User `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	Followed User `gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for GORM
func (Follow) TableName() string {
	return "follows"
}
