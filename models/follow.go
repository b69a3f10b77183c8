package models

import "time"

// Follow is a directed follower -> followee edge. The composite primary key
// doubles as the uniqueness guarantee for repeated follow requests.
type Follow struct {
	FollowerID string    `gorm:"primaryKey;type:varchar(36)" json:"follower_id"`
	FolloweeID string    `gorm:"primaryKey;type:varchar(36)" json:"followee_id"`
	CreatedAt  time.Time `json:"created_at"`
}
