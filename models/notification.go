package models

import "time"

const (
	NotificationFollow  = "follow"
	NotificationMessage = "message"
)

type Notification struct {
	ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Type        string    `gorm:"type:varchar(32);not null" json:"type"`
	SenderID    string    `gorm:"type:varchar(36);not null" json:"sender_id"`
	RecipientID string    `gorm:"type:varchar(36);not null;index:idx_notifications_recipient,priority:1" json:"recipient_id"`
	PostID      string    `gorm:"type:varchar(36)" json:"post_id,omitempty"`
	IsRead      bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt   time.Time `gorm:"index:idx_notifications_recipient,priority:2" json:"created_at"`

	Sender *UserSummary `gorm:"-" json:"sender,omitempty"`
}
