package models

import "time"

// User is the account record. The messaging core only ever references users
// by id; mutation happens through the social endpoints.
type User struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password     string    `gorm:"type:varchar(255);not null" json:"-"`
	FirstName    string    `gorm:"type:varchar(64)" json:"first_name"`
	LastName     string    `gorm:"type:varchar(64)" json:"last_name"`
	ProfileImage string    `gorm:"type:varchar(255);default:'/uploads/profiles/default_profile.png'" json:"profile_image"`
	Bio          string    `gorm:"type:text" json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserSummary is the projection attached to messages, conversations and
// notifications for presentation.
type UserSummary struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	ProfileImage string `json:"profile_image"`
}

func (u *User) Summary() *UserSummary {
	return &UserSummary{
		ID:           u.ID,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ProfileImage: u.ProfileImage,
	}
}
