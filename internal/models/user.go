package models

import (
	"strings"
	"time"
)

// DefaultAvatarBase seeds generated avatars for users without a profile image.
const DefaultAvatarBase = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// User is an account known to the local identity provider.
type User struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	FirstName string    `gorm:"not null" json:"first_name"`
	LastName  string    `gorm:"not null" json:"last_name"`
	Email     string    `gorm:"uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName returns the name shown next to the user's posts and comments.
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return "Anonymous"
	}
	return name
}

// AvatarURL returns the profile image, falling back to a generated avatar.
func (u *User) AvatarURL() string {
	if u.ImageURL != "" {
		return u.ImageURL
	}
	return DefaultAvatarBase + u.ID
}
