package models

// Comment represents a comment on a post. Comments are never edited.
type Comment struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PostID    uint   `gorm:"not null;index:by_post" json:"post_id"`
	UserID    string `gorm:"size:64;not null" json:"user_id"`
	FullName  string `gorm:"not null" json:"full_name"`
	Avatar    string `json:"avatar"`
	Text      string `gorm:"type:text;not null" json:"text"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli" json:"created_at"`
}
