package models

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique.
type Like struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	PostID    uint   `gorm:"not null;index:by_post_likes;uniqueIndex:by_user_post,priority:2" json:"post_id"`
	UserID    string `gorm:"size:64;not null;uniqueIndex:by_user_post,priority:1" json:"user_id"`
	CreatedAt int64  `gorm:"not null;autoCreateTime:milli" json:"created_at"`
}
