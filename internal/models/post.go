// Package models contains data structures for the application's domain models.
package models

// Media kinds accepted on a post.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// MediaItem is one entry of a post's ordered media carousel.
type MediaItem struct {
	Type string `json:"type"`
	URL  string `json:"url"`
}

// Post represents a post in the feed. Reposts are posts too: they carry a copy of
// the original caption and media plus a snapshot of the original author taken at
// repost time.
type Post struct {
	ID         uint        `gorm:"primaryKey" json:"id"`
	UserID     string      `gorm:"size:64;not null;index:by_user;uniqueIndex:idx_user_repost" json:"user_id"`
	FullName   string      `gorm:"not null" json:"full_name"`
	UserAvatar string      `json:"user_avatar"`
	Caption    string      `gorm:"type:text;not null" json:"caption"`
	Media      []MediaItem `gorm:"type:text;serializer:json" json:"media"`
	Likes      int         `gorm:"not null;default:0" json:"likes"`
	Reposts    int         `gorm:"not null;default:0" json:"reposts"`
	// CreatedAt is a unix timestamp in milliseconds.
	CreatedAt int64 `gorm:"not null;autoCreateTime:milli;index:by_created_at" json:"created_at"`

	IsRepost         bool   `gorm:"not null;default:false" json:"is_repost"`
	OriginalPostID   *uint  `gorm:"uniqueIndex:idx_user_repost" json:"original_post_id,omitempty"`
	OriginalUserID   string `gorm:"size:64" json:"original_user_id,omitempty"`
	OriginalFullName string `json:"original_full_name,omitempty"`
	OriginalAvatar   string `json:"original_avatar,omitempty"`
}

// CursorKey is the feed pagination key of the post.
func (p *Post) CursorKey() FeedCursor {
	return FeedCursor{CreatedAt: p.CreatedAt, ID: p.ID}
}
