package repository

import (
	"context"

	"framez/internal/models"
	"framez/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// Toggle likes the post when the user has not liked it yet and unlikes it
	// otherwise. It returns the resulting state and the post's like counter.
	Toggle(ctx context.Context, postID uint, userID string) (liked bool, likes int, err error)
	Exists(ctx context.Context, postID uint, userID string) (bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Toggle(ctx context.Context, postID uint, userID string) (bool, int, error) {
	defer observability.TrackQuery("toggle", "likes")()

	var liked bool
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := findPost(tx.Select("id"), postID); err != nil {
			return err
		}

		removed := tx.Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
		if removed.Error != nil {
			return removed.Error
		}

		if removed.RowsAffected > 0 {
			err := tx.Model(&models.Post{}).
				Where("id = ? AND likes > 0", postID).
				UpdateColumn("likes", gorm.Expr("likes - ?", 1)).Error
			if err != nil {
				return err
			}
		} else {
			like := models.Like{PostID: postID, UserID: userID}
			added := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			if added.Error != nil {
				return added.Error
			}
			// a concurrent toggle may have inserted first
			if added.RowsAffected > 0 {
				err := tx.Model(&models.Post{}).
					Where("id = ?", postID).
					UpdateColumn("likes", gorm.Expr("likes + ?", 1)).Error
				if err != nil {
					return err
				}
			}
			liked = true
		}

		var post models.Post
		if err := tx.Select("id", "likes").First(&post, postID).Error; err != nil {
			return err
		}
		likes = post.Likes
		return nil
	})
	if err != nil {
		return false, 0, err
	}
	return liked, likes, nil
}

func (r *likeRepository) Exists(ctx context.Context, postID uint, userID string) (bool, error) {
	defer observability.TrackQuery("exists", "likes")()

	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
