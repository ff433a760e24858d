// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"
	"errors"

	"framez/internal/database"
	"framez/internal/models"
	"framez/internal/observability"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint) (*models.Post, error)
	// ListFeed returns up to limit+1 posts, newest first, starting at cursor
	// (inclusive) or at the newest post when cursor is nil.
	ListFeed(ctx context.Context, cursor *models.FeedCursor, limit int) ([]*models.Post, error)
	ListByUser(ctx context.Context, userID string) ([]*models.Post, error)
	// Delete removes a post with its likes and comments and returns the removed row.
	Delete(ctx context.Context, id uint) (*models.Post, error)
	CreateRepost(ctx context.Context, repost *models.Post) error
	DeleteRepost(ctx context.Context, id uint) (*models.Post, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	defer observability.TrackQuery("create", "posts")()
	return r.db.WithContext(ctx).Create(post).Error
}

func (r *postRepository) GetByID(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("get_by_id", "posts")()
	return findPost(r.db.WithContext(ctx), id)
}

func findPost(tx *gorm.DB, id uint) (*models.Post, error) {
	var post models.Post
	if err := tx.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post", id)
		}
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) ListFeed(ctx context.Context, cursor *models.FeedCursor, limit int) ([]*models.Post, error) {
	defer observability.TrackQuery("list_feed", "posts")()

	q := r.db.WithContext(ctx).Model(&models.Post{})
	if cursor != nil {
		if cursor.ID == 0 {
			q = q.Where("created_at < ?", cursor.CreatedAt)
		} else {
			q = q.Where("(created_at < ? OR (created_at = ? AND id <= ?))",
				cursor.CreatedAt, cursor.CreatedAt, cursor.ID)
		}
	}

	var posts []*models.Post
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(limit + 1).
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) ListByUser(ctx context.Context, userID string) ([]*models.Post, error) {
	defer observability.TrackQuery("list_by_user", "posts")()

	var posts []*models.Post
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) Delete(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("delete", "posts")()
	return r.deleteCascade(ctx, id, false)
}

func (r *postRepository) DeleteRepost(ctx context.Context, id uint) (*models.Post, error) {
	defer observability.TrackQuery("delete_repost", "posts")()
	return r.deleteCascade(ctx, id, true)
}

// deleteCascade removes likes, comments and the post in one transaction. When
// the post is a repost its original's counter is decremented, never below zero.
func (r *postRepository) deleteCascade(ctx context.Context, id uint, repostOnly bool) (*models.Post, error) {
	var deleted *models.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		post, err := findPost(tx, id)
		if err != nil {
			return err
		}
		if repostOnly && !post.IsRepost {
			return models.NewValidationError("Post is not a repost")
		}

		if err := tx.Where("post_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Post{}, id).Error; err != nil {
			return err
		}

		if post.IsRepost && post.OriginalPostID != nil {
			err := tx.Model(&models.Post{}).
				Where("id = ? AND reposts > 0", *post.OriginalPostID).
				UpdateColumn("reposts", gorm.Expr("reposts - ?", 1)).Error
			if err != nil {
				return err
			}
		}

		deleted = post
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

// CreateRepost inserts the repost and bumps the original's counter atomically.
// A second repost of the same original by the same user yields ALREADY_REPOSTED.
func (r *postRepository) CreateRepost(ctx context.Context, repost *models.Post) error {
	defer observability.TrackQuery("create_repost", "posts")()

	if !repost.IsRepost || repost.OriginalPostID == nil {
		return models.NewValidationError("Repost must reference an original post")
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(repost).Error; err != nil {
			if database.IsUniqueViolation(err) {
				return models.NewAlreadyRepostedError()
			}
			return err
		}

		res := tx.Model(&models.Post{}).
			Where("id = ?", *repost.OriginalPostID).
			UpdateColumn("reposts", gorm.Expr("reposts + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.NewNotFoundError("Post", *repost.OriginalPostID)
		}
		return nil
	})
}
