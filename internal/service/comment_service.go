package service

import (
	"context"
	"strings"

	"framez/internal/models"
	"framez/internal/notifications"
	"framez/internal/repository"
	"framez/internal/validation"
)

type CommentService struct {
	commentRepo repository.CommentRepository
	postRepo    repository.PostRepository
	events      EventPublisher
}

type AddCommentInput struct {
	PostID   uint
	UserID   string
	FullName string
	Avatar   string
	Text     string
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	postRepo repository.PostRepository,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		commentRepo: commentRepo,
		postRepo:    postRepo,
		events:      events,
	}
}

func (s *CommentService) AddComment(ctx context.Context, in AddCommentInput) (*models.Comment, error) {
	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	if msg := validation.ValidateCommentText(in.Text); msg != "" {
		return nil, models.NewFieldValidationError(map[string]string{"text": msg}, "text")
	}
	if _, err := s.postRepo.GetByID(ctx, in.PostID); err != nil {
		return nil, err
	}

	comment := &models.Comment{
		PostID:   in.PostID,
		UserID:   in.UserID,
		FullName: in.FullName,
		Avatar:   in.Avatar,
		Text:     strings.TrimSpace(in.Text),
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	publish(ctx, s.events, notifications.EventCommentCreated, comment)
	return comment, nil
}

// GetComments lists a post's comments, oldest first. A deleted post has none.
func (s *CommentService) GetComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	comments, err := s.commentRepo.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}
