package service

import (
	"context"
	"strings"
	"time"

	"framez/internal/cache"
	"framez/internal/middleware"
	"framez/internal/models"
	"framez/internal/notifications"
	"framez/internal/observability"
	"framez/internal/repository"
	"framez/internal/validation"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

const (
	DefaultFeedLimit = 10
	MaxFeedLimit     = 50
)

type PostService struct {
	postRepo repository.PostRepository
	likeRepo repository.LikeRepository
	rdb      *redis.Client
	events   EventPublisher

	defaultLimit int
	feedTTL      time.Duration
}

// PostServiceOptions tunes feed paging and caching. Zero values use the defaults
// and disable the first-page cache.
type PostServiceOptions struct {
	DefaultPageSize int
	FeedCacheTTL    time.Duration
}

type CreatePostInput struct {
	UserID   string
	FullName string
	Avatar   string
	Caption  string
	Media    []models.MediaItem
}

type RepostInput struct {
	OriginalPostID uint
	UserID         string
	FullName       string
	Avatar         string
}

// FeedPage is one page of the reverse-chronological feed.
type FeedPage struct {
	Posts      []*models.Post `json:"posts"`
	NextCursor *string        `json:"next_cursor"`
	HasMore    bool           `json:"has_more"`
}

// LikeResult is the state of a post's like after a toggle.
type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

func NewPostService(
	postRepo repository.PostRepository,
	likeRepo repository.LikeRepository,
	rdb *redis.Client,
	events EventPublisher,
	opts PostServiceOptions,
) *PostService {
	limit := opts.DefaultPageSize
	if limit <= 0 || limit > MaxFeedLimit {
		limit = DefaultFeedLimit
	}
	return &PostService{
		postRepo:     postRepo,
		likeRepo:     likeRepo,
		rdb:          rdb,
		events:       events,
		defaultLimit: limit,
		feedTTL:      opts.FeedCacheTTL,
	}
}

func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (post *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "create_post",
		attribute.String("user.id", in.UserID),
		attribute.Int("post.media_count", len(in.Media)),
	)
	defer func() { span.End(err) }()

	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	form := validation.PostForm{Caption: in.Caption, Media: in.Media}
	if err := form.Validate().AsAppError(validation.PostFields...); err != nil {
		return nil, err
	}

	media := make([]models.MediaItem, 0, len(in.Media))
	for _, item := range in.Media {
		media = append(media, models.MediaItem{Type: item.Type, URL: strings.TrimSpace(item.URL)})
	}

	post = &models.Post{
		UserID:     in.UserID,
		FullName:   in.FullName,
		UserAvatar: in.Avatar,
		Caption:    strings.TrimSpace(in.Caption),
		Media:      media,
	}
	if err := s.postRepo.Create(ctx, post); err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventPostCreated, post)
	return post, nil
}

// GetFeed returns the page starting at cursor, or the newest page when cursor is empty.
func (s *PostService) GetFeed(ctx context.Context, cursor string, limit int) (page *FeedPage, err error) {
	limit = s.normalizeLimit(limit)
	ctx, span := observability.StartSpan(ctx, "post_service", "get_feed",
		attribute.Int("feed.limit", limit),
		attribute.Bool("feed.first_page", cursor == ""),
	)
	defer func() { span.End(err) }()

	parsed, err := models.ParseFeedCursor(cursor)
	if err != nil {
		return nil, err
	}

	fetch := func(dest *FeedPage) error {
		posts, err := s.postRepo.ListFeed(ctx, parsed, limit)
		if err != nil {
			return err
		}
		*dest = buildFeedPage(posts, limit)
		return nil
	}

	page = &FeedPage{}
	if parsed != nil || s.rdb == nil || s.feedTTL <= 0 {
		if err := fetch(page); err != nil {
			return nil, err
		}
		return page, nil
	}

	key, err := cache.FeedFirstPageKey(ctx, s.rdb, limit)
	if err != nil {
		middleware.Logger.WarnContext(ctx, "feed cache unavailable", "error", err)
		if err := fetch(page); err != nil {
			return nil, err
		}
		return page, nil
	}

	hit, err := cache.Aside(ctx, s.rdb, key, page, s.feedTTL, func() error {
		return fetch(page)
	})
	if err != nil {
		return nil, err
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	observability.FeedCacheRequests.WithLabelValues(result).Inc()
	span.AddAttributes(attribute.String("feed.cache", result))
	return page, nil
}

func buildFeedPage(posts []*models.Post, limit int) FeedPage {
	page := FeedPage{Posts: posts}
	if len(posts) > limit {
		next := posts[limit].CursorKey().String()
		page.Posts = posts[:limit]
		page.NextCursor = &next
		page.HasMore = true
	}
	if page.Posts == nil {
		page.Posts = []*models.Post{}
	}
	return page
}

func (s *PostService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.defaultLimit
	}
	if limit > MaxFeedLimit {
		return MaxFeedLimit
	}
	return limit
}

// GetUserPosts returns every post authored by userID, newest first.
func (s *PostService) GetUserPosts(ctx context.Context, userID string) ([]*models.Post, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, models.NewValidationError("User ID is required")
	}
	posts, err := s.postRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return posts, nil
}

func (s *PostService) GetPost(ctx context.Context, postID uint) (*models.Post, error) {
	return s.postRepo.GetByID(ctx, postID)
}

// DeletePost removes the caller's post together with its likes and comments.
func (s *PostService) DeletePost(ctx context.Context, postID uint, userID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "delete_post",
		attribute.Int("post.id", int(postID)),
		attribute.String("user.id", userID),
	)
	defer func() { span.End(err) }()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own posts")
	}

	if _, err := s.postRepo.Delete(ctx, postID); err != nil {
		return err
	}

	s.invalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventPostDeleted, map[string]interface{}{"id": postID})
	return nil
}

// ToggleLike flips the caller's like on a post.
func (s *PostService) ToggleLike(ctx context.Context, postID uint, userID string) (res *LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "toggle_like",
		attribute.Int("post.id", int(postID)),
		attribute.String("user.id", userID),
	)
	defer func() { span.End(err) }()

	if userID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}
	liked, likes, err := s.likeRepo.Toggle(ctx, postID, userID)
	if err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventPostReactionUpdated, map[string]interface{}{
		"post_id": postID,
		"likes":   likes,
	})
	return &LikeResult{Liked: liked, Likes: likes}, nil
}

func (s *PostService) CheckUserLike(ctx context.Context, postID uint, userID string) (bool, error) {
	return s.likeRepo.Exists(ctx, postID, userID)
}

// Repost shares a post on the caller's behalf. Reposting a repost shares its original.
func (s *PostService) Repost(ctx context.Context, in RepostInput) (repost *models.Post, err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "repost",
		attribute.Int("post.id", int(in.OriginalPostID)),
		attribute.String("user.id", in.UserID),
	)
	defer func() { span.End(err) }()

	if in.UserID == "" {
		return nil, models.NewUnauthorizedError("Authentication required")
	}

	original, err := s.postRepo.GetByID(ctx, in.OriginalPostID)
	if err != nil {
		return nil, err
	}
	if original.IsRepost && original.OriginalPostID != nil {
		original, err = s.postRepo.GetByID(ctx, *original.OriginalPostID)
		if err != nil {
			return nil, err
		}
	}

	originalID := original.ID
	media := make([]models.MediaItem, len(original.Media))
	copy(media, original.Media)

	repost = &models.Post{
		UserID:           in.UserID,
		FullName:         in.FullName,
		UserAvatar:       in.Avatar,
		Caption:          original.Caption,
		Media:            media,
		IsRepost:         true,
		OriginalPostID:   &originalID,
		OriginalUserID:   original.UserID,
		OriginalFullName: original.FullName,
		OriginalAvatar:   original.UserAvatar,
	}
	if err := s.postRepo.CreateRepost(ctx, repost); err != nil {
		return nil, err
	}

	s.invalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventPostReposted, repost)
	return repost, nil
}

// DeleteRepost removes one of the caller's reposts.
func (s *PostService) DeleteRepost(ctx context.Context, postID uint, userID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "post_service", "delete_repost",
		attribute.Int("post.id", int(postID)),
		attribute.String("user.id", userID),
	)
	defer func() { span.End(err) }()

	post, err := s.postRepo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if !post.IsRepost {
		return models.NewValidationError("Post is not a repost")
	}
	if post.UserID != userID {
		return models.NewForbiddenError("You can only delete your own reposts")
	}

	if _, err := s.postRepo.DeleteRepost(ctx, postID); err != nil {
		return err
	}

	s.invalidateFeed(ctx)
	publish(ctx, s.events, notifications.EventPostDeleted, map[string]interface{}{"id": postID})
	return nil
}

func (s *PostService) invalidateFeed(ctx context.Context) {
	if err := cache.InvalidateFeed(ctx, s.rdb); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to invalidate feed cache", "error", err)
	}
}
