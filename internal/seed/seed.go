// Package seed populates the database with demo accounts, posts, comments,
// likes and reposts for development and testing.
package seed

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"framez/internal/identity"
	"framez/internal/models"
	"framez/internal/repository"
	"framez/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// DefaultPassword is the password of every seeded account.
const DefaultPassword = "Password123"

// Options controls how much data a run creates.
type Options struct {
	NumUsers           int
	NumPosts           int
	MaxCommentsPerPost int
	// LikeProbability is the chance that a given user likes a given post.
	LikeProbability float64
	// RepostProbability is the chance that a post gets reposted by someone else.
	RepostProbability float64
	Clean             bool
}

// Result counts what a run created.
type Result struct {
	Users    []*models.User
	Posts    []*models.Post
	Comments int
	Likes    int
	Reposts  int
}

// Seeder creates data through the same services the API uses, so counters
// and snapshots match what real traffic would produce.
type Seeder struct {
	db       *gorm.DB
	faker    *gofakeit.Faker
	identity identity.Provider
	posts    *service.PostService
	comments *service.CommentService
}

// NewSeeder creates a Seeder. Runs with the same seed generate the same content.
func NewSeeder(db *gorm.DB, seed int64) *Seeder {
	faker := gofakeit.New(seed)
	postRepo := repository.NewPostRepository(db)
	return &Seeder{
		db:    db,
		faker: faker,
		// sessions issued while seeding are discarded
		identity: identity.NewLocalProvider(repository.NewUserRepository(db), nil, faker.UUID(), time.Hour),
		posts:    service.NewPostService(postRepo, repository.NewLikeRepository(db), nil, nil, service.PostServiceOptions{}),
		comments: service.NewCommentService(repository.NewCommentRepository(db), postRepo, nil),
	}
}

// Seed runs one seeding pass.
func (s *Seeder) Seed(ctx context.Context, opts Options) (*Result, error) {
	log.Printf("🌱 Seeding %d users and %d posts...", opts.NumUsers, opts.NumPosts)

	if opts.Clean {
		if err := s.ClearAll(ctx); err != nil {
			return nil, fmt.Errorf("failed to clear data: %w", err)
		}
	}

	res := &Result{}
	users, err := s.createUsers(ctx, opts.NumUsers)
	if err != nil {
		return nil, fmt.Errorf("failed to create users: %w", err)
	}
	res.Users = users
	log.Printf("✓ Created %d users", len(users))
	if len(users) == 0 {
		return res, nil
	}

	for i := 0; i < opts.NumPosts; i++ {
		author := users[s.faker.IntRange(0, len(users)-1)]
		post, err := s.createPost(ctx, author)
		if err != nil {
			return nil, fmt.Errorf("failed to create post: %w", err)
		}
		res.Posts = append(res.Posts, post)
	}
	log.Printf("✓ Created %d posts", len(res.Posts))

	for _, post := range res.Posts {
		n, err := s.addComments(ctx, users, post, opts.MaxCommentsPerPost)
		if err != nil {
			return nil, fmt.Errorf("failed to add comments: %w", err)
		}
		res.Comments += n

		n, err = s.addLikes(ctx, users, post, opts.LikeProbability)
		if err != nil {
			return nil, fmt.Errorf("failed to add likes: %w", err)
		}
		res.Likes += n

		reposted, err := s.maybeRepost(ctx, users, post, opts.RepostProbability)
		if err != nil {
			return nil, fmt.Errorf("failed to repost: %w", err)
		}
		if reposted {
			res.Reposts++
		}
	}
	log.Printf("✓ Added %d comments, %d likes, %d reposts", res.Comments, res.Likes, res.Reposts)

	return res, nil
}

// ClearAll removes every row the seeder can create.
func (s *Seeder) ClearAll(ctx context.Context) error {
	log.Println("🗑️  Clearing existing data...")
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		steps := []struct {
			query string
			args  []interface{}
		}{
			{query: "DELETE FROM likes"},
			{query: "DELETE FROM comments"},
			{query: "DELETE FROM posts WHERE is_repost = ?", args: []interface{}{true}},
			{query: "DELETE FROM posts"},
			{query: "DELETE FROM users"},
		}
		for _, step := range steps {
			if err := tx.Exec(step.query, step.args...).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Seeder) createUsers(ctx context.Context, n int) ([]*models.User, error) {
	users := make([]*models.User, 0, n)
	tag := strings.ReplaceAll(s.faker.UUID(), "-", "")[:8]
	for i := 0; i < n; i++ {
		first := fakeName(s.faker.FirstName())
		last := fakeName(s.faker.LastName())
		session, err := s.identity.SignUp(ctx, identity.SignUpInput{
			FirstName:       first,
			LastName:        last,
			Email:           fmt.Sprintf("user%d.%s@%s", i+1, tag, s.faker.DomainName()),
			Password:        DefaultPassword,
			ConfirmPassword: DefaultPassword,
		})
		if err != nil {
			return nil, err
		}
		users = append(users, session.User)
	}
	return users, nil
}

// fakeName pads generated names that are too short for sign-up.
func fakeName(name string) string {
	if len([]rune(strings.TrimSpace(name))) < 2 {
		return name + "o"
	}
	return name
}

func (s *Seeder) createPost(ctx context.Context, author *models.User) (*models.Post, error) {
	media := make([]models.MediaItem, s.faker.IntRange(0, 3))
	for i := range media {
		media[i] = models.MediaItem{
			Type: models.MediaTypeImage,
			URL:  fmt.Sprintf("https://picsum.photos/seed/%s/1080/1080", s.faker.UUID()),
		}
	}
	return s.posts.CreatePost(ctx, service.CreatePostInput{
		UserID:   author.ID,
		FullName: author.DisplayName(),
		Avatar:   author.AvatarURL(),
		Caption:  s.faker.Sentence(s.faker.IntRange(4, 16)),
		Media:    media,
	})
}

func (s *Seeder) addComments(ctx context.Context, users []*models.User, post *models.Post, maxComments int) (int, error) {
	if maxComments <= 0 {
		return 0, nil
	}
	n := s.faker.IntRange(0, maxComments)
	for i := 0; i < n; i++ {
		author := users[s.faker.IntRange(0, len(users)-1)]
		if _, err := s.comments.AddComment(ctx, service.AddCommentInput{
			PostID:   post.ID,
			UserID:   author.ID,
			FullName: author.DisplayName(),
			Avatar:   author.AvatarURL(),
			Text:     s.faker.Sentence(s.faker.IntRange(3, 12)),
		}); err != nil {
			return i, err
		}
	}
	return n, nil
}

func (s *Seeder) addLikes(ctx context.Context, users []*models.User, post *models.Post, probability float64) (int, error) {
	likes := 0
	for _, user := range users {
		if s.faker.Float64Range(0, 1) >= probability {
			continue
		}
		res, err := s.posts.ToggleLike(ctx, post.ID, user.ID)
		if err != nil {
			return likes, err
		}
		post.Likes = res.Likes
		likes++
	}
	return likes, nil
}

func (s *Seeder) maybeRepost(ctx context.Context, users []*models.User, post *models.Post, probability float64) (bool, error) {
	if len(users) < 2 || s.faker.Float64Range(0, 1) >= probability {
		return false, nil
	}
	reposter := users[s.faker.IntRange(0, len(users)-1)]
	if reposter.ID == post.UserID {
		return false, nil
	}
	_, err := s.posts.Repost(ctx, service.RepostInput{
		OriginalPostID: post.ID,
		UserID:         reposter.ID,
		FullName:       reposter.DisplayName(),
		Avatar:         reposter.AvatarURL(),
	})
	if models.IsCode(err, models.CodeAlreadyReposted) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	post.Reposts++
	return true, nil
}
