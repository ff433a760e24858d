package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"framez/internal/cache"
	"framez/internal/models"
	"framez/internal/repository"
	"framez/internal/validation"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

const (
	tokenIssuer   = "framez-api"
	tokenAudience = "framez-client"
)

var errInvalidToken = models.NewUnauthorizedError("Invalid or expired token")

// LocalProvider implements Provider with locally stored accounts, bcrypt
// password hashes and HS256 JWTs. Revoked token ids live in Redis when a
// client is configured and in process memory otherwise.
type LocalProvider struct {
	users  repository.UserRepository
	rdb    *redis.Client
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewLocalProvider creates a LocalProvider. rdb may be nil.
func NewLocalProvider(users repository.UserRepository, rdb *redis.Client, secret string, ttl time.Duration) *LocalProvider {
	return &LocalProvider{
		users:   users,
		rdb:     rdb,
		secret:  []byte(secret),
		ttl:     ttl,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
}

func (p *LocalProvider) SignUp(ctx context.Context, in SignUpInput) (*Session, error) {
	form := validation.SignUpForm{
		FirstName:       in.FirstName,
		LastName:        in.LastName,
		Email:           in.Email,
		Password:        in.Password,
		ConfirmPassword: in.ConfirmPassword,
	}
	if err := form.Validate().AsAppError(validation.SignUpFields...); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		ID:        uuid.NewString(),
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     in.Email,
		Password:  string(hash),
	}
	if err := p.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return p.issue(user)
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*Session, error) {
	form := validation.SignInForm{Email: email, Password: password}
	if err := form.Validate().AsAppError(validation.SignInFields...); err != nil {
		return nil, err
	}

	invalid := models.NewUnauthorizedError("Invalid email or password")
	user, err := p.users.GetByEmail(ctx, email)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, invalid
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, invalid
	}
	return p.issue(user)
}

func (p *LocalProvider) SignOut(ctx context.Context, token string) error {
	principal, err := p.Verify(ctx, token)
	if err != nil {
		return err
	}

	remaining := principal.ExpiresAt.Sub(p.now())
	if remaining <= 0 {
		return nil
	}
	if p.rdb != nil {
		if err := p.rdb.Set(ctx, cache.TokenBlacklistKey(principal.TokenID), "1", remaining).Err(); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		return nil
	}

	p.mu.Lock()
	p.revoked[principal.TokenID] = principal.ExpiresAt
	p.mu.Unlock()
	return nil
}

func (p *LocalProvider) Verify(ctx context.Context, token string) (*Principal, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithAudience(tokenAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil || !parsed.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, errInvalidToken
	}

	revoked, err := p.isRevoked(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if revoked {
		return nil, models.NewUnauthorizedError("Token has been revoked")
	}

	return &Principal{
		UserID:    claims.Subject,
		TokenID:   claims.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

func (p *LocalProvider) isRevoked(ctx context.Context, tokenID string) (bool, error) {
	if p.rdb != nil {
		n, err := p.rdb.Exists(ctx, cache.TokenBlacklistKey(tokenID)).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return false, fmt.Errorf("failed to check token revocation: %w", err)
		}
		return n > 0, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	expiresAt, ok := p.revoked[tokenID]
	if ok && p.now().After(expiresAt) {
		delete(p.revoked, tokenID)
		return false, nil
	}
	return ok, nil
}

func (p *LocalProvider) User(ctx context.Context, id string) (*models.User, error) {
	return p.users.GetByID(ctx, id)
}

func (p *LocalProvider) SetProfileImage(ctx context.Context, userID, imageURL string) (*models.User, error) {
	return p.users.UpdateImage(ctx, userID, strings.TrimSpace(imageURL))
}

func (p *LocalProvider) issue(user *models.User) (*Session, error) {
	if len(p.secret) == 0 {
		return nil, models.NewInternalError(errors.New("JWT secret not configured"))
	}

	now := p.now()
	expiresAt := now.Add(p.ttl)
	claims := jwt.RegisteredClaims{
		Subject:   user.ID,
		Issuer:    tokenIssuer,
		Audience:  jwt.ClaimStrings{tokenAudience},
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        uuid.NewString(),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &Session{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}
