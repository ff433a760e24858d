// Package identity authenticates users and issues session tokens.
package identity

import (
	"context"
	"time"

	"framez/internal/models"
)

// Principal is the identity resolved from a verified token.
type Principal struct {
	UserID    string
	TokenID   string
	ExpiresAt time.Time
}

// Session is returned on sign-up and sign-in.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// SignUpInput carries the registration form.
type SignUpInput struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// Provider is the authentication port used by the HTTP layer.
type Provider interface {
	SignUp(ctx context.Context, in SignUpInput) (*Session, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	SignOut(ctx context.Context, token string) error
	Verify(ctx context.Context, token string) (*Principal, error)
	User(ctx context.Context, id string) (*models.User, error)
	// SetProfileImage replaces the user's profile image; an empty URL clears it.
	SetProfileImage(ctx context.Context, userID, imageURL string) (*models.User, error)
}
