package server

import (
	"context"
	"strings"

	"framez/internal/middleware"
	"framez/internal/models"

	"github.com/gofiber/fiber/v2"
)

// AuthRequired enforces a valid bearer token. The user ID is stored in
// c.Locals("userID") and the principal in c.Locals("principal").
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get("Authorization"))
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}
		return s.authenticate(c, token)
	}
}

// WebSocketAuthRequired accepts the token from the "token" query parameter,
// since browsers and React Native cannot set headers on the upgrade request.
// The Authorization header is used when the parameter is absent.
func (s *Server) WebSocketAuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := strings.TrimSpace(c.Query("token"))
		if token == "" {
			var ok bool
			if token, ok = bearerToken(c.Get("Authorization")); !ok {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Authorization required"))
			}
		}
		return s.authenticate(c, token)
	}
}

func (s *Server) authenticate(c *fiber.Ctx, token string) error {
	principal, err := s.identity.Verify(c.UserContext(), token)
	if err != nil {
		return models.RespondWithError(c, models.StatusFor(err), err)
	}

	c.Locals("userID", principal.UserID)
	c.Locals("principal", principal)
	c.Locals("token", token)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, principal.UserID)
	c.SetUserContext(ctx)

	return c.Next()
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	token = strings.TrimSpace(token)
	if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", false
	}
	return token, true
}
