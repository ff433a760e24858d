package server

import (
	"time"

	"framez/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UserResponse is the public view of an account.
type UserResponse struct {
	ID          string    `json:"id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	ImageURL    string    `json:"image_url"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

func toUserResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		Email:       u.Email,
		ImageURL:    u.ImageURL,
		DisplayName: u.DisplayName(),
		AvatarURL:   u.AvatarURL(),
		CreatedAt:   u.CreatedAt,
	}
}

// GetMe handles GET /api/users/me
// @Summary Current user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /users/me [get]
func (s *Server) GetMe(c *fiber.Ctx) error {
	user, err := s.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// UploadProfileImage handles PUT /api/users/me/image
// @Summary Upload profile image
// @Tags users
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param image formData file true "Profile image"
// @Success 200 {object} UserResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /users/me/image [put]
func (s *Server) UploadProfileImage(c *fiber.Ctx) error {
	userID := currentUserID(c)
	content, err := readUpload(c, "image", s.media.MaxUploadSizeBytes())
	if err != nil {
		return respondError(c, err)
	}

	url, err := s.media.SaveImage(c.UserContext(), userID, content)
	if err != nil {
		return respondError(c, err)
	}

	user, err := s.identity.SetProfileImage(c.UserContext(), userID, url)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// ClearProfileImage handles DELETE /api/users/me/image
// @Summary Remove profile image
// @Description The generated default avatar applies afterwards
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} UserResponse
// @Router /users/me/image [delete]
func (s *Server) ClearProfileImage(c *fiber.Ctx) error {
	user, err := s.identity.SetProfileImage(c.UserContext(), currentUserID(c), "")
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(toUserResponse(user))
}

// GetUserPosts handles GET /api/users/:id/posts
// @Summary Posts by user
// @Description All posts authored by the user, newest first
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {array} models.Post
// @Router /users/{id}/posts [get]
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	posts, err := s.postService.GetUserPosts(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(posts)
}
