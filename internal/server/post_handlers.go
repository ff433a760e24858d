package server

import (
	"framez/internal/models"
	"framez/internal/service"
	"framez/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// GetFeed handles GET /api/posts
// @Summary Feed
// @Description Reverse-chronological feed with keyset pagination
// @Tags posts
// @Produce json
// @Param cursor query string false "Cursor returned as next_cursor"
// @Param limit query int false "Page size (default 10, max 50)"
// @Success 200 {object} service.FeedPage
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [get]
func (s *Server) GetFeed(c *fiber.Ctx) error {
	page, err := s.postService.GetFeed(c.UserContext(), c.Query("cursor"), c.QueryInt("limit", 0))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(page)
}

// CreatePost handles POST /api/posts
// @Summary Create post
// @Tags posts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body validation.PostForm true "Caption and media"
// @Success 201 {object} models.Post
// @Failure 400 {object} models.ErrorResponse
// @Router /posts [post]
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req validation.PostForm
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	author, err := s.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	post, err := s.postService.CreatePost(c.UserContext(), service.CreatePostInput{
		UserID:   author.ID,
		FullName: author.DisplayName(),
		Avatar:   author.AvatarURL(),
		Caption:  req.Caption,
		Media:    req.Media,
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// GetPost handles GET /api/posts/:id
// @Summary Post detail
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Success 200 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [get]
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postService.GetPost(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(post)
}

// DeletePost handles DELETE /api/posts/:id
// @Summary Delete post
// @Description Removes the caller's post with its comments and likes
// @Tags posts
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 204
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id} [delete]
func (s *Server) DeletePost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeletePost(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// ToggleLike handles POST /api/posts/:id/like
// @Summary Like or unlike
// @Tags posts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 200 {object} service.LikeResult
// @Failure 404 {object} models.ErrorResponse
// @Router /posts/{id}/like [post]
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	res, err := s.postService.ToggleLike(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(res)
}

// CheckUserLike handles GET /api/posts/:id/likes/:userId
// @Summary Has the user liked the post
// @Tags posts
// @Produce json
// @Param id path int true "Post ID"
// @Param userId path string true "User ID"
// @Success 200 {object} object{liked=bool}
// @Router /posts/{id}/likes/{userId} [get]
func (s *Server) CheckUserLike(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	liked, err := s.postService.CheckUserLike(c.UserContext(), id, c.Params("userId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"liked": liked})
}

// Repost handles POST /api/posts/:id/repost
// @Summary Repost
// @Description Shares a post; reposting a repost shares its original
// @Tags reposts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Post ID"
// @Success 201 {object} models.Post
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /posts/{id}/repost [post]
func (s *Server) Repost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	user, err := s.currentUser(c)
	if err != nil {
		return respondError(c, err)
	}

	repost, err := s.postService.Repost(c.UserContext(), service.RepostInput{
		OriginalPostID: id,
		UserID:         user.ID,
		FullName:       user.DisplayName(),
		Avatar:         user.AvatarURL(),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(repost)
}

// DeleteRepost handles DELETE /api/reposts/:id
// @Summary Delete repost
// @Tags reposts
// @Security BearerAuth
// @Param id path int true "Repost ID"
// @Success 204
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /reposts/{id} [delete]
func (s *Server) DeleteRepost(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.postService.DeleteRepost(c.UserContext(), id, currentUserID(c)); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
