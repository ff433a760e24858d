package server

import (
	"framez/internal/models"

	"github.com/gofiber/fiber/v2"
)

// UploadMedia handles POST /api/media
// @Summary Upload a post image
// @Description Stores the image as WebP and returns a media item for a new post
// @Tags media
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "Image file"
// @Success 201 {object} models.MediaItem
// @Failure 400 {object} models.ErrorResponse
// @Router /media [post]
func (s *Server) UploadMedia(c *fiber.Ctx) error {
	content, err := readUpload(c, "file", s.media.MaxUploadSizeBytes())
	if err != nil {
		return respondError(c, err)
	}

	url, err := s.media.SaveImage(c.UserContext(), currentUserID(c), content)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(models.MediaItem{
		Type: models.MediaTypeImage,
		URL:  url,
	})
}
