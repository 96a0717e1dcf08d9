package server

import (
	"errors"

	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// GetLikedPosts handles GET /api/likes?userId=
func (s *Server) GetLikedPosts(c *fiber.Ctx) error {
	userID, err := s.parseUintQuery(c, "userId")
	if err != nil {
		return nil
	}

	ids, err := s.postService.LikedPostIDs(c.Context(), userID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if ids == nil {
		ids = []uint{}
	}

	return c.JSON(fiber.Map{"postIds": ids})
}

// ToggleLike handles POST /api/likes. The same request likes an unliked post
// and unlikes a liked one; the response reports the resulting state.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	var req struct {
		UserID uint `json:"userId"`
		PostID uint `json:"postId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	res, err := s.postService.ToggleLike(c.Context(), req.UserID, req.PostID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.RespondWithError(c, fiber.StatusNotFound,
				models.NewNotFoundError("Post", req.PostID))
		}
		return respondServiceError(c, err)
	}

	s.publishPostEvent(req.PostID, EventPostReactionUpdated, map[string]interface{}{
		"postId":  req.PostID,
		"userId":  req.UserID,
		"isLiked": res.IsLiked,
		"likes":   res.Likes,
	})

	return c.JSON(fiber.Map{
		"success": true,
		"isLiked": res.IsLiked,
		"likes":   res.Likes,
	})
}
