package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetComments handles GET /api/comments?postId=
func (s *Server) GetComments(c *fiber.Ctx) error {
	// No postId means no comments, not a client error.
	if c.Query("postId") == "" {
		return c.JSON(fiber.Map{"comments": []*models.Comment{}})
	}

	postID, err := s.parseUintQuery(c, "postId")
	if err != nil {
		return nil
	}

	comments, err := s.commentService.ListComments(c.Context(), postID)
	if err != nil {
		return respondServiceError(c, err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}

	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment handles POST /api/comments
func (s *Server) CreateComment(c *fiber.Ctx) error {
	var req struct {
		PostID     uint   `json:"postId"`
		Content    string `json:"content"`
		AuthorID   uint   `json:"authorId"`
		AuthorName string `json:"authorName"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.Context(), service.CreateCommentInput{
		PostID:     req.PostID,
		Content:    req.Content,
		AuthorID:   req.AuthorID,
		AuthorName: req.AuthorName,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	s.publishPostEvent(comment.PostID, EventCommentCreated, map[string]interface{}{
		"commentId":  comment.ID,
		"postId":     comment.PostID,
		"authorId":   comment.AuthorID,
		"authorName": comment.AuthorName,
	})

	return c.Status(fiber.StatusCreated).JSON(comment)
}
