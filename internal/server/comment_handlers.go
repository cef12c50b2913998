package server

import (
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

type createCommentRequest struct {
	Content  string `json:"content"`
	ParentID *uint  `json:"parentId"`
}

// GetComments returns a post's comments as a tree, top-level newest first.
func (s *Server) GetComments(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid post id"))
	}

	comments, err := s.commentService.ListComments(c.UserContext(), uint(id))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"comments": comments})
}

// CreateComment adds a comment (or a reply, when parentId is set) to a post.
func (s *Server) CreateComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid post id"))
	}

	var req createCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid request body"))
	}

	comment, err := s.commentService.CreateComment(c.UserContext(), userID, uint(id), req.Content, req.ParentID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Comment created successfully",
		"comment": comment,
	})
}

// DeleteComment removes a comment. Only the comment's author may delete it.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	commentID, err := c.ParamsInt("commentId")
	if err != nil || commentID < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid comment id"))
	}

	if err := s.commentService.DeleteComment(c.UserContext(), userID, uint(commentID)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Comment deleted successfully"})
}
