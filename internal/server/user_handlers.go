package server

import (
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetMyProfile returns the authenticated user's profile.
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	user, err := s.userRepo.GetByID(c.UserContext(), userID)
	if err != nil {
		return models.RespondWithAppError(c, models.NewInternalError(err))
	}
	return c.JSON(fiber.Map{"user": user})
}

// GetUserPosts lists a user's published posts, paginated like the main
// listing endpoint.
func (s *Server) GetUserPosts(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid user id"))
	}

	viewerID, _ := s.optionalUserID(c)

	result, err := s.postService.ListPosts(c.UserContext(), service.ListParams{
		Page:     c.QueryInt("page", 0),
		Limit:    c.QueryInt("limit", 0),
		AuthorID: uint(id),
	}, viewerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}
