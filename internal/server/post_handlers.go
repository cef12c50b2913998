package server

import (
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetPosts handles listing published posts with filtering, sorting,
// pagination and search. All parameters are optional.
func (s *Server) GetPosts(c *fiber.Ctx) error {
	params := service.ListParams{
		Page:      c.QueryInt("page", 0),
		Limit:     c.QueryInt("limit", 0),
		SortBy:    c.Query("sortBy"),
		SortOrder: c.Query("sortOrder"),
		Search:    c.Query("search"),
		AuthorID:  uint(c.QueryInt("authorId", 0)),
	}
	if tags := c.Query("tags"); tags != "" {
		for _, t := range strings.Split(tags, ",") {
			if t = strings.TrimSpace(t); t != "" {
				params.Tags = append(params.Tags, t)
			}
		}
	}

	viewerID, _ := s.optionalUserID(c)

	result, err := s.postService.ListPosts(c.UserContext(), params, viewerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(result)
}

// GetPost handles fetching a single published post with its author, comments
// and computed counts. The view counter is bumped before the read, so the
// response carries the incremented value.
func (s *Server) GetPost(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid post id"))
	}

	viewerID, _ := s.optionalUserID(c)

	post, err := s.postService.GetPost(c.UserContext(), uint(id), viewerID)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"post": post})
}

// CreatePost handles creating a new post for the authenticated user.
func (s *Server) CreatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	var input service.CreatePostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid request body"))
	}

	post, err := s.postService.CreatePost(c.UserContext(), userID, input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Post created successfully",
		"post":    post,
	})
}

// UpdatePost handles partial updates to a post. Only the author may update;
// missing posts report 404 before any authorization check.
func (s *Server) UpdatePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid post id"))
	}

	var input service.UpdatePostInput
	if err := c.BodyParser(&input); err != nil {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid request body"))
	}

	post, err := s.postService.UpdatePost(c.UserContext(), userID, uint(id), input)
	if err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Post updated successfully",
		"post":    post,
	})
}

// DeletePost handles deleting a post. Only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid post id"))
	}

	if err := s.postService.DeletePost(c.UserContext(), userID, uint(id)); err != nil {
		return models.RespondWithAppError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Post deleted successfully"})
}

// ToggleLike flips the caller's like on a post and reports the resulting
// state. Repeated calls alternate between liked and unliked.
func (s *Server) ToggleLike(c *fiber.Ctx) error {
	userID := c.Locals("userID").(uint)

	id, err := c.ParamsInt("id")
	if err != nil || id < 1 {
		return models.RespondWithAppError(c,
			models.NewValidationError("invalid post id"))
	}

	liked, likeCount, err := s.postService.ToggleLike(c.UserContext(), userID, uint(id))
	if err != nil {
		return models.RespondWithAppError(c, err)
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	return c.JSON(fiber.Map{
		"message":   message,
		"liked":     liked,
		"likeCount": likeCount,
	})
}
