package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"inkwell/internal/config"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
)

type stubPostService struct {
	listFn   func(ctx context.Context, params service.ListParams, viewerID uint) (*service.ListResult, error)
	getFn    func(ctx context.Context, id, viewerID uint) (*models.Post, error)
	createFn func(ctx context.Context, authorID uint, input service.CreatePostInput) (*models.Post, error)
	updateFn func(ctx context.Context, userID, postID uint, input service.UpdatePostInput) (*models.Post, error)
	deleteFn func(ctx context.Context, userID, postID uint) error
	toggleFn func(ctx context.Context, userID, postID uint) (bool, int64, error)
}

func (s *stubPostService) ListPosts(ctx context.Context, params service.ListParams, viewerID uint) (*service.ListResult, error) {
	return s.listFn(ctx, params, viewerID)
}

func (s *stubPostService) GetPost(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	return s.getFn(ctx, id, viewerID)
}

func (s *stubPostService) CreatePost(ctx context.Context, authorID uint, input service.CreatePostInput) (*models.Post, error) {
	return s.createFn(ctx, authorID, input)
}

func (s *stubPostService) UpdatePost(ctx context.Context, userID, postID uint, input service.UpdatePostInput) (*models.Post, error) {
	return s.updateFn(ctx, userID, postID, input)
}

func (s *stubPostService) DeletePost(ctx context.Context, userID, postID uint) error {
	return s.deleteFn(ctx, userID, postID)
}

func (s *stubPostService) ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error) {
	return s.toggleFn(ctx, userID, postID)
}

type stubCommentService struct {
	createFn func(ctx context.Context, userID, postID uint, content string, parentID *uint) (*models.Comment, error)
	listFn   func(ctx context.Context, postID uint) ([]*models.Comment, error)
	deleteFn func(ctx context.Context, userID, commentID uint) error
}

func (s *stubCommentService) CreateComment(ctx context.Context, userID, postID uint, content string, parentID *uint) (*models.Comment, error) {
	return s.createFn(ctx, userID, postID, content, parentID)
}

func (s *stubCommentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listFn(ctx, postID)
}

func (s *stubCommentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	return s.deleteFn(ctx, userID, commentID)
}

func newTestServer(postSvc service.PostService, commentSvc service.CommentService) (*Server, *fiber.App) {
	srv := &Server{
		config: &config.Config{
			JWTSecret: "test-secret-key-for-handler-tests",
			Env:       "test",
		},
		postService:    postSvc,
		commentService: commentSvc,
	}

	app := fiber.New()
	srv.SetupRoutes(app)
	return srv, app
}

func bearerToken(t *testing.T, srv *Server, userID uint) string {
	t.Helper()
	token, err := srv.generateToken(&models.User{ID: userID, Role: models.RoleMember})
	require.NoError(t, err)
	return "Bearer " + token
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	defer resp.Body.Close()

	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload))
	return payload
}
