// Package service contains the business logic of the application.
package service

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

// ListParams carries the wire-level listing query. Zero values mean
// "not provided" and are replaced by defaults.
type ListParams struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	Tags      []string
	AuthorID  uint
}

// Pagination describes the page window of a listing response.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// ListResult is a page of posts with its pagination envelope.
type ListResult struct {
	Posts      []*models.Post `json:"posts"`
	Pagination Pagination     `json:"pagination"`
}

// CreatePostInput carries the fields accepted on post creation.
type CreatePostInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt"`
	ImageURL string   `json:"imageUrl"`
	Tags     []string `json:"tags"`
}

// UpdatePostInput carries a partial update; nil fields are left untouched.
type UpdatePostInput struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Excerpt  *string   `json:"excerpt"`
	ImageURL *string   `json:"imageUrl"`
	Tags     *[]string `json:"tags"`
}

// PostService defines the post business operations.
type PostService interface {
	ListPosts(ctx context.Context, params ListParams, viewerID uint) (*ListResult, error)
	// GetPost returns a published post by ID, bumping its view counter first
	// so the response carries the post-increment value.
	GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	CreatePost(ctx context.Context, authorID uint, input CreatePostInput) (*models.Post, error)
	// UpdatePost applies a partial patch. Only the author may update;
	// a missing post yields NOT_FOUND before any authorization check.
	UpdatePost(ctx context.Context, userID, postID uint, input UpdatePostInput) (*models.Post, error)
	DeletePost(ctx context.Context, userID, postID uint) error
	// ToggleLike flips the caller's like on the post and returns the resulting
	// state with the fresh like count.
	ToggleLike(ctx context.Context, userID, postID uint) (liked bool, likeCount int64, err error)
}

type postService struct {
	posts repository.PostRepository
}

// NewPostService creates a new post service.
func NewPostService(posts repository.PostRepository) PostService {
	return &postService{posts: posts}
}

func normalize(params ListParams) ListParams {
	if params.Page < 1 {
		params.Page = defaultPage
	}
	if params.Limit < 1 {
		params.Limit = defaultLimit
	}
	if params.Limit > maxLimit {
		params.Limit = maxLimit
	}
	if params.SortBy == "" {
		params.SortBy = "createdAt"
	}
	if strings.EqualFold(params.SortOrder, "asc") {
		params.SortOrder = "ASC"
	} else {
		params.SortOrder = "DESC"
	}
	return params
}

// isDefaultQuery reports whether the request matches the unfiltered first
// page, the only listing cached server-side.
func isDefaultQuery(params ListParams) bool {
	return params.Page == defaultPage &&
		params.Limit == defaultLimit &&
		params.SortBy == "createdAt" &&
		params.SortOrder == "DESC" &&
		params.Search == "" &&
		len(params.Tags) == 0 &&
		params.AuthorID == 0
}

func (s *postService) ListPosts(ctx context.Context, params ListParams, viewerID uint) (*ListResult, error) {
	params = normalize(params)

	if viewerID == 0 && isDefaultQuery(params) {
		var result ListResult
		err := cache.Aside(ctx, cache.PostListKey(), &result, cache.PostListTTL, func() error {
			r, err := s.list(ctx, params, 0)
			if err != nil {
				return err
			}
			result = *r
			return nil
		})
		if err != nil {
			return nil, err
		}
		return &result, nil
	}

	return s.list(ctx, params, viewerID)
}

func (s *postService) list(ctx context.Context, params ListParams, viewerID uint) (*ListResult, error) {
	posts, total, err := s.posts.List(ctx, repository.ListFilter{
		Page:      params.Page,
		Limit:     params.Limit,
		SortBy:    params.SortBy,
		SortOrder: params.SortOrder,
		Search:    params.Search,
		Tags:      params.Tags,
		AuthorID:  params.AuthorID,
	}, viewerID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}

	totalPages := int(math.Ceil(float64(total) / float64(params.Limit)))
	return &ListResult{
		Posts: posts,
		Pagination: Pagination{
			CurrentPage: params.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			HasNextPage: params.Page < totalPages,
			HasPrevPage: params.Page > 1,
		},
	}, nil
}

func (s *postService) GetPost(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	// The bump targets a row that may not exist or be unpublished; in either
	// case it matches nothing and the read below reports NOT_FOUND.
	if err := s.posts.IncrementViewCount(ctx, id); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to increment view count", "postId", id, "error", err)
	}

	post, err := s.posts.GetByID(ctx, id, viewerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	return post, nil
}

func (s *postService) CreatePost(ctx context.Context, authorID uint, input CreatePostInput) (*models.Post, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, models.NewValidationError("title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, models.NewValidationError("content is required")
	}

	now := time.Now()
	post := &models.Post{
		Title:       input.Title,
		Content:     input.Content,
		Excerpt:     input.Excerpt,
		ImageURL:    input.ImageURL,
		Tags:        pq.StringArray(input.Tags),
		AuthorID:    authorID,
		IsPublished: true,
		PublishedAt: &now,
	}
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, models.NewInternalError(err)
	}

	// Re-read so the response carries the author and computed fields.
	created, err := s.posts.GetByID(ctx, post.ID, authorID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return created, nil
}

func (s *postService) UpdatePost(ctx context.Context, userID, postID uint, input UpdatePostInput) (*models.Post, error) {
	post, err := s.posts.GetForMutation(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	if post.AuthorID != userID {
		return nil, models.NewUnauthorizedError("You can only update your own posts")
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) == "" {
		return nil, models.NewValidationError("title cannot be empty")
	}
	if input.Content != nil && strings.TrimSpace(*input.Content) == "" {
		return nil, models.NewValidationError("content cannot be empty")
	}

	patch := repository.PostPatch{
		Title:    input.Title,
		Content:  input.Content,
		Excerpt:  input.Excerpt,
		ImageURL: input.ImageURL,
		Tags:     input.Tags,
	}
	if err := s.posts.Update(ctx, postID, patch); err != nil {
		return nil, models.NewInternalError(err)
	}

	updated, err := s.posts.GetForMutation(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return updated, nil
}

func (s *postService) DeletePost(ctx context.Context, userID, postID uint) error {
	post, err := s.posts.GetForMutation(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Post")
		}
		return models.NewInternalError(err)
	}
	if post.AuthorID != userID {
		return models.NewUnauthorizedError("You can only delete your own posts")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (s *postService) ToggleLike(ctx context.Context, userID, postID uint) (bool, int64, error) {
	// Publication state is deliberately not checked here; likes survive a
	// post being unpublished and republished.
	if _, err := s.posts.GetForMutation(ctx, postID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, 0, models.NewNotFoundError("Post")
		}
		return false, 0, models.NewInternalError(err)
	}

	liked, err := s.posts.ToggleLike(ctx, userID, postID)
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}

	count, err := s.posts.CountLikes(ctx, postID)
	if err != nil {
		return false, 0, models.NewInternalError(err)
	}
	return liked, count, nil
}
