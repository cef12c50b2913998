package service

import (
	"context"
	"errors"
	"strings"

	"inkwell/internal/models"
	"inkwell/internal/repository"

	"gorm.io/gorm"
)

// CommentService defines the comment business operations.
type CommentService interface {
	// CreateComment adds a comment to a published post. ParentID, when set,
	// must name a comment on the same post.
	CreateComment(ctx context.Context, userID, postID uint, content string, parentID *uint) (*models.Comment, error)
	ListComments(ctx context.Context, postID uint) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, userID, commentID uint) error
}

type commentService struct {
	comments repository.CommentRepository
	posts    repository.PostRepository
}

// NewCommentService creates a new comment service.
func NewCommentService(comments repository.CommentRepository, posts repository.PostRepository) CommentService {
	return &commentService{comments: comments, posts: posts}
}

func (s *commentService) CreateComment(ctx context.Context, userID, postID uint, content string, parentID *uint) (*models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return nil, models.NewValidationError("content is required")
	}

	post, err := s.posts.GetForMutation(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	if !post.IsPublished {
		return nil, models.NewNotFoundError("Post")
	}

	if parentID != nil {
		parent, err := s.comments.GetByID(ctx, *parentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, models.NewNotFoundError("Comment")
			}
			return nil, models.NewInternalError(err)
		}
		if parent.PostID != postID {
			return nil, models.NewValidationError("parent comment belongs to a different post")
		}
	}

	comment := &models.Comment{
		Content:  content,
		PostID:   postID,
		AuthorID: userID,
		ParentID: parentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, models.NewInternalError(err)
	}
	return comment, nil
}

func (s *commentService) ListComments(ctx context.Context, postID uint) ([]*models.Comment, error) {
	post, err := s.posts.GetForMutation(ctx, postID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Post")
		}
		return nil, models.NewInternalError(err)
	}
	if !post.IsPublished {
		return nil, models.NewNotFoundError("Post")
	}

	comments, err := s.comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if comments == nil {
		comments = []*models.Comment{}
	}
	return comments, nil
}

func (s *commentService) DeleteComment(ctx context.Context, userID, commentID uint) error {
	comment, err := s.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.NewNotFoundError("Comment")
		}
		return models.NewInternalError(err)
	}
	if comment.AuthorID != userID {
		return models.NewUnauthorizedError("You can only delete your own comments")
	}

	if err := s.comments.Delete(ctx, commentID); err != nil {
		return models.NewInternalError(err)
	}
	return nil
}
