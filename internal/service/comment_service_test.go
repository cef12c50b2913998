package service

import (
	"context"
	"testing"

	"inkwell/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCommentRepo struct {
	createFn     func(ctx context.Context, comment *models.Comment) error
	getByIDFn    func(ctx context.Context, id uint) (*models.Comment, error)
	listByPostFn func(ctx context.Context, postID uint) ([]*models.Comment, error)
	deleteFn     func(ctx context.Context, id uint) error
}

func (s *stubCommentRepo) Create(ctx context.Context, comment *models.Comment) error {
	return s.createFn(ctx, comment)
}

func (s *stubCommentRepo) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	return s.getByIDFn(ctx, id)
}

func (s *stubCommentRepo) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	return s.listByPostFn(ctx, postID)
}

func (s *stubCommentRepo) Delete(ctx context.Context, id uint) error {
	return s.deleteFn(ctx, id)
}

func publishedPostRepo() *stubPostRepo {
	return &stubPostRepo{
		getForMutFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, IsPublished: true}, nil
		},
	}
}

func TestCreateComment_Validation(t *testing.T) {
	svc := NewCommentService(&stubCommentRepo{}, publishedPostRepo())

	_, err := svc.CreateComment(context.Background(), 1, 1, "   ", nil)
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateComment_UnpublishedPostHidden(t *testing.T) {
	posts := &stubPostRepo{
		getForMutFn: func(_ context.Context, id uint) (*models.Post, error) {
			return &models.Post{ID: id, IsPublished: false}, nil
		},
	}
	svc := NewCommentService(&stubCommentRepo{}, posts)

	_, err := svc.CreateComment(context.Background(), 1, 1, "hello", nil)
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestCreateComment_ParentOnDifferentPost(t *testing.T) {
	parentID := uint(9)
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 2}, nil
		},
	}
	svc := NewCommentService(comments, publishedPostRepo())

	_, err := svc.CreateComment(context.Background(), 1, 1, "reply", &parentID)
	assert.Equal(t, "VALIDATION_ERROR", appCode(t, err))
}

func TestCreateComment_MissingParent(t *testing.T) {
	parentID := uint(9)
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, _ uint) (*models.Comment, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}
	svc := NewCommentService(comments, publishedPostRepo())

	_, err := svc.CreateComment(context.Background(), 1, 1, "reply", &parentID)
	assert.Equal(t, "NOT_FOUND", appCode(t, err))
}

func TestCreateComment_Success(t *testing.T) {
	parentID := uint(9)
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, PostID: 1}, nil
		},
		createFn: func(_ context.Context, comment *models.Comment) error {
			comment.ID = 12
			return nil
		},
	}
	svc := NewCommentService(comments, publishedPostRepo())

	comment, err := svc.CreateComment(context.Background(), 3, 1, "reply", &parentID)
	require.NoError(t, err)
	assert.Equal(t, uint(12), comment.ID)
	assert.Equal(t, uint(3), comment.AuthorID)
	require.NotNil(t, comment.ParentID)
	assert.Equal(t, parentID, *comment.ParentID)
}

func TestListComments_NilBecomesEmptySlice(t *testing.T) {
	comments := &stubCommentRepo{
		listByPostFn: func(_ context.Context, _ uint) ([]*models.Comment, error) {
			return nil, nil
		},
	}
	svc := NewCommentService(comments, publishedPostRepo())

	tree, err := svc.ListComments(context.Background(), 1)
	require.NoError(t, err)
	assert.NotNil(t, tree)
}

func TestDeleteComment_AuthorOnly(t *testing.T) {
	comments := &stubCommentRepo{
		getByIDFn: func(_ context.Context, id uint) (*models.Comment, error) {
			return &models.Comment{ID: id, AuthorID: 1}, nil
		},
	}
	svc := NewCommentService(comments, publishedPostRepo())

	err := svc.DeleteComment(context.Background(), 2, 5)
	assert.Equal(t, "UNAUTHORIZED", appCode(t, err))
}
