package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	// ListByPost returns the post's comments as a tree: top-level comments
	// newest first, replies nested oldest first.
	ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error)
	Delete(ctx context.Context, id uint) error
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	if err := r.db.WithContext(ctx).Create(comment).Error; err != nil {
		return err
	}
	cache.InvalidatePostComments(ctx, comment.PostID)
	return nil
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) ListByPost(ctx context.Context, postID uint) ([]*models.Comment, error) {
	var tree []*models.Comment
	err := cache.Aside(ctx, cache.PostCommentsKey(postID), &tree, cache.PostCommentsTTL, func() error {
		var rows []*models.Comment
		if err := r.db.WithContext(ctx).
			Preload("Author").
			Where("post_id = ?", postID).
			Order("created_at ASC").
			Find(&rows).Error; err != nil {
			return err
		}
		tree = assembleTree(rows)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tree, nil
}

// assembleTree groups replies under their parents in memory. Orphaned replies
// (parent deleted mid-read) are promoted to top level rather than dropped.
func assembleTree(rows []*models.Comment) []*models.Comment {
	byID := make(map[uint]*models.Comment, len(rows))
	for _, c := range rows {
		byID[c.ID] = c
	}

	tree := make([]*models.Comment, 0, len(rows))
	for _, c := range rows {
		if c.ParentID != nil {
			if parent, ok := byID[*c.ParentID]; ok {
				parent.Replies = append(parent.Replies, c)
				continue
			}
		}
		tree = append(tree, c)
	}

	// Top-level newest first; rows arrive oldest first so reverse in place.
	for i, j := 0, len(tree)-1; i < j; i, j = i+1, j-1 {
		tree[i], tree[j] = tree[j], tree[i]
	}
	return tree
}

func (r *commentRepository) Delete(ctx context.Context, id uint) error {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return err
	}
	if err := r.db.WithContext(ctx).Delete(&models.Comment{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePostComments(ctx, comment.PostID)
	return nil
}
