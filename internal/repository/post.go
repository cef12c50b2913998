// Package repository provides data access layer implementations for the application.
package repository

import (
	"context"

	"inkwell/internal/cache"
	"inkwell/internal/models"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// ListFilter describes a filtered, sorted, paginated post listing request.
// SortBy carries the wire-level field name; unknown fields fall back to
// creation time, descending.
type ListFilter struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	Tags      []string
	AuthorID  uint
}

// PostPatch carries a partial update; nil fields are left untouched.
type PostPatch struct {
	Title    *string
	Content  *string
	Excerpt  *string
	ImageURL *string
	Tags     *[]string
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	// GetByID returns a published post with author, top-level comments and
	// computed counts. Absent and unpublished posts are indistinguishable:
	// both yield gorm.ErrRecordNotFound.
	GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error)
	// GetForMutation returns a post regardless of publication state, without
	// computed columns or preloads. Used by update/delete/like paths.
	GetForMutation(ctx context.Context, id uint) (*models.Post, error)
	List(ctx context.Context, filter ListFilter, viewerID uint) ([]*models.Post, int64, error)
	Update(ctx context.Context, id uint, patch PostPatch) error
	Delete(ctx context.Context, id uint) error
	IncrementViewCount(ctx context.Context, id uint) error
	// ToggleLike flips the like row for (postID, userID) and reports the
	// resulting state. Atomic under concurrency: the unique (post_id, user_id)
	// index plus ON CONFLICT DO NOTHING collapse duplicate creates, and a
	// lost-race delete is a harmless no-op.
	ToggleLike(ctx context.Context, userID, postID uint) (bool, error)
	CountLikes(ctx context.Context, postID uint) (int64, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// sortColumns whitelists the wire-level sort fields and their SQL columns.
// like_count is a SELECT alias from withComputed; PostgreSQL allows
// referencing it in ORDER BY within the same query level.
var sortColumns = map[string]string{
	"createdAt":   "posts.created_at",
	"publishedAt": "posts.published_at",
	"viewCount":   "posts.view_count",
	"likeCount":   "like_count",
	"title":       "posts.title",
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if post.Tags == nil {
		post.Tags = pq.StringArray{}
	}
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostLists(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, viewerID uint) (*models.Post, error) {
	var post models.Post
	err := r.withComputed(r.db.WithContext(ctx), viewerID).
		Preload("Author").
		Preload("Comments", func(db *gorm.DB) *gorm.DB {
			return db.Where("parent_id IS NULL").Order("created_at DESC")
		}).
		Preload("Comments.Author").
		Where("is_published = ?", true).
		First(&post, id).Error
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetForMutation(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) List(ctx context.Context, filter ListFilter, viewerID uint) ([]*models.Post, int64, error) {
	// The count runs over the bare posts table with the same criteria, so
	// one-to-many joins can never double-count a post.
	var total int64
	if err := r.applyFilter(r.db.WithContext(ctx).Model(&models.Post{}), filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []*models.Post
	q := r.withComputed(r.applyFilter(r.db.WithContext(ctx), filter), viewerID).
		Preload("Author").
		Order(r.orderClause(filter)).
		Limit(filter.Limit).
		Offset((filter.Page - 1) * filter.Limit)
	if err := q.Find(&posts).Error; err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r *postRepository) applyFilter(db *gorm.DB, filter ListFilter) *gorm.DB {
	q := db.Where("is_published = ?", true)
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("title ILIKE ? OR content ILIKE ?", like, like)
	}
	if len(filter.Tags) > 0 {
		// Overlap: the post's tag set intersects the requested set.
		q = q.Where("tags && ?", pq.StringArray(filter.Tags))
	}
	if filter.AuthorID != 0 {
		q = q.Where("author_id = ?", filter.AuthorID)
	}
	return q
}

func (r *postRepository) orderClause(filter ListFilter) string {
	column, ok := sortColumns[filter.SortBy]
	if !ok {
		return "posts.created_at DESC"
	}
	order := "DESC"
	if filter.SortOrder == "ASC" {
		order = "ASC"
	}
	return column + " " + order
}

// withComputed adds subqueries to fetch counts and liked status in a single
// query, so join rows never reach the caller.
func (r *postRepository) withComputed(db *gorm.DB, viewerID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) AS like_count"

	if viewerID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS is_liked", viewerID)
	}
	return db.Select(selectQuery + ", false AS is_liked")
}

func (r *postRepository) Update(ctx context.Context, id uint, patch PostPatch) error {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Content != nil {
		updates["content"] = *patch.Content
	}
	if patch.Excerpt != nil {
		updates["excerpt"] = *patch.Excerpt
	}
	if patch.ImageURL != nil {
		updates["image_url"] = *patch.ImageURL
	}
	if patch.Tags != nil {
		updates["tags"] = pq.StringArray(*patch.Tags)
	}
	if len(updates) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(updates).Error
	if err == nil {
		cache.InvalidatePostLists(ctx)
	}
	return err
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	// Hard delete; comments and likes cascade at the storage layer.
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePostLists(ctx)
	cache.InvalidatePostComments(ctx, id)
	return nil
}

// IncrementViewCount bumps the view counter by one. Lost updates under high
// concurrency are tolerated; this is a display metric.
func (r *postRepository) IncrementViewCount(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (r *postRepository) ToggleLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (post_id, user_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (post_id, user_id) DO NOTHING`,
		postID, userID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	if res.RowsAffected > 0 {
		cache.InvalidatePostLists(ctx)
		return true, nil
	}

	// Row already existed: unlike. A concurrent delete winning the race leaves
	// RowsAffected at zero, which is still an unliked end state.
	del := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if del.Error != nil {
		return false, del.Error
	}
	cache.InvalidatePostLists(ctx)
	return false, nil
}

func (r *postRepository) CountLikes(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}
