package models

import (
	"time"

	"github.com/lib/pq"
)

// Post represents a published article in the Inkwell application.
//
// Posts are hard-deleted; comments and likes cascade at the storage layer.
type Post struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"not null" json:"title"`
	Content     string         `gorm:"type:text;not null" json:"content"`
	Excerpt     string         `json:"excerpt"`
	ImageURL    string         `json:"imageUrl"`
	Tags        pq.StringArray `gorm:"type:text[]" json:"tags"`
	AuthorID    uint           `gorm:"not null;index" json:"authorId"`
	Author      *User          `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	IsPublished bool           `gorm:"not null;default:true;index" json:"isPublished"`
	PublishedAt *time.Time     `json:"publishedAt"`
	ViewCount   int            `gorm:"not null;default:0" json:"viewCount"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`

	// Top-level comments, populated only on detail reads.
	Comments []Comment `gorm:"foreignKey:PostID" json:"comments,omitempty"`

	// CommentCount is not persisted; computed at query time
	CommentCount int `gorm:"->" json:"commentCount"`
	// LikeCount is not persisted; computed at query time
	LikeCount int `gorm:"->" json:"likeCount"`
	// IsLiked indicates whether the current requesting user liked this post (computed)
	IsLiked bool `gorm:"->" json:"isLiked"`
}
