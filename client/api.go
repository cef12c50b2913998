// Package client is a Go SDK for the Inkwell API with a local query cache.
//
// The Cache type mirrors the access pattern of the web frontend: reads are
// served from a keyed store with staleness and retention windows, mutations
// invalidate or optimistically patch affected entries.
package client

import (
	"context"
	"time"
)

// Query describes a post listing request. Zero values mean "not provided";
// the server applies its defaults.
type Query struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	Tags      []string
	AuthorID  uint
}

// Author is the post author as embedded in listing and detail responses.
type Author struct {
	ID        uint   `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Avatar    string `json:"avatar"`
	Role      string `json:"role"`
}

// Post is the wire representation of a post.
type Post struct {
	ID           uint       `json:"id"`
	Title        string     `json:"title"`
	Content      string     `json:"content"`
	Excerpt      string     `json:"excerpt"`
	ImageURL     string     `json:"imageUrl"`
	Tags         []string   `json:"tags"`
	AuthorID     uint       `json:"authorId"`
	Author       *Author    `json:"author,omitempty"`
	IsPublished  bool       `json:"isPublished"`
	PublishedAt  *time.Time `json:"publishedAt"`
	ViewCount    int        `json:"viewCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	CommentCount int        `json:"commentCount"`
	LikeCount    int        `json:"likeCount"`
	IsLiked      bool       `json:"isLiked"`
}

// Pagination is the page window of a listing response.
type Pagination struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int64 `json:"totalItems"`
	HasNextPage bool  `json:"hasNextPage"`
	HasPrevPage bool  `json:"hasPrevPage"`
}

// PostsResult is a page of posts with its pagination envelope.
type PostsResult struct {
	Posts      []*Post    `json:"posts"`
	Pagination Pagination `json:"pagination"`
}

// PostInput carries the fields accepted on post creation.
type PostInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Excerpt  string   `json:"excerpt,omitempty"`
	ImageURL string   `json:"imageUrl,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// PostPatch carries a partial update; nil fields are not sent.
type PostPatch struct {
	Title    *string   `json:"title,omitempty"`
	Content  *string   `json:"content,omitempty"`
	Excerpt  *string   `json:"excerpt,omitempty"`
	ImageURL *string   `json:"imageUrl,omitempty"`
	Tags     *[]string `json:"tags,omitempty"`
}

// LikeResult reports the state after a like toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// API is the transport boundary of the SDK. HTTPClient is the production
// implementation; tests substitute in-memory fakes.
type API interface {
	ListPosts(ctx context.Context, q Query) (*PostsResult, error)
	GetPost(ctx context.Context, id uint) (*Post, error)
	CreatePost(ctx context.Context, input PostInput) (*Post, error)
	UpdatePost(ctx context.Context, id uint, patch PostPatch) (*Post, error)
	DeletePost(ctx context.Context, id uint) error
	ToggleLike(ctx context.Context, id uint) (*LikeResult, error)
}
