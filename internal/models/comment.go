package models

import "time"

// Comment represents a comment on a post. ParentID forms a reply tree;
// the tree is reconstructed at read time by grouping on ParentID rather
// than persisting a nested object graph.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	AuthorID  uint      `gorm:"not null" json:"authorId"`
	Author    *User     `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	ParentID  *uint     `gorm:"index" json:"parentId"`
	Content   string    `gorm:"not null" json:"content"`
	CreatedAt time.Time `json:"createdAt"`

	// Replies is filled when a comment tree is assembled; never persisted.
	Replies []*Comment `gorm:"-" json:"replies,omitempty"`
}
