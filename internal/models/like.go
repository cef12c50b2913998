package models

import "time"

// Like represents a user's like on a post. Existence is the entire payload:
// the (PostID, UserID) pair is unique, so a user can like a post at most once.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"postId"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_user" json:"userId"`
	CreatedAt time.Time `json:"createdAt"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Post *Post `gorm:"foreignKey:PostID" json:"post,omitempty"`
}
