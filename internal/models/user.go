// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User roles. Role gates nothing on the mutation path (posts are strictly
// author-owned) but is carried in tokens so clients can derive permissions.
const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

// User represents a registered account in the Inkwell application.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	FirstName string         `json:"firstName"`
	LastName  string         `json:"lastName"`
	Avatar    string         `json:"avatar"`
	Bio       string         `json:"bio"`
	Role      string         `gorm:"not null;default:member" json:"role"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Posts     []Post         `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}
