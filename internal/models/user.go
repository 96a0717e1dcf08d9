// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a registered account in the Inkwell application.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"unique;not null" json:"email"`
	DisplayName string         `gorm:"not null" json:"displayName"`
	Password    string         `gorm:"not null" json:"-"`
	Avatar      string         `json:"avatar,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
	Posts       []Post         `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// PublicUser is the user summary returned by the auth endpoints.
// It never carries credential material.
type PublicUser struct {
	UID         uint   `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Public returns the wire-safe summary of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		UID:         u.ID,
		Email:       u.Email,
		DisplayName: u.DisplayName,
	}
}
