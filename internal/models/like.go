package models

import "time"

// Like represents a user's like on a post.
// The combination of UserID and PostID must be unique; the existence of a
// row is the single source of truth for "liked", and rows are hard-deleted
// on un-like so the count is always derivable from the table.
type Like struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"userId"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_user_post" json:"postId"`
	CreatedAt time.Time `json:"createdAt"`
}
