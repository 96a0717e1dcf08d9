package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Tags is a list of post tags stored as a JSON-encoded text column,
// which keeps the schema portable between Postgres and the sqlite test driver.
type Tags []string

// Value implements driver.Valuer.
func (t Tags) Value() (driver.Value, error) {
	if t == nil {
		t = Tags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (t *Tags) Scan(value interface{}) error {
	if value == nil {
		*t = Tags{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported tags column type %T", value)
	}
	if len(data) == 0 {
		*t = Tags{}
		return nil
	}
	return json.Unmarshal(data, t)
}

// Post represents a blog post in the Inkwell application.
type Post struct {
	ID         uint   `gorm:"primaryKey" json:"id"`
	Title      string `gorm:"not null" json:"title"`
	Content    string `gorm:"type:text;not null" json:"content"`
	AuthorID   uint   `gorm:"not null;index" json:"authorId"`
	AuthorName string `gorm:"not null" json:"authorName"`
	Tags       Tags   `gorm:"type:text" json:"tags"`
	// Likes is not persisted; computed from like records at query time
	Likes int `gorm:"->;-:migration" json:"likes"`
	// LikedBy is not persisted; derived from like records at query time
	LikedBy   []uint         `gorm:"-" json:"likedBy"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Normalize fills the collection fields the wire format always carries,
// so a post never serializes with null tags or likedBy.
func (p *Post) Normalize() {
	if p.Tags == nil {
		p.Tags = Tags{}
	}
	if p.LikedBy == nil {
		p.LikedBy = []uint{}
	}
	if p.Likes < 0 {
		p.Likes = 0
	}
}
