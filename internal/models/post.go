package models

import (
	"time"

	"gorm.io/gorm"
)

// Post represents a single published post. CreatedAt never changes after
// insert; the feed ranking relies on it as the score baseline.
type Post struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Text     string `gorm:"type:text;not null" json:"text"`
	MediaURL string `json:"media_url,omitempty"`
	AuthorID uint   `gorm:"not null;index" json:"author_id"`
	Author   User   `gorm:"foreignKey:AuthorID" json:"author"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// CreatedAtMillis returns the creation time as Unix milliseconds, the unit
// the score formula works in.
func (p *Post) CreatedAtMillis() int64 {
	return p.CreatedAt.UnixMilli()
}
