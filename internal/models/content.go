package models

import (
	"time"
)

const (
	ContentStatusActive  = "active"
	ContentStatusDeleted = "deleted"
)

// ContentItem is a reusable piece of content independent of any schedule.
// Scheduled posts reference it by id; it is never copied into the post,
// so edits before execution flow through to not-yet-published posts.
type ContentItem struct {
	ID        string      `gorm:"primaryKey;size:64" json:"id"`
	Title     string      `gorm:"not null;size:500" json:"title"`
	Body      string      `gorm:"type:text;not null" json:"body"`
	MediaRefs StringArray `gorm:"type:text[]" json:"media_refs"`
	Tags      StringArray `gorm:"type:text[]" json:"tags"`
	Status    string      `gorm:"size:20;default:'active';index" json:"status"`
	CreatedAt time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}

func (c *ContentItem) Active() bool {
	return c.Status == ContentStatusActive
}
