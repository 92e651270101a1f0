package models

import (
	"time"
)

const (
	PostStatusScheduled = "scheduled"
	PostStatusPublished = "published"
	PostStatusFailed    = "failed"
)

// ScheduledPost tracks one pending publication of a content item to one
// platform. Status moves monotonically: scheduled -> published or
// scheduled -> failed. A retry bumps scheduled_time and attempts but keeps
// the same id.
type ScheduledPost struct {
	ID            string     `gorm:"primaryKey;size:64" json:"id"`
	ContentID     string     `gorm:"not null;index;size:64" json:"content_id"`
	Platform      string     `gorm:"not null;size:50;index" json:"platform"`
	ScheduledTime time.Time  `gorm:"not null;index" json:"scheduled_time"`
	Status        string     `gorm:"size:20;default:'scheduled';index" json:"status"`
	Config        JSONMap    `gorm:"type:jsonb" json:"config"`
	Attempts      int        `gorm:"default:0" json:"attempts"`
	MaxAttempts   int        `gorm:"default:3" json:"max_attempts"`
	PublishedAt   *time.Time `json:"published_at"`
	Result        JSONMap    `gorm:"type:jsonb" json:"result"`
	LastError     string     `gorm:"type:text" json:"last_error"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// Terminal reports whether the post left the scheduled state for good.
func (p *ScheduledPost) Terminal() bool {
	return p.Status == PostStatusPublished || p.Status == PostStatusFailed
}
