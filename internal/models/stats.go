package models

import (
	"time"
)

// DailyStats is a per-day rollup of engine and sweep activity,
// upserted by the stats service.
type DailyStats struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Date           time.Time `gorm:"uniqueIndex;not null" json:"date"`
	ScheduledPosts int       `gorm:"default:0" json:"scheduled_posts"`
	PublishedPosts int       `gorm:"default:0" json:"published_posts"`
	FailedPosts    int       `gorm:"default:0" json:"failed_posts"`
	Comments       int       `gorm:"default:0" json:"comments"`
	Replies        int       `gorm:"default:0" json:"replies"`
	Messages       int       `gorm:"default:0" json:"messages"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}
