package models

import (
	"time"
)

// Comment is a platform comment the interaction sweep has processed.
// PlatformCommentID is unique so a comment is only handled once.
type Comment struct {
	ID                string    `gorm:"primaryKey;size:64" json:"id"`
	Platform          string    `gorm:"not null;size:50;index" json:"platform"`
	PlatformPostID    string    `gorm:"not null;size:255" json:"platform_post_id"`
	PlatformCommentID string    `gorm:"uniqueIndex;not null;size:255" json:"platform_comment_id"`
	Author            string    `gorm:"size:255" json:"author"`
	Body              string    `gorm:"type:text" json:"body"`
	Sentiment         string    `gorm:"size:20" json:"sentiment"`
	IsQuestion        bool      `gorm:"default:false" json:"is_question"`
	IsUrgent          bool      `gorm:"default:false" json:"is_urgent"`
	ProcessedAt       time.Time `gorm:"autoCreateTime" json:"processed_at"`
}

// Reply records an auto-reply sent for a comment.
type Reply struct {
	ID                string    `gorm:"primaryKey;size:64" json:"id"`
	Platform          string    `gorm:"not null;size:50;index" json:"platform"`
	PlatformCommentID string    `gorm:"not null;size:255" json:"platform_comment_id"`
	Text              string    `gorm:"type:text" json:"text"`
	PlatformReplyID   string    `gorm:"size:255" json:"platform_reply_id"`
	Success           bool      `gorm:"default:false" json:"success"`
	SentAt            time.Time `gorm:"autoCreateTime" json:"sent_at"`
}

// Message is a direct message seen by the interaction sweep.
type Message struct {
	ID                string    `gorm:"primaryKey;size:64" json:"id"`
	Platform          string    `gorm:"not null;size:50;index" json:"platform"`
	PlatformMessageID string    `gorm:"uniqueIndex;not null;size:255" json:"platform_message_id"`
	SenderID          string    `gorm:"size:255" json:"sender_id"`
	Body              string    `gorm:"type:text" json:"body"`
	ReceivedAt        time.Time `gorm:"autoCreateTime" json:"received_at"`
}

// AnalyticsSnapshot stores one metrics pull for a platform post.
type AnalyticsSnapshot struct {
	ID             string    `gorm:"primaryKey;size:64" json:"id"`
	Platform       string    `gorm:"not null;size:50;index" json:"platform"`
	PlatformPostID string    `gorm:"size:255;index" json:"platform_post_id"`
	Metrics        JSONMap   `gorm:"type:jsonb" json:"metrics"`
	RecordedAt     time.Time `gorm:"autoCreateTime" json:"recorded_at"`
}
