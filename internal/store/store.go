// Package store persists content items, scheduled posts and interaction
// records. The engine and sweep services talk to the interfaces here; the
// gorm-backed implementations live alongside them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
)

// ErrNotFound is returned when a record id does not resolve.
var ErrNotFound = errors.New("record not found")

type ContentStore interface {
	Create(ctx context.Context, item *models.ContentItem) error
	Get(ctx context.Context, id string) (*models.ContentItem, error)
	List(ctx context.Context, status string, limit int) ([]models.ContentItem, error)
	Update(ctx context.Context, item *models.ContentItem) error
	SoftDelete(ctx context.Context, id string) error
}

// PostFilter narrows ScheduledPost listings. Zero values match everything.
type PostFilter struct {
	Platform string
	Status   string
	Limit    int
}

// PostTransition is the single-record update applied when a post leaves the
// scheduled state or re-enters it with a bumped scheduled_time.
type PostTransition struct {
	Status        string
	Attempts      int
	ScheduledTime *time.Time
	PublishedAt   *time.Time
	Result        models.JSONMap
	LastError     string
}

type PostStore interface {
	Create(ctx context.Context, post *models.ScheduledPost) error
	Get(ctx context.Context, id string) (*models.ScheduledPost, error)
	List(ctx context.Context, filter PostFilter) ([]models.ScheduledPost, error)

	// Due returns every post still scheduled whose time has elapsed,
	// ordered by scheduled_time ascending.
	Due(ctx context.Context, now time.Time) ([]models.ScheduledPost, error)

	// ApplyTransition updates the post only while it is still scheduled with
	// the expected attempt count. It reports false when another writer won
	// the transition, which keeps execution single-writer per post id.
	ApplyTransition(ctx context.Context, id string, prevAttempts int, t PostTransition) (bool, error)

	CountByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error)
}

type InteractionStore interface {
	CommentSeen(ctx context.Context, platformCommentID string) (bool, error)
	SaveComment(ctx context.Context, c *models.Comment) error
	SaveReply(ctx context.Context, r *models.Reply) error
	MessageSeen(ctx context.Context, platformMessageID string) (bool, error)
	SaveMessage(ctx context.Context, m *models.Message) error
	SaveSnapshot(ctx context.Context, s *models.AnalyticsSnapshot) error
	CountsSince(ctx context.Context, since time.Time) (comments, replies, messages int64, err error)
}

type StatsStore interface {
	Upsert(ctx context.Context, day *models.DailyStats) error
	Recent(ctx context.Context, limit int) ([]models.DailyStats, error)
}
