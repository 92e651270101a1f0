package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
)

type GormPostStore struct {
	db *gorm.DB
}

func NewPostStore(db *gorm.DB) *GormPostStore {
	return &GormPostStore{db: db}
}

func (s *GormPostStore) Create(ctx context.Context, post *models.ScheduledPost) error {
	if err := s.db.WithContext(ctx).Create(post).Error; err != nil {
		return fmt.Errorf("failed to create scheduled post: %w", err)
	}
	return nil
}

func (s *GormPostStore) Get(ctx context.Context, id string) (*models.ScheduledPost, error) {
	var post models.ScheduledPost
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scheduled post: %w", err)
	}
	return &post, nil
}

func (s *GormPostStore) List(ctx context.Context, filter PostFilter) ([]models.ScheduledPost, error) {
	q := s.db.WithContext(ctx).Order("scheduled_time ASC")
	if filter.Platform != "" {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var posts []models.ScheduledPost
	if err := q.Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list scheduled posts: %w", err)
	}
	return posts, nil
}

func (s *GormPostStore) Due(ctx context.Context, now time.Time) ([]models.ScheduledPost, error) {
	var posts []models.ScheduledPost
	err := s.db.WithContext(ctx).
		Where("status = ? AND scheduled_time <= ?", models.PostStatusScheduled, now).
		Order("scheduled_time ASC").
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query due posts: %w", err)
	}
	return posts, nil
}

func (s *GormPostStore) ApplyTransition(ctx context.Context, id string, prevAttempts int, t PostTransition) (bool, error) {
	updates := map[string]interface{}{
		"status":     t.Status,
		"attempts":   t.Attempts,
		"last_error": t.LastError,
	}
	if t.ScheduledTime != nil {
		updates["scheduled_time"] = *t.ScheduledTime
	}
	if t.PublishedAt != nil {
		updates["published_at"] = *t.PublishedAt
	}
	if t.Result != nil {
		updates["result"] = t.Result
	}

	// Conditional update keeps the transition single-writer: a concurrent
	// execution of the same post id sees zero rows affected and backs off.
	res := s.db.WithContext(ctx).Model(&models.ScheduledPost{}).
		Where("id = ? AND status = ? AND attempts = ?", id, models.PostStatusScheduled, prevAttempts).
		Updates(updates)
	if res.Error != nil {
		return false, fmt.Errorf("failed to transition post %s: %w", id, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormPostStore) CountByStatusSince(ctx context.Context, since time.Time) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, status := range []string{models.PostStatusScheduled, models.PostStatusPublished, models.PostStatusFailed} {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.ScheduledPost{}).
			Where("status = ? AND updated_at >= ?", status, since).
			Count(&n).Error
		if err != nil {
			return nil, fmt.Errorf("failed to count posts: %w", err)
		}
		counts[status] = n
	}
	return counts, nil
}
