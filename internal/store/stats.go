package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
)

type GormStatsStore struct {
	db *gorm.DB
}

func NewStatsStore(db *gorm.DB) *GormStatsStore {
	return &GormStatsStore{db: db}
}

func (s *GormStatsStore) Upsert(ctx context.Context, day *models.DailyStats) error {
	var existing models.DailyStats
	err := s.db.WithContext(ctx).Where("date = ?", day.Date).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if err := s.db.WithContext(ctx).Create(day).Error; err != nil {
			return fmt.Errorf("failed to create daily stats: %w", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to load daily stats: %w", err)
	}

	err = s.db.WithContext(ctx).Model(&existing).Updates(map[string]interface{}{
		"scheduled_posts": day.ScheduledPosts,
		"published_posts": day.PublishedPosts,
		"failed_posts":    day.FailedPosts,
		"comments":        day.Comments,
		"replies":         day.Replies,
		"messages":        day.Messages,
	}).Error
	if err != nil {
		return fmt.Errorf("failed to update daily stats: %w", err)
	}
	return nil
}

func (s *GormStatsStore) Recent(ctx context.Context, limit int) ([]models.DailyStats, error) {
	if limit <= 0 {
		limit = 7
	}
	var days []models.DailyStats
	err := s.db.WithContext(ctx).Order("date DESC").Limit(limit).Find(&days).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list daily stats: %w", err)
	}
	return days, nil
}
