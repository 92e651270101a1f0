package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
)

type GormContentStore struct {
	db *gorm.DB
}

func NewContentStore(db *gorm.DB) *GormContentStore {
	return &GormContentStore{db: db}
}

func (s *GormContentStore) Create(ctx context.Context, item *models.ContentItem) error {
	if err := s.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("failed to create content: %w", err)
	}
	return nil
}

func (s *GormContentStore) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	var item models.ContentItem
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get content: %w", err)
	}
	return &item, nil
}

func (s *GormContentStore) List(ctx context.Context, status string, limit int) ([]models.ContentItem, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var items []models.ContentItem
	if err := q.Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to list content: %w", err)
	}
	return items, nil
}

func (s *GormContentStore) Update(ctx context.Context, item *models.ContentItem) error {
	res := s.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ?", item.ID).
		Updates(map[string]interface{}{
			"title":      item.Title,
			"body":       item.Body,
			"media_refs": item.MediaRefs,
			"tags":       item.Tags,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to update content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormContentStore) SoftDelete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&models.ContentItem{}).
		Where("id = ? AND status = ?", id, models.ContentStatusActive).
		Update("status", models.ContentStatusDeleted)
	if res.Error != nil {
		return fmt.Errorf("failed to delete content: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
