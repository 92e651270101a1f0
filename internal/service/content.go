package service

import (
	"context"
	"errors"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

// ContentService owns content items. Posts only ever reference them by id;
// the lifecycle engine never mutates content.
type ContentService struct {
	logger   *zap.Logger
	contents store.ContentStore
}

func NewContentService(logger *zap.Logger, contents store.ContentStore) *ContentService {
	return &ContentService{logger: logger, contents: contents}
}

func (s *ContentService) Create(ctx context.Context, title, body string, mediaRefs, tags []string) (*models.ContentItem, error) {
	if body == "" {
		return nil, errors.New("content body must not be empty")
	}

	id, err := gonanoid.New()
	if err != nil {
		return nil, err
	}

	item := &models.ContentItem{
		ID:        id,
		Title:     title,
		Body:      body,
		MediaRefs: mediaRefs,
		Tags:      tags,
		Status:    models.ContentStatusActive,
	}
	if err := s.contents.Create(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("Content created", zap.String("content_id", id), zap.String("title", title))
	return item, nil
}

func (s *ContentService) Get(ctx context.Context, id string) (*models.ContentItem, error) {
	return s.contents.Get(ctx, id)
}

func (s *ContentService) List(ctx context.Context, status string, limit int) ([]models.ContentItem, error) {
	if status == "" {
		status = models.ContentStatusActive
	}
	if limit <= 0 {
		limit = 50
	}
	return s.contents.List(ctx, status, limit)
}

// Update edits an item in place. Not-yet-executed posts referencing it will
// publish the edited content, since posts store a reference, not a copy.
func (s *ContentService) Update(ctx context.Context, item *models.ContentItem) error {
	if err := s.contents.Update(ctx, item); err != nil {
		return err
	}
	s.logger.Info("Content updated", zap.String("content_id", item.ID))
	return nil
}

// Delete soft-deletes: the row is kept so already-published posts stay
// resolvable for reporting.
func (s *ContentService) Delete(ctx context.Context, id string) error {
	if err := s.contents.SoftDelete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Content deleted", zap.String("content_id", id))
	return nil
}
