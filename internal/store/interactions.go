package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
)

type GormInteractionStore struct {
	db *gorm.DB
}

func NewInteractionStore(db *gorm.DB) *GormInteractionStore {
	return &GormInteractionStore{db: db}
}

func (s *GormInteractionStore) CommentSeen(ctx context.Context, platformCommentID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("platform_comment_id = ?", platformCommentID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check comment: %w", err)
	}
	return n > 0, nil
}

func (s *GormInteractionStore) SaveComment(ctx context.Context, c *models.Comment) error {
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("failed to save comment: %w", err)
	}
	return nil
}

func (s *GormInteractionStore) SaveReply(ctx context.Context, r *models.Reply) error {
	if err := s.db.WithContext(ctx).Create(r).Error; err != nil {
		return fmt.Errorf("failed to save reply: %w", err)
	}
	return nil
}

func (s *GormInteractionStore) MessageSeen(ctx context.Context, platformMessageID string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("platform_message_id = ?", platformMessageID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("failed to check message: %w", err)
	}
	return n > 0, nil
}

func (s *GormInteractionStore) SaveMessage(ctx context.Context, m *models.Message) error {
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

func (s *GormInteractionStore) SaveSnapshot(ctx context.Context, snap *models.AnalyticsSnapshot) error {
	if err := s.db.WithContext(ctx).Create(snap).Error; err != nil {
		return fmt.Errorf("failed to save analytics snapshot: %w", err)
	}
	return nil
}

func (s *GormInteractionStore) CountsSince(ctx context.Context, since time.Time) (int64, int64, int64, error) {
	var comments, replies, messages int64
	if err := s.db.WithContext(ctx).Model(&models.Comment{}).
		Where("processed_at >= ?", since).Count(&comments).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count comments: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Reply{}).
		Where("sent_at >= ?", since).Count(&replies).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count replies: %w", err)
	}
	if err := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("received_at >= ?", since).Count(&messages).Error; err != nil {
		return 0, 0, 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return comments, replies, messages, nil
}
