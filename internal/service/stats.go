package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

// StatsService rolls engine and sweep activity up into per-day counters
// for the reporting endpoint.
type StatsService struct {
	logger       *zap.Logger
	posts        store.PostStore
	interactions store.InteractionStore
	stats        store.StatsStore
	now          func() time.Time
}

func NewStatsService(logger *zap.Logger, posts store.PostStore,
	interactions store.InteractionStore, stats store.StatsStore) *StatsService {
	return &StatsService{
		logger:       logger,
		posts:        posts,
		interactions: interactions,
		stats:        stats,
		now:          time.Now,
	}
}

// UpdateDailyStats upserts today's rollup.
func (s *StatsService) UpdateDailyStats(ctx context.Context) error {
	day := s.now().Truncate(24 * time.Hour)

	counts, err := s.posts.CountByStatusSince(ctx, day)
	if err != nil {
		return err
	}
	comments, replies, messages, err := s.interactions.CountsSince(ctx, day)
	if err != nil {
		return err
	}

	stats := &models.DailyStats{
		Date:           day,
		ScheduledPosts: int(counts[models.PostStatusScheduled]),
		PublishedPosts: int(counts[models.PostStatusPublished]),
		FailedPosts:    int(counts[models.PostStatusFailed]),
		Comments:       int(comments),
		Replies:        int(replies),
		Messages:       int(messages),
	}
	if err := s.stats.Upsert(ctx, stats); err != nil {
		return err
	}

	s.logger.Info("Daily stats updated",
		zap.Time("date", day),
		zap.Int("published", stats.PublishedPosts),
		zap.Int("failed", stats.FailedPosts))
	return nil
}

func (s *StatsService) Recent(ctx context.Context, limit int) ([]models.DailyStats, error) {
	return s.stats.Recent(ctx, limit)
}
