package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

var (
	// ErrContentNotFound means the referenced content id does not resolve
	// to an active item.
	ErrContentNotFound = errors.New("content not found")

	// ErrInvalidSchedule means the caller supplied a non-future timestamp.
	// Nothing is persisted.
	ErrInvalidSchedule = errors.New("scheduled time must be in the future")
)

// EngineConfig holds the engine's tunables, read once at startup.
type EngineConfig struct {
	MaxAttempts    int
	RetryDelayBase time.Duration
	PublishTimeout time.Duration
	PublishPause   time.Duration
}

func EngineConfigFrom(cfg *config.SchedulerConfig) (EngineConfig, error) {
	base, err := time.ParseDuration(cfg.RetryDelayBase)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("invalid retry_delay_base: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.PublishTimeout)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("invalid publish_timeout: %w", err)
	}
	pause, err := time.ParseDuration(cfg.PublishPause)
	if err != nil {
		return EngineConfig{}, fmt.Errorf("invalid publish_pause: %w", err)
	}
	return EngineConfig{
		MaxAttempts:    cfg.MaxAttempts,
		RetryDelayBase: base,
		PublishTimeout: timeout,
		PublishPause:   pause,
	}, nil
}

// Engine is the single authority over the scheduled-post lifecycle: it
// decides due-ness, drives execution through the platform gateways and
// persists every outcome. One engine instance owns all pending work.
type Engine struct {
	cfg      EngineConfig
	logger   *zap.Logger
	contents store.ContentStore
	posts    store.PostStore
	registry *platform.Registry
	media    platform.MediaValidator

	running atomic.Bool
	now     func() time.Time

	// inflight serializes execution per post id; the store's conditional
	// transition is the backstop.
	mu       sync.Mutex
	inflight map[string]struct{}
}

func NewEngine(cfg EngineConfig, logger *zap.Logger, contents store.ContentStore,
	posts store.PostStore, registry *platform.Registry, media platform.MediaValidator) *Engine {
	return &Engine{
		cfg:      cfg,
		logger:   logger,
		contents: contents,
		posts:    posts,
		registry: registry,
		media:    media,
		now:      time.Now,
		inflight: make(map[string]struct{}),
	}
}

func (e *Engine) Start() {
	if e.running.CompareAndSwap(false, true) {
		e.logger.Info("Post lifecycle engine started")
	}
}

func (e *Engine) Stop() {
	if e.running.CompareAndSwap(true, false) {
		e.logger.Info("Post lifecycle engine stopped")
	}
}

// Schedule validates and persists a new scheduled post. The scheduled time
// must be strictly in the future and the content must resolve to an active
// item at call time.
func (e *Engine) Schedule(ctx context.Context, contentID, platformTag string,
	at time.Time, cfg models.JSONMap) (string, error) {

	if !at.After(e.now()) {
		return "", ErrInvalidSchedule
	}

	item, err := e.contents.Get(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) {
		return "", fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve content: %w", err)
	}
	if !item.Active() {
		return "", fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}

	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("failed to generate post id: %w", err)
	}
	if cfg == nil {
		cfg = models.JSONMap{}
	}

	post := &models.ScheduledPost{
		ID:            id,
		ContentID:     contentID,
		Platform:      platformTag,
		ScheduledTime: at,
		Status:        models.PostStatusScheduled,
		Config:        cfg,
		Attempts:      0,
		MaxAttempts:   e.cfg.MaxAttempts,
	}
	if err := e.posts.Create(ctx, post); err != nil {
		return "", err
	}

	e.logger.Info("Post scheduled",
		zap.String("post_id", id),
		zap.String("content_id", contentID),
		zap.String("platform", platformTag),
		zap.Time("scheduled_time", at))
	return id, nil
}

// ScheduleSeries fans one content item out across evenly spaced future
// timestamps on a single platform.
func (e *Engine) ScheduleSeries(ctx context.Context, contentIDs []string, platformTag string,
	start time.Time, interval time.Duration) ([]string, error) {

	ids := make([]string, 0, len(contentIDs))
	at := start
	for _, contentID := range contentIDs {
		id, err := e.Schedule(ctx, contentID, platformTag, at, nil)
		if err != nil {
			return ids, fmt.Errorf("series stopped at content %s: %w", contentID, err)
		}
		ids = append(ids, id)
		at = at.Add(interval)
	}

	e.logger.Info("Post series scheduled",
		zap.Int("count", len(ids)),
		zap.String("platform", platformTag))
	return ids, nil
}

// BroadcastResult reports per-platform outcomes of a multi-platform schedule.
type BroadcastResult struct {
	PostIDs map[string]string `json:"post_ids"`
	Errors  map[string]string `json:"errors,omitempty"`
}

// ScheduleBroadcast schedules one content item across several platforms at
// the same timestamp. A failure for one platform does not abort the others.
func (e *Engine) ScheduleBroadcast(ctx context.Context, contentID string, platforms []string,
	at time.Time, perPlatform map[string]models.JSONMap) (*BroadcastResult, error) {

	item, err := e.contents.Get(ctx, contentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve content: %w", err)
	}
	if !item.Active() {
		return nil, fmt.Errorf("%w: %s", ErrContentNotFound, contentID)
	}

	res := &BroadcastResult{
		PostIDs: make(map[string]string),
		Errors:  make(map[string]string),
	}
	for _, tag := range platforms {
		id, err := e.Schedule(ctx, contentID, tag, at, perPlatform[tag])
		if err != nil {
			e.logger.Error("Broadcast schedule failed for platform",
				zap.String("platform", tag), zap.Error(err))
			res.Errors[tag] = err.Error()
			continue
		}
		res.PostIDs[tag] = id
	}
	return res, nil
}

// DuePosts returns every post still scheduled whose time has elapsed,
// ordered by scheduled_time ascending.
func (e *Engine) DuePosts(ctx context.Context, now time.Time) ([]models.ScheduledPost, error) {
	return e.posts.Due(ctx, now)
}

// RunDueCheck is the trigger-layer entry point. It collects the due set and
// dispatches execution asynchronously so the next tick is never stalled
// behind a slow publish; posts are walked sequentially with a deliberate
// pause between them to respect platform rate limits.
func (e *Engine) RunDueCheck(ctx context.Context, now time.Time) {
	if !e.running.Load() {
		return
	}

	due, err := e.posts.Due(ctx, now)
	if err != nil {
		e.logger.Error("Due check failed", zap.Error(err))
		return
	}
	if len(due) == 0 {
		e.logger.Debug("No due posts")
		return
	}

	e.logger.Info("Processing due posts", zap.Int("count", len(due)))

	go func() {
		for i := range due {
			if i > 0 && e.cfg.PublishPause > 0 {
				select {
				case <-ctx.Done():
					return
				case <-time.After(e.cfg.PublishPause):
				}
			}
			post := due[i]
			e.Execute(ctx, &post)
		}
	}()
}

// Execute publishes one due post and persists the outcome. Every failure
// path is classified here and converted into a status update; no gateway
// error escapes. Concurrent calls for the same post id collapse to one.
func (e *Engine) Execute(ctx context.Context, post *models.ScheduledPost) {
	if !e.claim(post.ID) {
		e.logger.Debug("Execution already in flight", zap.String("post_id", post.ID))
		return
	}
	defer e.release(post.ID)

	// Re-read under the claim: the caller's snapshot may predate a
	// transition applied by another execution path.
	post, err := e.posts.Get(ctx, post.ID)
	if err != nil {
		e.logger.Error("Post lookup failed", zap.Error(err))
		return
	}
	if post.Status != models.PostStatusScheduled {
		return
	}

	item, err := e.contents.Get(ctx, post.ContentID)
	switch {
	case errors.Is(err, store.ErrNotFound):
		e.failTerminal(ctx, post, fmt.Sprintf("content %s no longer exists", post.ContentID))
		return
	case err != nil:
		// store trouble is transient, let the retry policy handle it
		e.MarkFailed(ctx, post.ID, fmt.Sprintf("content lookup failed: %v", err))
		return
	case !item.Active():
		e.failTerminal(ctx, post, fmt.Sprintf("content %s was deleted after scheduling", post.ContentID))
		return
	}

	gw, err := e.registry.Get(post.Platform)
	if err != nil {
		// the platform may come back after reconfiguration, so this stays
		// retryable under the standard policy
		e.MarkFailed(ctx, post.ID, err.Error())
		return
	}

	mediaRefs := e.validMediaRefs(post, item.MediaRefs)

	pubCtx, cancel := context.WithTimeout(ctx, e.cfg.PublishTimeout)
	defer cancel()

	result, err := gw.Publish(pubCtx, platform.PublishRequest{
		Body:      item.Body,
		MediaRefs: mediaRefs,
		Config:    post.Config,
	})
	if err != nil {
		e.logger.Error("Publish failed",
			zap.String("post_id", post.ID),
			zap.String("platform", post.Platform),
			zap.Error(err))
		e.MarkFailed(ctx, post.ID, err.Error())
		return
	}

	e.MarkPublished(ctx, post.ID, models.JSONMap{
		"platform_post_id": result.PlatformPostID,
		"url":              result.URL,
	})
}

// MarkPublished finalizes a post as published. It is also the entry point
// for interactive publish paths that execute outside RunDueCheck, so the
// record bookkeeping is identical regardless of trigger source.
func (e *Engine) MarkPublished(ctx context.Context, id string, result models.JSONMap) error {
	post, err := e.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.Terminal() {
		return nil
	}

	now := e.now()
	applied, err := e.posts.ApplyTransition(ctx, id, post.Attempts, store.PostTransition{
		Status:      models.PostStatusPublished,
		Attempts:    post.Attempts,
		PublishedAt: &now,
		Result:      result,
	})
	if err != nil {
		return err
	}
	if !applied {
		e.logger.Debug("Publish transition lost race", zap.String("post_id", id))
		return nil
	}

	e.logger.Info("Post published",
		zap.String("post_id", id),
		zap.String("platform", post.Platform),
		zap.String("platform_post_id", result["platform_post_id"]))
	return nil
}

// MarkFailed applies the retry policy to a failed publish attempt:
// attempts+1, then either terminal failure or a linear-backoff reschedule
// (base delay scaled by the attempt count).
func (e *Engine) MarkFailed(ctx context.Context, id, message string) error {
	post, err := e.posts.Get(ctx, id)
	if err != nil {
		return err
	}
	if post.Terminal() {
		return nil
	}

	attempts := post.Attempts + 1
	if attempts > post.MaxAttempts {
		attempts = post.MaxAttempts
	}

	t := store.PostTransition{
		Attempts:  attempts,
		LastError: message,
	}
	if attempts >= post.MaxAttempts {
		t.Status = models.PostStatusFailed
	} else {
		t.Status = models.PostStatusScheduled
		next := e.now().Add(e.cfg.RetryDelayBase * time.Duration(attempts))
		t.ScheduledTime = &next
	}

	applied, err := e.posts.ApplyTransition(ctx, id, post.Attempts, t)
	if err != nil {
		return err
	}
	if !applied {
		e.logger.Debug("Failure transition lost race", zap.String("post_id", id))
		return nil
	}

	if t.Status == models.PostStatusFailed {
		e.logger.Error("Post failed permanently",
			zap.String("post_id", id),
			zap.Int("attempts", attempts),
			zap.String("last_error", message))
	} else {
		e.logger.Warn("Post rescheduled for retry",
			zap.String("post_id", id),
			zap.Int("attempts", attempts),
			zap.Timep("next_attempt", t.ScheduledTime),
			zap.String("last_error", message))
	}
	return nil
}

// failTerminal marks a post failed without further retries. Content that no
// longer resolves cannot recover on its own, so the remaining attempts are
// burned to keep failed posts uniform (failed implies attempts == max).
func (e *Engine) failTerminal(ctx context.Context, post *models.ScheduledPost, message string) {
	applied, err := e.posts.ApplyTransition(ctx, post.ID, post.Attempts, store.PostTransition{
		Status:    models.PostStatusFailed,
		Attempts:  post.MaxAttempts,
		LastError: message,
	})
	if err != nil {
		e.logger.Error("Terminal failure transition failed",
			zap.String("post_id", post.ID), zap.Error(err))
		return
	}
	if applied {
		e.logger.Error("Post failed permanently",
			zap.String("post_id", post.ID),
			zap.String("last_error", message))
	}
}

func (e *Engine) validMediaRefs(post *models.ScheduledPost, refs []string) []string {
	valid := refs[:0:0]
	for _, ref := range refs {
		if err := e.media.Validate(ref); err != nil {
			e.logger.Warn("Skipping invalid media reference",
				zap.String("post_id", post.ID),
				zap.String("media_ref", ref),
				zap.Error(err))
			continue
		}
		valid = append(valid, ref)
	}
	return valid
}

func (e *Engine) claim(id string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, busy := e.inflight[id]; busy {
		return false
	}
	e.inflight[id] = struct{}{}
	return true
}

func (e *Engine) release(id string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, id)
}
