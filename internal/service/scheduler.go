package service

import (
	"context"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Scheduler is the trigger layer: it fires one-shot and recurring callbacks
// by logical identity. Callbacks run in their own goroutines, so a slow
// callback never blocks the dispatch of the next tick. Re-registering an
// identity replaces the previous registration.
type Scheduler struct {
	logger *zap.Logger
	cron   *cron.Cron

	mu      sync.Mutex
	entries map[string]cron.EntryID
	timers  map[string]*time.Timer
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
}

func NewScheduler(logger *zap.Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		logger:  logger,
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
		timers:  make(map[string]*time.Timer),
		ctx:     ctx,
		cancel:  cancel,
	}
}

func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return
	}
	s.cron.Start()
	s.running = true
	s.logger.Info("Trigger scheduler started")
}

func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	for id, t := range s.timers {
		t.Stop()
		delete(s.timers, id)
	}
	for id := range s.entries {
		delete(s.entries, id)
	}
	s.running = false
	s.mu.Unlock()

	// wait for running cron jobs to finish
	<-s.cron.Stop().Done()
	s.logger.Info("Trigger scheduler stopped")
}

// ScheduleAt fires fn once at or after t. A time already in the past fires
// on the next dispatch rather than erroring.
func (s *Scheduler) ScheduleAt(id string, t time.Time, fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)

	delay := time.Until(t)
	if delay < 0 {
		delay = 0
	}
	s.timers[id] = time.AfterFunc(delay, func() {
		s.mu.Lock()
		delete(s.timers, id)
		ctx := s.ctx
		s.mu.Unlock()
		s.dispatch(ctx, id, fn)
	})

	s.logger.Debug("One-shot trigger registered",
		zap.String("trigger_id", id), zap.Time("fire_at", t))
}

// ScheduleEvery fires fn repeatedly at a fixed interval.
func (s *Scheduler) ScheduleEvery(id string, every time.Duration, fn func(context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	s.entries[id] = s.cron.Schedule(cron.Every(every), s.job(id, fn))

	s.logger.Info("Recurring trigger registered",
		zap.String("trigger_id", id), zap.Duration("interval", every))
}

// ScheduleCron fires fn on a standard 5-field cron expression.
func (s *Scheduler) ScheduleCron(id, spec string, fn func(context.Context)) error {
	sched, err := cron.ParseStandard(spec)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.removeLocked(id)
	s.entries[id] = s.cron.Schedule(sched, s.job(id, fn))

	s.logger.Info("Cron trigger registered",
		zap.String("trigger_id", id), zap.String("spec", spec))
	return nil
}

// Cancel removes a pending registration; no-op if absent.
func (s *Scheduler) Cancel(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(id)
}

func (s *Scheduler) removeLocked(id string) {
	if t, ok := s.timers[id]; ok {
		t.Stop()
		delete(s.timers, id)
	}
	if e, ok := s.entries[id]; ok {
		s.cron.Remove(e)
		delete(s.entries, id)
	}
}

func (s *Scheduler) job(id string, fn func(context.Context)) cron.Job {
	return cron.FuncJob(func() {
		s.mu.Lock()
		ctx := s.ctx
		s.mu.Unlock()
		s.dispatch(ctx, id, fn)
	})
}

func (s *Scheduler) dispatch(ctx context.Context, id string, fn func(context.Context)) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("Trigger callback panic recovered",
					zap.String("trigger_id", id), zap.Any("panic", r))
			}
		}()

		if ctx.Err() != nil {
			return
		}

		start := time.Now()
		fn(ctx)
		s.logger.Debug("Trigger callback completed",
			zap.String("trigger_id", id),
			zap.Duration("duration", time.Since(start)))
	}()
}
