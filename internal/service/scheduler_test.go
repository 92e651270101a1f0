package service

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestScheduleAtPastTimeFiresImmediately(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()
	defer s.Stop()

	fired := make(chan struct{})
	s.ScheduleAt("past", time.Now().Add(-time.Minute), func(context.Context) {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("one-shot trigger with past time never fired")
	}
}

func TestScheduleAtFiresAtFutureTime(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()
	defer s.Stop()

	fired := make(chan time.Time, 1)
	start := time.Now()
	s.ScheduleAt("future", start.Add(50*time.Millisecond), func(context.Context) {
		fired <- time.Now()
	})

	select {
	case at := <-fired:
		assert.GreaterOrEqual(t, at.Sub(start), 50*time.Millisecond)
	case <-time.After(time.Second):
		t.Fatal("one-shot trigger never fired")
	}
}

func TestCancelPreventsFire(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()
	defer s.Stop()

	var fired atomic.Int32
	s.ScheduleAt("doomed", time.Now().Add(30*time.Millisecond), func(context.Context) {
		fired.Add(1)
	})
	s.Cancel("doomed")

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// cancelling an unknown id is a no-op
	s.Cancel("never-registered")
}

func TestReregisterReplacesPrevious(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()
	defer s.Stop()

	var old atomic.Int32
	fired := make(chan struct{})

	s.ScheduleAt("job", time.Now().Add(30*time.Millisecond), func(context.Context) {
		old.Add(1)
	})
	s.ScheduleAt("job", time.Now().Add(50*time.Millisecond), func(context.Context) {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("replacement trigger never fired")
	}
	assert.Equal(t, int32(0), old.Load(), "replaced callback must not fire")
}

func TestScheduleCronRejectsBadSpec(t *testing.T) {
	s := NewScheduler(zap.NewNop())

	err := s.ScheduleCron("bad", "not a cron spec", func(context.Context) {})
	require.Error(t, err)

	err = s.ScheduleCron("good", "10 0 * * *", func(context.Context) {})
	assert.NoError(t, err)
}

func TestCallbackPanicIsRecovered(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()
	defer s.Stop()

	s.ScheduleAt("panics", time.Now(), func(context.Context) {
		panic("boom")
	})

	fired := make(chan struct{})
	s.ScheduleAt("survivor", time.Now().Add(30*time.Millisecond), func(context.Context) {
		close(fired)
	})

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduler did not survive a panicking callback")
	}
}

func TestStopSuppressesPendingDispatch(t *testing.T) {
	s := NewScheduler(zap.NewNop())
	s.Start()

	var fired atomic.Int32
	s.ScheduleAt("late", time.Now().Add(30*time.Millisecond), func(context.Context) {
		fired.Add(1)
	})
	s.Stop()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), fired.Load())

	// Stop twice is safe
	s.Stop()
}
