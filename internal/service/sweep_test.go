package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
)

func newSweepFixture(t *testing.T, autoReply bool) (*Sweep, *fakeGateway, *fakeInteractionStore) {
	t.Helper()

	logger := zap.NewNop()
	registry := platform.NewRegistry(logger)
	gateway := newFakeGateway("facebook")
	require.NoError(t, registry.Register(gateway))

	interactions := newFakeInteractionStore()
	sweep, err := NewSweep(&config.AutomationConfig{
		AutoReply:       autoReply,
		RecentPostLimit: 5,
	}, logger, registry, interactions)
	require.NoError(t, err)

	return sweep, gateway, interactions
}

func TestSweepRecordsAndClassifiesComments(t *testing.T) {
	sweep, gateway, interactions := newSweepFixture(t, false)

	gateway.recentPosts = []platform.Post{{ID: "p1"}}
	gateway.comments["p1"] = []platform.Comment{
		{ID: "c1", Author: "alice", Body: "This is amazing, love it!"},
		{ID: "c2", Author: "bob", Body: "Total scam, terrible page"},
		{ID: "c3", Author: "carol", Body: "When do you open tomorrow?"},
		{ID: "c4", Author: "dan", Body: "URGENT: my order never arrived, help"},
	}

	sweep.Run(context.Background())

	require.Len(t, interactions.comments, 4)
	byID := make(map[string]string)
	for _, c := range interactions.comments {
		byID[c.PlatformCommentID] = c.Sentiment
	}
	assert.Equal(t, "positive", byID["c1"])
	assert.Equal(t, "negative", byID["c2"])
	assert.Equal(t, "neutral", byID["c3"])

	for _, c := range interactions.comments {
		switch c.PlatformCommentID {
		case "c3":
			assert.True(t, c.IsQuestion)
		case "c4":
			assert.True(t, c.IsUrgent)
		}
	}

	assert.Empty(t, gateway.repliesSent, "auto-reply disabled")
}

func TestSweepSkipsSeenComments(t *testing.T) {
	sweep, gateway, interactions := newSweepFixture(t, false)

	gateway.recentPosts = []platform.Post{{ID: "p1"}}
	gateway.comments["p1"] = []platform.Comment{{ID: "c1", Body: "hello"}}

	sweep.Run(context.Background())
	sweep.Run(context.Background())

	assert.Len(t, interactions.comments, 1, "a comment is processed exactly once")
}

func TestSweepAutoRepliesOnPatternMatch(t *testing.T) {
	sweep, gateway, interactions := newSweepFixture(t, true)

	gateway.recentPosts = []platform.Post{{ID: "p1"}}
	gateway.comments["p1"] = []platform.Comment{
		{ID: "c1", Body: "Thanks so much!"},
		{ID: "c2", Body: "zzz nothing matches here"},
	}

	sweep.Run(context.Background())

	require.Len(t, gateway.repliesSent, 1)
	assert.Contains(t, gateway.repliesSent[0], "c1")

	require.Len(t, interactions.replies, 1)
	assert.Equal(t, "c1", interactions.replies[0].PlatformCommentID)
	assert.True(t, interactions.replies[0].Success)
	assert.Equal(t, "reply-c1", interactions.replies[0].PlatformReplyID)
}

func TestSweepCustomPatternPrecedesDefaults(t *testing.T) {
	logger := zap.NewNop()
	registry := platform.NewRegistry(logger)
	gateway := newFakeGateway("facebook")
	require.NoError(t, registry.Register(gateway))

	interactions := newFakeInteractionStore()
	sweep, err := NewSweep(&config.AutomationConfig{
		AutoReply:       true,
		RecentPostLimit: 5,
		ReplyPatterns:   map[string]string{`(?i)\bthanks\b`: "Custom thanks response"},
	}, logger, registry, interactions)
	require.NoError(t, err)

	gateway.recentPosts = []platform.Post{{ID: "p1"}}
	gateway.comments["p1"] = []platform.Comment{{ID: "c1", Body: "thanks a lot"}}

	sweep.Run(context.Background())

	require.Len(t, interactions.replies, 1)
	assert.Equal(t, "Custom thanks response", interactions.replies[0].Text)
}

func TestNewSweepRejectsInvalidPattern(t *testing.T) {
	logger := zap.NewNop()
	_, err := NewSweep(&config.AutomationConfig{
		ReplyPatterns: map[string]string{`(unclosed`: "nope"},
	}, logger, platform.NewRegistry(logger), newFakeInteractionStore())
	assert.Error(t, err)
}

func TestSweepRecordsMessagesAndReplies(t *testing.T) {
	sweep, gateway, interactions := newSweepFixture(t, true)

	gateway.messages = []platform.Message{
		{ID: "m1", SenderID: "u1", Body: "What are your hours?"},
		{ID: "m2", SenderID: "u2", Body: "zzz"},
	}

	sweep.Run(context.Background())

	assert.Len(t, interactions.messages, 2)
	require.Len(t, gateway.messagesSent, 1)
	assert.Contains(t, gateway.messagesSent[0], "u1")

	// second sweep sees nothing new
	sweep.Run(context.Background())
	assert.Len(t, interactions.messages, 2)
	assert.Len(t, gateway.messagesSent, 1)
}

func TestSweepCapturesAnalyticsSnapshot(t *testing.T) {
	sweep, gateway, interactions := newSweepFixture(t, false)

	gateway.recentPosts = []platform.Post{{ID: "p1"}}
	gateway.metrics = platform.Metrics{"likes": 12, "shares": 3}

	sweep.Run(context.Background())

	require.Len(t, interactions.snapshots, 1)
	snap := interactions.snapshots[0]
	assert.Equal(t, "p1", snap.PlatformPostID)
	assert.Equal(t, "12", snap.Metrics["likes"])
	assert.Equal(t, "3", snap.Metrics["shares"])
	assert.WithinDuration(t, time.Now(), snap.RecordedAt, time.Minute)
}
