package service

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

type replyPattern struct {
	re       *regexp.Regexp
	response string
}

var defaultReplyPatterns = []struct {
	pattern  string
	response string
}{
	{`(?i)\b(thanks|thank you)\b`, "You're welcome! Thanks for following our page!"},
	{`(?i)\b(hello|hi|hey)\b`, "Hi there! Welcome to our page!"},
	{`(?i)\b(price|pricing|cost)\b`, "We'll send you pricing details by direct message."},
	{`(?i)\b(hours|open|opening)\b`, "We're open Monday to Friday, 9am to 6pm."},
	{`(?i)\b(location|address|directions)\b`, "We'll share our location with you by direct message."},
	{`(?i)\b(contact|phone|email)\b`, "We'll send you our contact details by direct message."},
}

var (
	positiveKeywords = []string{"great", "excellent", "amazing", "love", "awesome", "good"}
	negativeKeywords = []string{"spam", "fake", "scam", "bad", "terrible", "awful"}
	questionKeywords = []string{"?", "how", "when", "where", "why", "what", "who"}
	urgentKeywords   = []string{"urgent", "emergency", "asap", "help"}
)

// Sweep periodically pulls new comments and messages from every registered
// gateway, applies the auto-reply rules and records engagement snapshots.
// It is best-effort: per-platform failures are logged, never escalated.
type Sweep struct {
	logger       *zap.Logger
	registry     *platform.Registry
	interactions store.InteractionStore

	autoReply   bool
	recentLimit int
	patterns    []replyPattern
}

func NewSweep(cfg *config.AutomationConfig, logger *zap.Logger,
	registry *platform.Registry, interactions store.InteractionStore) (*Sweep, error) {

	patterns := make([]replyPattern, 0, len(defaultReplyPatterns)+len(cfg.ReplyPatterns))
	for expr, response := range cfg.ReplyPatterns {
		re, err := regexp.Compile(expr)
		if err != nil {
			return nil, err
		}
		patterns = append(patterns, replyPattern{re: re, response: response})
	}
	for _, p := range defaultReplyPatterns {
		patterns = append(patterns, replyPattern{re: regexp.MustCompile(p.pattern), response: p.response})
	}

	return &Sweep{
		logger:       logger,
		registry:     registry,
		interactions: interactions,
		autoReply:    cfg.AutoReply,
		recentLimit:  cfg.RecentPostLimit,
		patterns:     patterns,
	}, nil
}

// Run is the recurring trigger callback.
func (s *Sweep) Run(ctx context.Context) {
	for _, tag := range s.registry.Names() {
		gw, err := s.registry.Get(tag)
		if err != nil {
			continue
		}

		s.logger.Debug("Sweeping platform interactions", zap.String("platform", tag))

		posts, err := gw.ListRecentPosts(ctx, s.recentLimit)
		if err != nil {
			s.logger.Error("Failed to list recent posts",
				zap.String("platform", tag), zap.Error(err))
			posts = nil
		}

		for _, post := range posts {
			s.processComments(ctx, gw, post.ID)
			s.captureAnalytics(ctx, gw, post.ID)
		}

		s.processMessages(ctx, gw)
	}
}

func (s *Sweep) processComments(ctx context.Context, gw platform.Gateway, postID string) {
	comments, err := gw.ListComments(ctx, postID)
	if err != nil {
		s.logger.Error("Failed to list comments",
			zap.String("platform", gw.Name()),
			zap.String("platform_post_id", postID),
			zap.Error(err))
		return
	}

	for _, c := range comments {
		seen, err := s.interactions.CommentSeen(ctx, c.ID)
		if err != nil || seen {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			continue
		}
		record := &models.Comment{
			ID:                id,
			Platform:          gw.Name(),
			PlatformPostID:    postID,
			PlatformCommentID: c.ID,
			Author:            c.Author,
			Body:              c.Body,
			Sentiment:         classifySentiment(c.Body),
			IsQuestion:        containsAny(c.Body, questionKeywords),
			IsUrgent:          containsAny(c.Body, urgentKeywords),
		}
		if err := s.interactions.SaveComment(ctx, record); err != nil {
			s.logger.Error("Failed to record comment", zap.Error(err))
			continue
		}

		if !s.autoReply {
			continue
		}
		response, ok := s.matchReply(c.Body)
		if !ok {
			continue
		}

		replyID, replyErr := gw.ReplyToComment(ctx, c.ID, response)
		if replyErr != nil {
			s.logger.Error("Auto-reply failed",
				zap.String("platform", gw.Name()),
				zap.String("platform_comment_id", c.ID),
				zap.Error(replyErr))
		}

		rid, err := gonanoid.New()
		if err != nil {
			continue
		}
		reply := &models.Reply{
			ID:                rid,
			Platform:          gw.Name(),
			PlatformCommentID: c.ID,
			Text:              response,
			PlatformReplyID:   replyID,
			Success:           replyErr == nil,
		}
		if err := s.interactions.SaveReply(ctx, reply); err != nil {
			s.logger.Error("Failed to record reply", zap.Error(err))
		}
	}
}

func (s *Sweep) processMessages(ctx context.Context, gw platform.Gateway) {
	messages, err := gw.ListMessages(ctx)
	if err != nil {
		s.logger.Debug("Message listing unavailable",
			zap.String("platform", gw.Name()), zap.Error(err))
		return
	}

	for _, m := range messages {
		seen, err := s.interactions.MessageSeen(ctx, m.ID)
		if err != nil || seen {
			continue
		}

		id, err := gonanoid.New()
		if err != nil {
			continue
		}
		record := &models.Message{
			ID:                id,
			Platform:          gw.Name(),
			PlatformMessageID: m.ID,
			SenderID:          m.SenderID,
			Body:              m.Body,
		}
		if err := s.interactions.SaveMessage(ctx, record); err != nil {
			s.logger.Error("Failed to record message", zap.Error(err))
			continue
		}

		if !s.autoReply {
			continue
		}
		if response, ok := s.matchReply(m.Body); ok {
			if _, err := gw.SendMessage(ctx, m.SenderID, response); err != nil {
				s.logger.Error("Auto-reply message failed",
					zap.String("platform", gw.Name()), zap.Error(err))
			}
		}
	}
}

func (s *Sweep) captureAnalytics(ctx context.Context, gw platform.Gateway, postID string) {
	metrics, err := gw.Analytics(ctx, postID)
	if err != nil {
		s.logger.Debug("Analytics unavailable",
			zap.String("platform", gw.Name()),
			zap.String("platform_post_id", postID),
			zap.Error(err))
		return
	}
	if len(metrics) == 0 {
		return
	}

	id, err := gonanoid.New()
	if err != nil {
		return
	}
	snap := &models.AnalyticsSnapshot{
		ID:             id,
		Platform:       gw.Name(),
		PlatformPostID: postID,
		Metrics:        make(models.JSONMap, len(metrics)),
		RecordedAt:     time.Now(),
	}
	for k, v := range metrics {
		snap.Metrics[k] = strconv.Itoa(v)
	}
	if err := s.interactions.SaveSnapshot(ctx, snap); err != nil {
		s.logger.Error("Failed to record analytics snapshot", zap.Error(err))
	}
}

func (s *Sweep) matchReply(body string) (string, bool) {
	for _, p := range s.patterns {
		if p.re.MatchString(body) {
			return p.response, true
		}
	}
	return "", false
}

func classifySentiment(body string) string {
	switch {
	case containsAny(body, negativeKeywords):
		return "negative"
	case containsAny(body, positiveKeywords):
		return "positive"
	default:
		return "neutral"
	}
}

func containsAny(body string, keywords []string) bool {
	lower := strings.ToLower(body)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
