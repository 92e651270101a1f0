package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

type fakeContentStore struct {
	mu    sync.Mutex
	items map[string]models.ContentItem
	err   error
}

func newFakeContentStore() *fakeContentStore {
	return &fakeContentStore{items: make(map[string]models.ContentItem)}
}

func (f *fakeContentStore) Create(_ context.Context, item *models.ContentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeContentStore) Get(_ context.Context, id string) (*models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	item, ok := f.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (f *fakeContentStore) List(_ context.Context, status string, limit int) ([]models.ContentItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ContentItem
	for _, item := range f.items {
		if status != "" && item.Status != status {
			continue
		}
		out = append(out, item)
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeContentStore) Update(_ context.Context, item *models.ContentItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	f.items[item.ID] = *item
	return nil
}

func (f *fakeContentStore) SoftDelete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.Status = models.ContentStatusDeleted
	f.items[id] = item
	return nil
}

type fakePostStore struct {
	mu    sync.Mutex
	posts map[string]models.ScheduledPost
	err   error
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: make(map[string]models.ScheduledPost)}
}

func (f *fakePostStore) Create(_ context.Context, post *models.ScheduledPost) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.posts[post.ID] = *post
	return nil
}

func (f *fakePostStore) Get(_ context.Context, id string) (*models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	post, ok := f.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &post, nil
}

func (f *fakePostStore) List(_ context.Context, filter store.PostFilter) ([]models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.ScheduledPost
	for _, post := range f.posts {
		if filter.Platform != "" && post.Platform != filter.Platform {
			continue
		}
		if filter.Status != "" && post.Status != filter.Status {
			continue
		}
		out = append(out, post)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (f *fakePostStore) Due(_ context.Context, now time.Time) ([]models.ScheduledPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	var out []models.ScheduledPost
	for _, post := range f.posts {
		if post.Status == models.PostStatusScheduled && !post.ScheduledTime.After(now) {
			out = append(out, post)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledTime.Before(out[j].ScheduledTime) })
	return out, nil
}

func (f *fakePostStore) ApplyTransition(_ context.Context, id string, prevAttempts int, t store.PostTransition) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	post, ok := f.posts[id]
	if !ok || post.Status != models.PostStatusScheduled || post.Attempts != prevAttempts {
		return false, nil
	}
	post.Status = t.Status
	post.Attempts = t.Attempts
	post.LastError = t.LastError
	if t.ScheduledTime != nil {
		post.ScheduledTime = *t.ScheduledTime
	}
	if t.PublishedAt != nil {
		post.PublishedAt = t.PublishedAt
	}
	if t.Result != nil {
		post.Result = t.Result
	}
	post.UpdatedAt = time.Now()
	f.posts[id] = post
	return true, nil
}

func (f *fakePostStore) CountByStatusSince(_ context.Context, since time.Time) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[string]int64)
	for _, post := range f.posts {
		if post.UpdatedAt.Before(since) {
			continue
		}
		counts[post.Status]++
	}
	return counts, nil
}

type fakeInteractionStore struct {
	mu        sync.Mutex
	comments  []models.Comment
	replies   []models.Reply
	messages  []models.Message
	snapshots []models.AnalyticsSnapshot
}

func newFakeInteractionStore() *fakeInteractionStore {
	return &fakeInteractionStore{}
}

func (f *fakeInteractionStore) CommentSeen(_ context.Context, platformCommentID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.comments {
		if c.PlatformCommentID == platformCommentID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInteractionStore) SaveComment(_ context.Context, c *models.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.comments = append(f.comments, *c)
	return nil
}

func (f *fakeInteractionStore) SaveReply(_ context.Context, r *models.Reply) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.replies = append(f.replies, *r)
	return nil
}

func (f *fakeInteractionStore) MessageSeen(_ context.Context, platformMessageID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.messages {
		if m.PlatformMessageID == platformMessageID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeInteractionStore) SaveMessage(_ context.Context, m *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, *m)
	return nil
}

func (f *fakeInteractionStore) SaveSnapshot(_ context.Context, s *models.AnalyticsSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.snapshots = append(f.snapshots, *s)
	return nil
}

func (f *fakeInteractionStore) CountsSince(_ context.Context, since time.Time) (int64, int64, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.comments)), int64(len(f.replies)), int64(len(f.messages)), nil
}

type fakeStatsStore struct {
	mu   sync.Mutex
	days map[string]models.DailyStats
}

func newFakeStatsStore() *fakeStatsStore {
	return &fakeStatsStore{days: make(map[string]models.DailyStats)}
}

func (f *fakeStatsStore) Upsert(_ context.Context, day *models.DailyStats) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days[day.Date.Format("2006-01-02")] = *day
	return nil
}

func (f *fakeStatsStore) Recent(_ context.Context, limit int) ([]models.DailyStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.DailyStats
	for _, d := range f.days {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// fakeGateway is a scriptable platform backend.
type fakeGateway struct {
	name string

	mu           sync.Mutex
	publishCalls int
	publishErr   error
	result       platform.PublishResult

	recentPosts []platform.Post
	comments    map[string][]platform.Comment
	messages    []platform.Message
	metrics     platform.Metrics

	repliesSent  []string
	messagesSent []string
}

func newFakeGateway(name string) *fakeGateway {
	return &fakeGateway{
		name:     name,
		result:   platform.PublishResult{PlatformPostID: "remote-1", URL: "https://example.com/remote-1"},
		comments: make(map[string][]platform.Comment),
	}
}

func (g *fakeGateway) Name() string { return g.name }

func (g *fakeGateway) Publish(_ context.Context, _ platform.PublishRequest) (*platform.PublishResult, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.publishCalls++
	if g.publishErr != nil {
		return nil, g.publishErr
	}
	res := g.result
	return &res, nil
}

func (g *fakeGateway) ListRecentPosts(_ context.Context, limit int) ([]platform.Post, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if limit > 0 && len(g.recentPosts) > limit {
		return g.recentPosts[:limit], nil
	}
	return g.recentPosts, nil
}

func (g *fakeGateway) ListComments(_ context.Context, postID string) ([]platform.Comment, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.comments[postID], nil
}

func (g *fakeGateway) ReplyToComment(_ context.Context, commentID, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.repliesSent = append(g.repliesSent, commentID+": "+text)
	return "reply-" + commentID, nil
}

func (g *fakeGateway) ListMessages(_ context.Context) ([]platform.Message, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.messages, nil
}

func (g *fakeGateway) SendMessage(_ context.Context, recipientID, text string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.messagesSent = append(g.messagesSent, recipientID+": "+text)
	return "msg-" + recipientID, nil
}

func (g *fakeGateway) Analytics(_ context.Context, _ string) (platform.Metrics, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.metrics == nil {
		return nil, errors.New("analytics unavailable")
	}
	return g.metrics, nil
}

func (g *fakeGateway) publishCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.publishCalls
}
