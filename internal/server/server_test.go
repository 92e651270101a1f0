package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

type memContentStore struct {
	mu    sync.Mutex
	items map[string]models.ContentItem
}

func (m *memContentStore) Create(_ context.Context, item *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[item.ID] = *item
	return nil
}

func (m *memContentStore) Get(_ context.Context, id string) (*models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &item, nil
}

func (m *memContentStore) List(_ context.Context, status string, limit int) ([]models.ContentItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ContentItem
	for _, item := range m.items {
		if status == "" || item.Status == status {
			out = append(out, item)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memContentStore) Update(_ context.Context, item *models.ContentItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[item.ID]; !ok {
		return store.ErrNotFound
	}
	m.items[item.ID] = *item
	return nil
}

func (m *memContentStore) SoftDelete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.items[id]
	if !ok {
		return store.ErrNotFound
	}
	item.Status = models.ContentStatusDeleted
	m.items[id] = item
	return nil
}

type memPostStore struct {
	mu    sync.Mutex
	posts map[string]models.ScheduledPost
}

func (m *memPostStore) Create(_ context.Context, post *models.ScheduledPost) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[post.ID] = *post
	return nil
}

func (m *memPostStore) Get(_ context.Context, id string) (*models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &post, nil
}

func (m *memPostStore) List(_ context.Context, filter store.PostFilter) ([]models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduledPost
	for _, post := range m.posts {
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

func (m *memPostStore) Due(_ context.Context, now time.Time) ([]models.ScheduledPost, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ScheduledPost
	for _, post := range m.posts {
		if post.Status == models.PostStatusScheduled && !post.ScheduledTime.After(now) {
			out = append(out, post)
		}
	}
	return out, nil
}

func (m *memPostStore) ApplyTransition(_ context.Context, id string, prevAttempts int, t store.PostTransition) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	post, ok := m.posts[id]
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
	m.posts[id] = post
	return true, nil
}

func (m *memPostStore) CountByStatusSince(_ context.Context, since time.Time) (map[string]int64, error) {
	return map[string]int64{}, nil
}

type memInteractionStore struct{}

func (memInteractionStore) CommentSeen(context.Context, string) (bool, error)    { return false, nil }
func (memInteractionStore) SaveComment(context.Context, *models.Comment) error   { return nil }
func (memInteractionStore) SaveReply(context.Context, *models.Reply) error       { return nil }
func (memInteractionStore) MessageSeen(context.Context, string) (bool, error)    { return false, nil }
func (memInteractionStore) SaveMessage(context.Context, *models.Message) error   { return nil }
func (memInteractionStore) SaveSnapshot(context.Context, *models.AnalyticsSnapshot) error {
	return nil
}
func (memInteractionStore) CountsSince(context.Context, time.Time) (int64, int64, int64, error) {
	return 0, 0, 0, nil
}

type memStatsStore struct{}

func (memStatsStore) Upsert(context.Context, *models.DailyStats) error { return nil }
func (memStatsStore) Recent(context.Context, int) ([]models.DailyStats, error) {
	return []models.DailyStats{}, nil
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	cfg.Server.Mode = "test"

	srv, err := assemble(cfg, zap.NewNop(),
		&memContentStore{items: make(map[string]models.ContentItem)},
		&memPostStore{posts: make(map[string]models.ScheduledPost)},
		memInteractionStore{},
		memStatsStore{})
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestContentEndpoints(t *testing.T) {
	srv := newTestServer(t)

	// missing body rejected
	w := doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{"title": "no body"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{
		"title": "Launch", "body": "We are live!", "tags": []string{"launch"},
	})
	require.Equal(t, http.StatusCreated, w.Code)
	created := decode[models.ContentItem](t, w)
	require.NotEmpty(t, created.ID)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/content/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodPut, "/api/v1/content/"+created.ID, map[string]any{
		"body": "We are really live!",
	})
	require.Equal(t, http.StatusOK, w.Code)
	updated := decode[models.ContentItem](t, w)
	assert.Equal(t, "We are really live!", updated.Body)
	assert.Equal(t, "Launch", updated.Title, "unset fields keep their values")

	w = doJSON(t, srv, http.MethodDelete, "/api/v1/content/"+created.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/content/unknown", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchedulePostEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{
		"title": "Launch", "body": "We are live!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	content := decode[models.ContentItem](t, w)

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
		"content_id":     content.ID,
		"platform":       "facebook",
		"scheduled_time": future,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	res := decode[map[string]string](t, w)
	postID := res["post_id"]
	require.NotEmpty(t, postID)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/posts/"+postID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	post := decode[models.ScheduledPost](t, w)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, content.ID, post.ContentID)

	w = doJSON(t, srv, http.MethodGet, "/api/v1/posts?status=scheduled", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), postID)
}

func TestSchedulePostValidation(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{
		"title": "Launch", "body": "We are live!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	content := decode[models.ContentItem](t, w)

	past := time.Now().Add(-time.Hour).Format(time.RFC3339)
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
		"content_id":     content.ID,
		"platform":       "facebook",
		"scheduled_time": past,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
		"content_id":     "unknown",
		"platform":       "facebook",
		"scheduled_time": future,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestScheduleBroadcastEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{
		"title": "Launch", "body": "We are live!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	content := decode[models.ContentItem](t, w)

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts/broadcast", map[string]any{
		"content_id":     content.ID,
		"platforms":      []string{"facebook", "twitter"},
		"scheduled_time": future,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		PostIDs map[string]string `json:"post_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.PostIDs, 2)
}

func TestScheduleSeriesEndpoint(t *testing.T) {
	srv := newTestServer(t)

	var contentIDs []string
	for i := 0; i < 2; i++ {
		w := doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{
			"title": fmt.Sprintf("Part %d", i+1), "body": "episode",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		contentIDs = append(contentIDs, decode[models.ContentItem](t, w).ID)
	}

	w := doJSON(t, srv, http.MethodPost, "/api/v1/posts/series", map[string]any{
		"content_ids": contentIDs,
		"platform":    "facebook",
		"start":       time.Now().Add(time.Hour).Format(time.RFC3339),
		"interval":    "30m",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var res struct {
		PostIDs []string `json:"post_ids"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	assert.Len(t, res.PostIDs, 2)

	// bad interval rejected
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts/series", map[string]any{
		"content_ids": contentIDs,
		"platform":    "facebook",
		"start":       time.Now().Add(time.Hour).Format(time.RFC3339),
		"interval":    "-5m",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPublishNowEndpoint(t *testing.T) {
	srv := newTestServer(t)
	srv.Engine.Start()

	w := doJSON(t, srv, http.MethodPost, "/api/v1/posts/unknown/publish", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = doJSON(t, srv, http.MethodPost, "/api/v1/content", map[string]any{
		"title": "Launch", "body": "We are live!",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	content := decode[models.ContentItem](t, w)

	future := time.Now().Add(time.Hour).Format(time.RFC3339)
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts", map[string]any{
		"content_id":     content.ID,
		"platform":       "facebook",
		"scheduled_time": future,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	postID := decode[map[string]string](t, w)["post_id"]

	// no gateway registered in tests, so immediate publish consumes an
	// attempt and reschedules
	w = doJSON(t, srv, http.MethodPost, "/api/v1/posts/"+postID+"/publish", nil)
	require.Equal(t, http.StatusOK, w.Code)
	post := decode[models.ScheduledPost](t, w)
	assert.Equal(t, models.PostStatusScheduled, post.Status)
	assert.Equal(t, 1, post.Attempts)
	assert.Contains(t, post.LastError, "facebook")
}

func TestListPlatformsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/platforms", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"platforms"`)
}

func TestStatsEndpoint(t *testing.T) {
	srv := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/api/v1/stats", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"stats"`)
}
