package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/models"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/service"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

type createContentRequest struct {
	Title     string   `json:"title"`
	Body      string   `json:"body" binding:"required"`
	MediaRefs []string `json:"media_refs"`
	Tags      []string `json:"tags"`
}

func (s *Server) handleCreateContent(c *gin.Context) {
	var req createContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.Content.Create(c.Request.Context(), req.Title, req.Body, req.MediaRefs, req.Tags)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleListContent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	items, err := s.Content.List(c.Request.Context(), c.Query("status"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "count": len(items)})
}

func (s *Server) handleGetContent(c *gin.Context) {
	item, err := s.Content.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

type updateContentRequest struct {
	Title     *string  `json:"title"`
	Body      *string  `json:"body"`
	MediaRefs []string `json:"media_refs"`
	Tags      []string `json:"tags"`
}

func (s *Server) handleUpdateContent(c *gin.Context) {
	var req updateContentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	item, err := s.Content.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if req.Title != nil {
		item.Title = *req.Title
	}
	if req.Body != nil {
		item.Body = *req.Body
	}
	if req.MediaRefs != nil {
		item.MediaRefs = req.MediaRefs
	}
	if req.Tags != nil {
		item.Tags = req.Tags
	}

	if err := s.Content.Update(c.Request.Context(), item); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteContent(c *gin.Context) {
	err := s.Content.Delete(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "content not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

type schedulePostRequest struct {
	ContentID     string            `json:"content_id" binding:"required"`
	Platform      string            `json:"platform" binding:"required"`
	ScheduledTime time.Time         `json:"scheduled_time" binding:"required"`
	Config        map[string]string `json:"config"`
}

func (s *Server) handleSchedulePost(c *gin.Context) {
	var req schedulePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := s.Engine.Schedule(c.Request.Context(), req.ContentID, req.Platform,
		req.ScheduledTime, models.JSONMap(req.Config))
	if err != nil {
		c.JSON(scheduleStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post_id": id})
}

type scheduleSeriesRequest struct {
	ContentIDs []string  `json:"content_ids" binding:"required"`
	Platform   string    `json:"platform" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	Interval   string    `json:"interval" binding:"required"`
}

func (s *Server) handleScheduleSeries(c *gin.Context) {
	var req scheduleSeriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	interval, err := time.ParseDuration(req.Interval)
	if err != nil || interval <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "interval must be a positive duration"})
		return
	}

	ids, err := s.Engine.ScheduleSeries(c.Request.Context(), req.ContentIDs, req.Platform,
		req.Start, interval)
	if err != nil {
		// posts scheduled before the failure stay scheduled
		c.JSON(scheduleStatus(err), gin.H{"error": err.Error(), "post_ids": ids})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post_ids": ids})
}

type scheduleBroadcastRequest struct {
	ContentID     string                       `json:"content_id" binding:"required"`
	Platforms     []string                     `json:"platforms" binding:"required"`
	ScheduledTime time.Time                    `json:"scheduled_time" binding:"required"`
	Config        map[string]map[string]string `json:"config"`
}

func (s *Server) handleScheduleBroadcast(c *gin.Context) {
	var req scheduleBroadcastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	perPlatform := make(map[string]models.JSONMap, len(req.Config))
	for tag, cfg := range req.Config {
		perPlatform[tag] = models.JSONMap(cfg)
	}

	res, err := s.Engine.ScheduleBroadcast(c.Request.Context(), req.ContentID, req.Platforms,
		req.ScheduledTime, perPlatform)
	if err != nil {
		c.JSON(scheduleStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, res)
}

func (s *Server) handleListPosts(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	posts, err := s.Posts.List(c.Request.Context(), store.PostFilter{
		Platform: c.Query("platform"),
		Status:   c.Query("status"),
		Limit:    limit,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"posts": posts, "count": len(posts)})
}

func (s *Server) handleGetPost(c *gin.Context) {
	post, err := s.Posts.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, post)
}

// handlePublishNow runs the post through the lifecycle engine immediately
// instead of waiting for its scheduled time.
func (s *Server) handlePublishNow(c *gin.Context) {
	post, err := s.Posts.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if post.Terminal() {
		c.JSON(http.StatusConflict, gin.H{"error": "post already " + post.Status})
		return
	}

	s.Engine.Execute(c.Request.Context(), post)

	updated, err := s.Posts.Get(c.Request.Context(), post.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (s *Server) handleGetStats(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	stats, err := s.Stats.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"stats": stats, "count": len(stats)})
}

func (s *Server) handleListPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": s.Registry.Names()})
}

func scheduleStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidSchedule):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrContentNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
