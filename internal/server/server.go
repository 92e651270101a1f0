package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/config"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform/facebook"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform/instagram"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/platform/twitter"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/service"
	"github.com/albertomaydayjhondoe/fanpage-automation-suite/internal/store"
)

type Server struct {
	Config *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Logger *zap.Logger
	Server *http.Server

	// Services
	Registry  *platform.Registry
	Engine    *service.Engine
	Scheduler *service.Scheduler
	Content   *service.ContentService
	Sweep     *service.Sweep
	Stats     *service.StatsService

	Posts store.PostStore
}

func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	// Set gin mode
	gin.SetMode(cfg.Server.Mode)

	// Initialize database
	db, err := store.NewDatabase(&cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	contents := store.NewContentStore(db)
	posts := store.NewPostStore(db)
	interactions := store.NewInteractionStore(db)
	stats := store.NewStatsStore(db)

	srv, err := assemble(cfg, logger, contents, posts, interactions, stats)
	if err != nil {
		return nil, err
	}
	srv.DB = db
	return srv, nil
}

// assemble wires services onto the given stores, so tests can supply fakes.
func assemble(cfg *config.Config, logger *zap.Logger, contents store.ContentStore,
	posts store.PostStore, interactions store.InteractionStore, stats store.StatsStore) (*Server, error) {

	registry := buildRegistry(cfg, logger)

	engineCfg, err := service.EngineConfigFrom(&cfg.Scheduler)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduler config: %w", err)
	}
	media := platform.NewMediaValidator(cfg.Media.MaxFileSize)
	engine := service.NewEngine(engineCfg, logger, contents, posts, registry, media)

	sweep, err := service.NewSweep(&cfg.Automation, logger, registry, interactions)
	if err != nil {
		return nil, fmt.Errorf("invalid automation config: %w", err)
	}

	srv := &Server{
		Config:    cfg,
		Router:    gin.New(),
		Logger:    logger,
		Registry:  registry,
		Engine:    engine,
		Scheduler: service.NewScheduler(logger),
		Content:   service.NewContentService(logger, contents),
		Sweep:     sweep,
		Stats:     service.NewStatsService(logger, posts, interactions, stats),
		Posts:     posts,
	}

	srv.setupMiddleware()
	srv.setupRoutes()

	return srv, nil
}

func buildRegistry(cfg *config.Config, logger *zap.Logger) *platform.Registry {
	registry := platform.NewRegistry(logger)

	if cfg.Platforms.Facebook.Enabled {
		if err := registry.Register(facebook.New(&cfg.Platforms.Facebook, logger)); err != nil {
			logger.Error("Failed to register Facebook gateway", zap.Error(err))
		}
	}
	if cfg.Platforms.Instagram.Enabled {
		if err := registry.Register(instagram.New(&cfg.Platforms.Instagram, logger)); err != nil {
			logger.Error("Failed to register Instagram gateway", zap.Error(err))
		}
	}
	if cfg.Platforms.Twitter.Enabled {
		if err := registry.Register(twitter.New(&cfg.Platforms.Twitter, logger)); err != nil {
			logger.Error("Failed to register Twitter gateway", zap.Error(err))
		}
	}

	return registry
}

func (s *Server) setupMiddleware() {
	// Recovery middleware
	s.Router.Use(gin.Recovery())

	// Logger middleware
	s.Router.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("%s - [%s] \"%s %s %s %d %s \"%s\" %s\"\n",
				param.ClientIP,
				param.TimeStamp.Format(time.RFC3339),
				param.Method,
				param.Path,
				param.Request.Proto,
				param.StatusCode,
				param.Latency,
				param.Request.UserAgent(),
				param.ErrorMessage,
			)
		},
	}))

	// CORS middleware
	s.Router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})
}

func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
			"time":   time.Now().Unix(),
		})
	})

	// API routes
	api := s.Router.Group("/api/v1")
	{
		content := api.Group("/content")
		{
			content.POST("", s.handleCreateContent)
			content.GET("", s.handleListContent)
			content.GET("/:id", s.handleGetContent)
			content.PUT("/:id", s.handleUpdateContent)
			content.DELETE("/:id", s.handleDeleteContent)
		}

		posts := api.Group("/posts")
		{
			posts.POST("", s.handleSchedulePost)
			posts.POST("/series", s.handleScheduleSeries)
			posts.POST("/broadcast", s.handleScheduleBroadcast)
			posts.GET("", s.handleListPosts)
			posts.GET("/:id", s.handleGetPost)
			posts.POST("/:id/publish", s.handlePublishNow)
		}

		api.GET("/stats", s.handleGetStats)
		api.GET("/platforms", s.handleListPlatforms)
	}
}

func (s *Server) Start(ctx context.Context) error {
	s.Engine.Start()
	s.Scheduler.Start()

	if s.Config.Scheduler.Enabled {
		checkInterval, err := time.ParseDuration(s.Config.Scheduler.CheckInterval)
		if err != nil {
			return fmt.Errorf("invalid check_interval: %w", err)
		}
		s.Scheduler.ScheduleEvery("post-due-check", checkInterval, func(ctx context.Context) {
			s.Engine.RunDueCheck(ctx, time.Now())
		})
	}

	sweepInterval, err := time.ParseDuration(s.Config.Automation.SweepInterval)
	if err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	s.Scheduler.ScheduleEvery("interaction-sweep", sweepInterval, s.Sweep.Run)

	if err := s.Scheduler.ScheduleCron("daily-stats", s.Config.Automation.StatsCron, func(ctx context.Context) {
		if err := s.Stats.UpdateDailyStats(ctx); err != nil {
			s.Logger.Error("Daily stats update failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("invalid stats_cron: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.Config.Server.Host, s.Config.Server.Port)

	s.Server = &http.Server{
		Addr:    addr,
		Handler: s.Router,
	}

	s.Logger.Info("Starting HTTP server", zap.String("addr", addr))

	if s.Config.Server.CertFile != "" && s.Config.Server.KeyFile != "" {
		return s.Server.ListenAndServeTLS(s.Config.Server.CertFile, s.Config.Server.KeyFile)
	}

	return s.Server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop triggers first so no new executions are dispatched
	s.Scheduler.Stop()
	s.Engine.Stop()

	if s.Server == nil {
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	return s.Server.Shutdown(shutdownCtx)
}
