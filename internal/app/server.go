package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"smartkheti_backend/internal/analytics"
	"smartkheti_backend/internal/auth"
	"smartkheti_backend/internal/category"
	"smartkheti_backend/internal/config"
	"smartkheti_backend/internal/detection"
	"smartkheti_backend/internal/jobs"
	"smartkheti_backend/internal/marketplace"
	"smartkheti_backend/internal/middleware"
	"smartkheti_backend/internal/news"
	platformes "smartkheti_backend/internal/platform/elasticsearch"
	"smartkheti_backend/internal/reports"
	"smartkheti_backend/internal/shared"
	"smartkheti_backend/internal/user"
	"smartkheti_backend/internal/weather"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups the HTTP handlers mounted under /api.
type Handlers struct {
	User        *user.Handler
	Auth        *auth.Handler
	Category    *category.Handler
	Marketplace *marketplace.Handler
	Detection   *detection.Handler
	Analytics   *analytics.Handler
	Weather     *weather.Handler
	Reports     *reports.Handler
	News        *news.Handler
}

// Server holds the dependencies for the HTTP server.
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	cfg        *config.Config
	db         *gorm.DB
	scheduler  *jobs.Scheduler

	ESClient  *platformes.ESClientWrapper
	AppLogger *zap.Logger
}

// NewServer creates the gin engine and registers every route.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	tokenService shared.TokenService,
	handlers Handlers,
	scheduler *jobs.Scheduler,
	esClient *platformes.ESClientWrapper,
) (*Server, error) {
	gin.SetMode(cfg.GinMode)
	router := gin.New()

	router.Use(middleware.ZapLogger(logger))
	router.Use(middleware.ErrorHandler(logger))
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.RequestIDHeader}
	corsConfig.ExposeHeaders = []string{"Content-Length", middleware.RequestIDHeader}
	router.Use(cors.New(corsConfig))

	authMW := middleware.AuthMiddleware(tokenService, logger.Named("AuthMiddleware"))
	staffMW := middleware.StaffOnly()

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "SmartKheti API is healthy!"})
	})
	if cfg.MediaStoragePath != "" {
		router.Static("/media", cfg.MediaStoragePath)
	}

	api := router.Group("/api")

	users := api.Group("/users")
	handlers.User.RegisterRoutes(users, authMW)
	handlers.Auth.RegisterRoutes(users)

	market := api.Group("/marketplace")
	handlers.Category.RegisterRoutes(market, authMW, staffMW)
	handlers.Marketplace.RegisterRoutes(market, authMW)

	handlers.Detection.RegisterRoutes(api.Group("/disease_detection"), authMW, staffMW)
	handlers.Analytics.RegisterRoutes(api.Group("/analytics"), authMW)
	handlers.Weather.RegisterRoutes(api.Group("/weather"), authMW)
	handlers.Reports.RegisterRoutes(api.Group("/reports"))
	handlers.News.RegisterRoutes(api.Group("/news"))

	addr := fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	return &Server{
		httpServer: httpServer,
		router:     router,
		cfg:        cfg,
		db:         db,
		scheduler:  scheduler,
		ESClient:   esClient,
		AppLogger:  logger,
	}, nil
}

// Router exposes the engine for in-process requests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Migrate brings the schema up to date and seeds the disease catalog.
func (s *Server) Migrate(ctx context.Context) error {
	return Migrate(ctx, s.db, s.cfg, s.AppLogger)
}

func (s *Server) Start() error {
	if s.scheduler != nil {
		if err := s.scheduler.SetupAndStart(); err != nil {
			s.AppLogger.Error("Failed to setup and start job scheduler", zap.Error(err))
		}
	}

	s.AppLogger.Info("HTTP Server starting",
		zap.String("address", s.httpServer.Addr),
		zap.String("gin_mode", s.cfg.GinMode),
	)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.AppLogger.Error("Failed to start HTTP server", zap.Error(err))
		return err
	}
	s.AppLogger.Info("HTTP Server stopped")
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.AppLogger.Info("Attempting graceful server shutdown...")
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
	return s.httpServer.Shutdown(ctx)
}
