package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"taskapi/internal/config"
	"taskapi/internal/database"
	"taskapi/internal/handler"
	"taskapi/internal/logger"
	"taskapi/internal/middleware"
	"taskapi/internal/repository"
	"taskapi/internal/service"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	log    zerolog.Logger
}

// Init connects to the configured store and builds the server around it.
func Init(cfg *config.Config, log zerolog.Logger) (*Server, error) {
	db, err := database.Open(cfg.DB, logger.Gorm(log))
	if err != nil {
		return nil, err
	}
	log.Info().Str("driver", cfg.DB.Driver).Msg("connected to database")

	return New(cfg, db, log)
}

// New builds the server on an open store.
func New(cfg *config.Config, db *gorm.DB, log zerolog.Logger) (*Server, error) {
	engine, err := NewRouter(cfg, db, log)
	if err != nil {
		return nil, err
	}
	return &Server{Engine: engine, DB: db, Config: cfg, log: log}, nil
}

// NewRouter wires repositories, services and handlers onto a gin engine.
func NewRouter(cfg *config.Config, db *gorm.DB, log zerolog.Logger) (*gin.Engine, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}

	if cfg.Env == config.EnvProd {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Recovery(log))

	// Initialize repositories
	taskRepo := repository.NewTaskRepository(db)
	userRepo := repository.NewUserRepository(db)

	// Initialize services
	reconciler := service.NewReconciler(taskRepo, userRepo, log)
	taskService := service.NewTaskService(taskRepo, userRepo, reconciler, log)
	userService := service.NewUserService(taskRepo, userRepo, reconciler, log)

	// Initialize handlers
	taskHandler := handler.NewTaskHandler(taskService, cfg.QueryDefaultLimit, log)
	userHandler := handler.NewUserHandler(userService, cfg.QueryDefaultLimit, log)
	healthHandler := handler.NewHealthHandler(sqlDB, log)

	r.GET("/healthz", healthHandler.Check)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Task routes
	r.POST("/tasks", taskHandler.Create)
	r.GET("/tasks", taskHandler.GetAll)
	r.GET("/tasks/:id", taskHandler.GetByID)
	r.PUT("/tasks/:id", taskHandler.Replace)
	r.DELETE("/tasks/:id", taskHandler.Delete)

	// User routes
	r.POST("/users", userHandler.Create)
	r.GET("/users", userHandler.GetAll)
	r.GET("/users/:id", userHandler.GetByID)
	r.PUT("/users/:id", userHandler.Replace)
	r.DELETE("/users/:id", userHandler.Delete)

	return r, nil
}

// Run serves until SIGINT or SIGTERM, then drains in-flight requests for up
// to the configured shutdown timeout.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:    net.JoinHostPort(s.Config.ServerHost, s.Config.ServerPort),
		Handler: s.Engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", srv.Addr).Msg("server running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to listen: %w", err)
	case <-quit:
	}
	s.log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), s.Config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	if sqlDB, err := s.DB.DB(); err == nil {
		sqlDB.Close()
	}
	s.log.Info().Msg("server exited properly")
	return nil
}
