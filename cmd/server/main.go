package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/devpulse/tracker-api/api/swagger"
	"github.com/devpulse/tracker-api/internal/handler"
	"github.com/devpulse/tracker-api/internal/middleware"
	"github.com/devpulse/tracker-api/internal/repository"
	"github.com/devpulse/tracker-api/internal/service"
	"github.com/devpulse/tracker-api/pkg/cache"
	"github.com/devpulse/tracker-api/pkg/config"
	"github.com/devpulse/tracker-api/pkg/database"
	"github.com/devpulse/tracker-api/pkg/logger"
	corsmiddleware "github.com/devpulse/tracker-api/pkg/middleware/cors"
	reqidmiddleware "github.com/devpulse/tracker-api/pkg/middleware/requestid"
	"github.com/devpulse/tracker-api/pkg/password"
	"github.com/devpulse/tracker-api/pkg/token"
)

// @title Tracker API
// @version 1.0.0
// @description Issue tracker backend with token-based authentication
// @BasePath /api/v1
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close() //nolint:errcheck

	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Cache.Enabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Sugar().Warnw("redis unavailable, caching disabled", "error", err)
		} else {
			defer redisClient.Close() //nolint:errcheck
			cacheRepo := repository.NewCacheRepository(redisClient, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Cache.TTL, logr, true)
		}
	}
	if cacheSvc == nil {
		cacheSvc = service.NewCacheService(nil, metricsSvc, cfg.Cache.TTL, logr, false)
	}

	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewRefreshTokenRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	issueRepo := repository.NewIssueRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	validate := validator.New()
	hasher := password.NewHasher(password.Params{
		MemoryKiB:   cfg.Argon2.MemoryKiB,
		Iterations:  cfg.Argon2.Iterations,
		Parallelism: cfg.Argon2.Parallelism,
		SaltLength:  cfg.Argon2.SaltLength,
		KeyLength:   cfg.Argon2.KeyLength,
	})
	codec := token.NewCodec(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessExpiration)

	authSvc := service.NewAuthService(userRepo, tokenRepo, hasher, codec, validate, logr, service.AuthConfig{
		RefreshTokenExpiry: cfg.JWT.RefreshExpiration,
	})
	guard := service.NewAuthzService(projectRepo, issueRepo, commentRepo)
	userSvc := service.NewUserService(userRepo, logr)
	projectSvc := service.NewProjectService(projectRepo, cacheSvc, validate, logr)
	issueSvc := service.NewIssueService(issueRepo, guard, validate, logr)
	commentSvc := service.NewCommentService(commentRepo, guard, validate, logr)

	cleanupSvc := service.NewCleanupService(tokenRepo, metricsSvc, logr, cfg.Cleanup.Interval)

	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(userSvc)
	projectHandler := handler.NewProjectHandler(projectSvc)
	issueHandler := handler.NewIssueHandler(issueSvc)
	commentHandler := handler.NewCommentHandler(commentSvc)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.PingContext(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(metricsSvc.Handler()))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)

	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.POST("/logout", authHandler.Logout)

	protected := api.Group("")
	protected.Use(middleware.JWT(authSvc))

	protected.GET("/auth/me", userHandler.Me)
	protected.DELETE("/auth/account", userHandler.DeleteAccount)

	protected.GET("/projects", projectHandler.List)
	protected.POST("/projects", projectHandler.Create)
	protected.GET("/projects/:id", projectHandler.Get)
	protected.PATCH("/projects/:id", projectHandler.Update)
	protected.DELETE("/projects/:id", projectHandler.Delete)
	protected.GET("/projects/:id/issues", issueHandler.ListByProject)

	protected.POST("/issues", issueHandler.Create)
	protected.GET("/issues/:id", issueHandler.Get)
	protected.PATCH("/issues/:id", issueHandler.Update)
	protected.DELETE("/issues/:id", issueHandler.Delete)
	protected.GET("/issues/:id/comments", commentHandler.ListByIssue)
	protected.POST("/issues/:id/comments", commentHandler.Create)

	protected.DELETE("/comments/:id", commentHandler.Delete)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cleanupSvc.Start(ctx)
	defer cleanupSvc.Stop()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: r,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Sugar().Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
}
