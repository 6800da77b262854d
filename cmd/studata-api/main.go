package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/studata-api/internal/handler"
	"github.com/noah-isme/studata-api/internal/middleware"
	"github.com/noah-isme/studata-api/internal/repository"
	"github.com/noah-isme/studata-api/internal/service"
	"github.com/noah-isme/studata-api/pkg/cache"
	"github.com/noah-isme/studata-api/pkg/config"
	"github.com/noah-isme/studata-api/pkg/database"
	"github.com/noah-isme/studata-api/pkg/jobs"
	"github.com/noah-isme/studata-api/pkg/kvstore"
	"github.com/noah-isme/studata-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/studata-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/studata-api/pkg/middleware/requestid"
	"github.com/noah-isme/studata-api/pkg/storage"
)

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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logr.Sugar().Fatalw("failed to open storage backend", "backend", cfg.Storage.Backend, "error", err)
	}
	defer store.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()

	var cacheSvc *service.CacheService
	if cfg.Storage.Backend == config.BackendRedis || cfg.Dashboard.Enabled {
		if client, cerr := cache.NewRedis(cfg.Redis); cerr != nil {
			logr.Warn("redis unavailable, dashboard caching disabled", zap.Error(cerr))
		} else {
			cacheRepo := repository.NewCacheRepository(client, logr)
			cacheSvc = service.NewCacheService(cacheRepo, metricsSvc, cfg.Dashboard.CacheTTL, logr, true)
		}
	}

	identityRepo := repository.NewIdentityRepository(store, logr)
	studentRepo := repository.NewStudentRepository(store, logr)

	authSvc := service.NewAuthService(identityRepo, validate, logr, service.AuthConfig{
		AccessTokenSecret: cfg.JWT.Secret,
		AccessTokenExpiry: cfg.JWT.Expiration,
		Issuer:            "studata-api",
		AdminName:         cfg.Admin.Name,
		AdminEmail:        cfg.Admin.Email,
		AdminPassword:     cfg.Admin.Password,
	})
	if err := authSvc.Seed(ctx); err != nil {
		logr.Sugar().Fatalw("failed to seed admin account", "error", err)
	}

	studentSvc := service.NewStudentService(studentRepo, validate, cacheSvc, logr)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	metricsHandler := handler.NewMetricsHandler(metricsSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Health)
	r.GET("/metrics", metricsHandler.Prometheus)

	api := r.Group(cfg.APIPrefix)
	authRequired := middleware.JWT(authSvc)

	authHandler := handler.NewAuthHandler(authSvc)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/logout", authRequired, authHandler.Logout)
	auth.GET("/me", authRequired, authHandler.Me)

	studentHandler := handler.NewStudentHandler(studentSvc)
	students := api.Group("/students", authRequired)
	students.GET("", studentHandler.List)
	students.POST("", studentHandler.Create)
	students.DELETE("", studentHandler.Clear)
	students.POST("/import", studentHandler.Import)
	students.GET("/:id", studentHandler.Get)
	students.PUT("/:id", studentHandler.Update)
	students.DELETE("/:id", studentHandler.Delete)

	if cfg.Dashboard.Enabled {
		dashboardSvc := service.NewDashboardService(studentSvc, cacheSvc, logr, cfg.Dashboard.CacheTTL)
		dashboardHandler := handler.NewDashboardHandler(dashboardSvc)
		api.GET("/dashboard", authRequired, dashboardHandler.Summary)
		api.GET("/dashboard/analytics", authRequired, dashboardHandler.Analytics)
	}

	if cfg.Exports.Enabled {
		exportStorage, serr := storage.NewLocalStorage(cfg.Exports.StorageDir)
		if serr != nil {
			logr.Sugar().Fatalw("failed to init export storage", "error", serr)
		}
		signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
		exportRepo := repository.NewExportJobRepository(store)
		exportSvc := service.NewExportService(exportRepo, studentSvc, exportStorage, signer, logr)

		queue := jobs.NewQueue("exports", exportSvc.Process, jobs.QueueConfig{
			Workers:    cfg.Exports.WorkerConcurrency,
			MaxRetries: cfg.Exports.WorkerRetries,
			Logger:     logr,
		})
		queue.Start(ctx)
		defer queue.Stop()
		exportSvc.SetDispatcher(queue)

		go runExportCleanup(ctx, exportStorage, cfg.Exports, logr)

		exportHandler := handler.NewExportHandler(exportSvc)
		exports := api.Group("/exports")
		exports.POST("", authRequired, exportHandler.Create)
		exports.GET("/download", exportHandler.Download)
		exports.GET("/:id", authRequired, exportHandler.Status)
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env, "backend", cfg.Storage.Backend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Errorw("server shutdown failed", "error", err)
	}
	logr.Info("server stopped")
}

func openStore(ctx context.Context, cfg *config.Config) (kvstore.Store, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return kvstore.NewMemoryStore(), nil
	case config.BackendFile:
		return kvstore.OpenFileStore(cfg.Storage.FilePath)
	case config.BackendRedis:
		client, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			return nil, err
		}
		return kvstore.NewRedisStore(client), nil
	case config.BackendPostgres:
		db, err := database.NewPostgres(cfg.Database)
		if err != nil {
			return nil, err
		}
		store := kvstore.NewPostgresStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func runExportCleanup(ctx context.Context, store *storage.LocalStorage, cfg config.ExportsConfig, logr *zap.Logger) {
	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := store.CleanupOlderThan(cfg.SignedURLTTL)
			if err != nil {
				logr.Warn("export cleanup failed", zap.Error(err))
				continue
			}
			if len(deleted) > 0 {
				logr.Sugar().Infow("export files cleaned up", "count", len(deleted))
			}
		}
	}
}
