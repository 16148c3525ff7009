package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/dms-admin-api/api/swagger"
	"github.com/noah-isme/dms-admin-api/internal/app"
	"github.com/noah-isme/dms-admin-api/internal/handler"
	"github.com/noah-isme/dms-admin-api/internal/middleware"
	"github.com/noah-isme/dms-admin-api/pkg/config"
	"github.com/noah-isme/dms-admin-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/dms-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/dms-admin-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title DMS Admin API
// @version 1.0.0
// @description Teacher, student and lesson package administration mirrored to the school spreadsheet.
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

	container, err := app.New(cfg, logr, nil)
	if err != nil {
		logr.Fatal("failed to initialise dependencies", zap.Error(err))
	}
	defer container.Close()

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(container.Metrics))

	ops := handler.NewMetricsHandler(container.Metrics, container.DB)
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	container.Handlers().Register(r.Group(cfg.APIPrefix))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sync.PullInterval > 0 && container.Sync.Configured() {
		pull := app.NewPeriodicPull(container.Sync, cfg.Sync.PullInterval, logr)
		pull.Start(ctx)
		defer pull.Stop()
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "sheet_sync", container.Sync.Configured())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
