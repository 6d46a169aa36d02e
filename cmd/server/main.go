package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/mdblog/config"
	"github.com/d60-Lab/mdblog/internal/api/handler"
	"github.com/d60-Lab/mdblog/internal/api/router"
	"github.com/d60-Lab/mdblog/internal/bootstrap"
	"github.com/d60-Lab/mdblog/internal/render"
	"github.com/d60-Lab/mdblog/internal/service"
	"github.com/d60-Lab/mdblog/internal/util"
	"github.com/d60-Lab/mdblog/internal/web"
	"github.com/d60-Lab/mdblog/pkg/logger"
	"github.com/d60-Lab/mdblog/pkg/monitor"
	"github.com/d60-Lab/mdblog/pkg/tracing"
)

var version = "dev"

// @title Markdown Blog API
// @version 1.0
// @description Markdown 博客文章发布与查询接口
// @BasePath /
func main() {
	cfg, err := config.LoadFrom(os.Getenv(config.PathEnv))
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}); err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	if enabled, err := monitor.InitSentry(cfg.Sentry, version); err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
		cfg.Sentry.DSN = ""
	} else if enabled {
		defer monitor.Flush(2 * time.Second)
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
		cfg.Tracing.Enabled = false
		shutdownTracing = func(context.Context) error { return nil }
	}

	repo, closeStore, err := bootstrap.OpenPostRepository(ctx, cfg)
	if err != nil {
		logger.Error("open post store", zap.Error(err))
		os.Exit(1)
	}

	postService := service.NewPostService(repo, util.NewRealClock())
	h := handler.New(postService, repo)
	pages := web.NewPages(postService, render.NewRenderer())
	r, err := router.Setup(cfg, h, pages)
	if err != nil {
		logger.Error("setup router", zap.Error(err))
		_ = closeStore(ctx)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
		ErrorLog:     zap.NewStdLog(logger.L()),
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Warn("tracer shutdown", zap.Error(err))
	}
	if err := closeStore(shutdownCtx); err != nil {
		logger.Warn("close post store", zap.Error(err))
	}
}
