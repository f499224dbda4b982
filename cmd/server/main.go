package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/valmer/pricetracker/internal/api"
	"github.com/valmer/pricetracker/internal/config"
	"github.com/valmer/pricetracker/internal/logger"
	"github.com/valmer/pricetracker/internal/notify"
	"github.com/valmer/pricetracker/internal/orchestrator"
	"github.com/valmer/pricetracker/internal/scheduler"
	"github.com/valmer/pricetracker/internal/storage"
)

func main() {
	_ = godotenv.Load() // load .env if present; not fatal if missing

	cfg, source, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := storage.NewPool(ctx, cfg.Database.DSN())
	if err != nil {
		log.Fatal("database connect failed", zap.Error(err))
	}
	defer pool.Close()
	store := storage.NewPostgres(pool)

	var notifier notify.Notifier
	if cfg.Notify.WebhookURL != "" {
		notifier = notify.NewWebhookNotifier(cfg.Notify.WebhookURL, cfg.Notify.Timeout)
	} else {
		notifier = notify.NewLogNotifier(log)
	}

	orch := orchestrator.New(store, source, notifier,
		orchestrator.NewFetcherFactory(30*time.Second, log), log)

	wg := &sync.WaitGroup{}
	if cfg.Scheduler.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			scheduler.Run(ctx, orch, scheduler.Config{
				Interval:   cfg.Scheduler.Interval,
				RunTimeout: cfg.Scheduler.RunTimeout,
			}, log)
		}()
	}

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	api.NewHandler(store, cfg.Analytics.Window, log).Register(r)

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	go func() {
		log.Info("server started", zap.String("port", cfg.App.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server listen failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("server shutdown", zap.Error(err))
	}

	wg.Wait()
	log.Info("graceful shutdown complete")
}
