// cmd/content-api/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"content-creator/internal/api"
	"content-creator/internal/app"
	"content-creator/internal/common/camunda"
	"content-creator/internal/common/config"
	"content-creator/internal/common/logger"
	"content-creator/internal/common/observability"
	gc "content-creator/internal/workers/content/generate-content"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.FromConfig(cfg)

	zapLog.Info("Starting content API...")

	obs := observability.New(cfg.App.Name, nil)
	defer obs.Shutdown()

	ctx := context.Background()
	opts := app.ServerOptions
	opts.Observability = obs

	application, err := app.Build(ctx, cfg, log, opts)
	if err != nil {
		zapLog.Fatal("pipeline init failed", zap.Error(err))
	}
	defer application.Close()

	checks := application.Checks

	// --- Optional Zeebe worker ---
	var contentWorker *camunda.Worker
	if cfg.Camunda.Enabled {
		var zeebe *camunda.Client
		err = app.RetryWithBackoff(func() error {
			var err error
			zeebe, err = camunda.NewClient(camunda.ConfigFrom(cfg.Camunda))
			return err
		}, 10, 2*time.Second, log, "Zeebe client initialization")
		if err != nil {
			zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
		}
		defer zeebe.Close()
		zapLog.Info("Zeebe client connected successfully")

		wcfg := config.GetWorkerConfig(cfg, gc.TaskType)
		handler := gc.NewHandler(&gc.Config{Timeout: config.GetDuration(wcfg.Timeout)}, application.Pipeline, log)
		contentWorker = camunda.StartWorker(zeebe.GetClient(), gc.TaskType, wcfg, handler.Handle, log)
		checks = append(checks, api.ReadinessCheck{Name: "zeebe", Check: zeebe.HealthCheck})
	}

	// --- HTTP server ---
	gin.SetMode(cfg.Server.GinMode)
	serverOpts := []api.Option{
		api.WithLogger(log),
		api.WithObservability(obs),
		api.WithReadinessChecks(checks...),
	}
	if application.History != nil {
		serverOpts = append(serverOpts, api.WithHistory(application.History))
	}
	server := api.NewServer(application.Pipeline, serverOpts...)

	srv := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      server.Router(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), config.GetDuration(cfg.Server.ShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server forced to shutdown", zap.Error(err))
	}
	contentWorker.Stop(shutdownCtx)

	zapLog.Info("Content API stopped gracefully")
}
