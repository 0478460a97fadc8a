// Package app wires the configured collaborators into a content pipeline.
// It is shared by the HTTP server, the Lambda handler and the CLI.
package app

import (
	"context"
	"fmt"
	"time"

	"content-creator/internal/api"
	"content-creator/internal/backends/generation"
	"content-creator/internal/backends/retrieval"
	awsclient "content-creator/internal/common/aws"
	"content-creator/internal/common/config"
	"content-creator/internal/common/database"
	apphttp "content-creator/internal/common/http"
	"content-creator/internal/common/logger"
	"content-creator/internal/common/observability"
	"content-creator/internal/content/pipeline"
	"content-creator/internal/content/render"
	"content-creator/internal/events"
	"content-creator/internal/history"
)

// Options controls how hard Build tries to reach dependencies.
type Options struct {
	ConnectRetries int
	RetryDelay     time.Duration
	Observability  *observability.Observability
}

// ServerOptions suits a long-running process that may start before its
// dependencies.
var ServerOptions = Options{ConnectRetries: 10, RetryDelay: 2 * time.Second}

// OneShotOptions suits the Lambda handler and the CLI.
var OneShotOptions = Options{ConnectRetries: 1}

type App struct {
	Config        *config.Config
	Logger        logger.Logger
	Pipeline      *pipeline.Pipeline
	History       *history.Store
	Elasticsearch *database.ElasticsearchClient
	Checks        []api.ReadinessCheck

	closers []func() error
}

// Build connects every enabled dependency and assembles the pipeline.
// Disabled features leave their fields nil.
func Build(ctx context.Context, cfg *config.Config, log logger.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Logger: log}
	httpClient := apphttp.NewClient(config.GetDuration(cfg.Generation.Timeout)).Standard()

	var err error
	if cfg.Retrieval.Provider == config.ProviderElasticsearch {
		a.Elasticsearch, err = database.NewElasticsearch(cfg.Database.Elasticsearch, httpClient.Transport)
		if err != nil {
			return nil, err
		}
		err = RetryWithBackoff(func() error { return a.Elasticsearch.Ping(ctx) },
			opts.ConnectRetries, opts.RetryDelay, log, "Elasticsearch connection")
		if err != nil {
			return nil, err
		}
		a.Checks = append(a.Checks, api.ReadinessCheck{Name: "elasticsearch", Check: a.Elasticsearch.Ping})
		log.Info("Elasticsearch connected successfully", nil)
	}

	var rdb *database.RedisClient
	if cfg.Retrieval.Cache.Enabled {
		rdb = database.NewRedis(cfg.Database.Redis)
		a.closers = append(a.closers, rdb.Close)
		err = RetryWithBackoff(func() error { return rdb.Ping(ctx) },
			opts.ConnectRetries, opts.RetryDelay, log, "Redis connection")
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Checks = append(a.Checks, api.ReadinessCheck{Name: "redis", Check: rdb.Ping})
		log.Info("Redis connected successfully", nil)
	}

	var retriever retrieval.Retriever
	if rdb != nil {
		retriever, err = retrieval.New(cfg, a.Elasticsearch, rdb.Client, log)
	} else {
		retriever, err = retrieval.New(cfg, a.Elasticsearch, nil, log)
	}
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("retrieval init failed: %w", err)
	}

	backend, err := generation.New(ctx, cfg, httpClient)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("generation init failed: %w", err)
	}

	popts := []pipeline.Option{
		pipeline.WithRenderer(*render.New(cfg.Render.EscapeHTML)),
		pipeline.WithTopK(cfg.Retrieval.TopK),
		pipeline.WithLogger(log),
		pipeline.WithObservability(opts.Observability),
	}

	if cfg.History.Enabled {
		pg, err := database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.closers = append(a.closers, pg.Close)
		err = RetryWithBackoff(func() error { return pg.Ping(ctx) },
			opts.ConnectRetries, opts.RetryDelay, log, "PostgreSQL connection")
		if err != nil {
			a.Close()
			return nil, err
		}
		a.History = history.NewStore(pg.DB)
		if err := a.History.EnsureSchema(ctx); err != nil {
			a.Close()
			return nil, fmt.Errorf("history schema: %w", err)
		}
		a.Checks = append(a.Checks, api.ReadinessCheck{Name: "postgres", Check: pg.Ping})
		popts = append(popts, pipeline.WithHistory(a.History))
		log.Info("PostgreSQL connected successfully", nil)
	}

	if cfg.AWS.SNS.Enabled {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.AWS.Region, httpClient)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to load aws config: %w", err)
		}
		popts = append(popts, pipeline.WithEvents(events.NewPublisher(awsclient.NewSNSClient(awsCfg), cfg.AWS.SNS.TopicARN)))
	}

	a.Pipeline = pipeline.New(retriever, backend, popts...)
	log.Info("Content pipeline ready", map[string]interface{}{
		"retriever": retriever.Name(),
		"backend":   backend.Name(),
		"history":   cfg.History.Enabled,
		"events":    cfg.AWS.SNS.Enabled,
	})
	return a, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	a.closers = nil
}

// RetryWithBackoff runs operation up to maxRetries times, doubling the delay
// after each failure.
func RetryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log logger.Logger, operationName string) error {
	if maxRetries < 1 {
		maxRetries = 1
	}
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName), map[string]interface{}{
				"error":       err.Error(),
				"attempt":     i + 1,
				"maxRetries":  maxRetries,
				"nextRetryIn": delay.String(),
			})
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}
