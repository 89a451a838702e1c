// Package main 向量化任务执行器入口（embed-worker）
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"z-novel-writer/internal/config"
	"z-novel-writer/internal/infrastructure/messaging"
	einoobs "z-novel-writer/internal/observability/eino"
	"z-novel-writer/internal/wire"
	"z-novel-writer/pkg/logger"
	"z-novel-writer/pkg/tracer"
)

// dlqAlertThreshold 死信队列超过该长度时告警
const dlqAlertThreshold = 100

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName:    "embed-worker",
		ServiceVersion: cfg.App.Version,
		Endpoint:       cfg.Observability.Tracing.Endpoint,
		SampleRate:     cfg.Observability.Tracing.SampleRate,
		Enabled:        cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}
	defer func() { _ = shutdown(context.Background()) }()

	einoobs.Init()

	if cfg.Storage.Driver == config.StorageDriverBolt {
		logger.Warn(ctx, "bolt store is single-process, the api-server must not hold the same file")
	}

	worker, cleanup, err := wire.InitializeWorker(ctx, cfg)
	if err != nil {
		logger.Fatal(ctx, "failed to initialize worker", err)
	}
	defer cleanup()

	for _, msgType := range []string{
		messaging.TypeEmbedWorldview,
		messaging.TypeEmbedCharacter,
		messaging.TypeEmbedChapter,
	} {
		worker.Consumer.RegisterHandler(msgType, worker.Vectorizer.HandleMessage)
	}

	if err := worker.Consumer.Start(ctx); err != nil {
		logger.Fatal(ctx, "failed to start consumer", err)
	}
	go worker.Consumer.MonitorDLQ(ctx, dlqAlertThreshold)

	var metricsSrv *http.Server
	if cfg.Observability.Metrics.Enabled {
		mux := http.NewServeMux()
		mux.Handle(cfg.Observability.Metrics.Path, promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "metrics server error", err)
			}
		}()
	}

	log := logger.FromContext(ctx)
	log.Info("embed-worker started",
		"stream", string(messaging.StreamEmbeddingJobs),
		"group", string(messaging.ConsumerGroupEmbedWorker),
		"storage", cfg.Storage.Driver,
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("embed-worker shutting down")
	worker.Consumer.Stop()
	cancel()
	if metricsSrv != nil {
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}
