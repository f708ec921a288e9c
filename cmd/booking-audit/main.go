package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"resort/internal/audit"
	"resort/internal/audit/repository"
	"resort/pkg/config"
	"resort/pkg/kafka"
	kafka_config "resort/pkg/kafka/config"
	kafka_middleware "resort/pkg/kafka/middleware"
)

const (
	ServiceName     = "booking-audit"
	metricsInterval = time.Minute
)

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log)

	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	projector := audit.NewProjector(repository.NewMongoEventRepository(cfg, db), cfg.Log)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		kafkaCfg.BookingEventsTopic,
		kafkaCfg.AuditConsumerGroup,
		kafkaCfg.BookingEventsDLQTopic,
		projector.Handle,
		cfg.Log,
	)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	cfg.Client.OnShutdown(consumer)

	metrics := kafka_middleware.NewMetrics()
	consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
	consumer.Use(metrics.ConsumerMiddleware())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reportMetrics(ctx, cfg, metrics)

	cfg.Log.Info("Starting booking audit consumer",
		"topic", kafkaCfg.BookingEventsTopic,
		"group_id", kafkaCfg.AuditConsumerGroup,
	)
	if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		cfg.Log.Error("Consumer stopped with error", "error", err)
	}
	cfg.Log.Info("Booking audit consumer stopped", metrics.Snapshot().LogValues()...)
}

func reportMetrics(ctx context.Context, cfg *config.Config, metrics *kafka_middleware.Metrics) {
	ticker := time.NewTicker(metricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cfg.Log.Info("Booking audit consumer metrics", metrics.Snapshot().LogValues()...)
		}
	}
}
