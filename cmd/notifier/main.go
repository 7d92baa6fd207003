package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"courtbook/internal/notify"
	"courtbook/pkg/config"
	"courtbook/pkg/kafka"
	kafka_config "courtbook/pkg/kafka/config"
	kafkamw "courtbook/pkg/kafka/middleware"
)

const ServiceName = "notifier"

// The notifier consumes waitlist promotion events and delivers them to
// users. Delivery here is a structured log line; a real deployment would
// plug an email or push provider into handlePromotion.
func main() {
	cfg := config.Load(ServiceName)
	log := cfg.Log

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(log.Info)

	consumer, err := kafka.NewConsumer(
		kafkaCfg,
		log,
		cfg.PromotionsTopic,
		ServiceName,
		cfg.PromotionsDLQTopic,
		handlePromotion(cfg),
	)
	if err != nil {
		log.Fatal("Failed to create Kafka consumer", "error", err)
	}
	consumer.Use(kafkamw.LoggingConsumerMiddleware(log))

	ctx, cancel := context.WithCancel(context.Background())

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-shutdown
		log.Info("Shutdown signal received", "signal", sig.String())
		cancel()
	}()

	log.Info("Starting notifier", "topic", cfg.PromotionsTopic)
	if err := consumer.Start(ctx); err != nil {
		log.Error("Consumer stopped with error", "error", err)
	}

	if err := consumer.Close(); err != nil {
		log.Error("Failed to close consumer", "error", err)
	}
	log.Info("Notifier stopped")
}

func handlePromotion(cfg *config.Config) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event notify.PromotionEvent
		if err := msg.DecodeValue(&event); err != nil {
			return err
		}

		cfg.Log.Info("Slot available notification",
			"entry_id", event.EntryID,
			"user_email", event.UserEmail,
			"court_id", event.CourtID,
			"date", event.Date.Format("2006-01-02"),
			"start_time", event.StartTime,
			"end_time", event.EndTime,
			"position", event.Position,
		)
		return nil
	}
}
