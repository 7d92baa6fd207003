package main

import (
	"os"

	bookinghandler "courtbook/internal/bookings/handler"
	bookingrepo "courtbook/internal/bookings/repository"
	bookingservice "courtbook/internal/bookings/service"
	"courtbook/internal/bookings/validator"
	catalogrepo "courtbook/internal/catalog/repository"
	"courtbook/internal/notify"
	waitlisthandler "courtbook/internal/waitlist/handler"
	waitlistrepo "courtbook/internal/waitlist/repository"
	waitlistservice "courtbook/internal/waitlist/service"
	"courtbook/pkg/app"
	"courtbook/pkg/config"
	"courtbook/pkg/kafka"
	kafka_config "courtbook/pkg/kafka/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Reservations service")
	bookingHandler, waitlistHandler := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(bookingHandler, waitlistHandler)
	serverApp.Run()
}

func initServices(cfg *config.Config) (*bookinghandler.BookingHandler, *waitlisthandler.WaitlistHandler) {
	bookingValidator := validator.NewBookingValidator(cfg.Log)

	catalogRepo := catalogrepo.NewMongoCatalogRepository(cfg)
	bookingRepo := bookingrepo.NewMongoBookingRepository(cfg)
	lockRepo := bookingrepo.NewMongoSlotLockRepository(cfg)
	wlRepo := waitlistrepo.NewMongoWaitlistRepository(cfg)

	availability := bookingservice.NewAvailabilityService(bookingRepo, catalogRepo, cfg)
	pricing := bookingservice.NewPricingService(catalogRepo, cfg)

	wlService := waitlistservice.NewWaitlistService(wlRepo, lockRepo, catalogRepo, buildNotifier(cfg), bookingValidator, cfg)
	bkService := bookingservice.NewBookingService(
		bookingRepo,
		lockRepo,
		catalogRepo,
		availability,
		pricing,
		wlService,
		bookingValidator,
		cfg,
	)

	cfg.Log.Info("Reservation services initialized", "database", cfg.MongoDatabaseName)
	return bookinghandler.NewBookingHandler(bkService, availability, cfg.Log),
		waitlisthandler.NewWaitlistHandler(wlService, cfg.Log)
}

// buildNotifier wires promotion events to Kafka when a broker is configured
// and falls back to log-only delivery otherwise.
func buildNotifier(cfg *config.Config) notify.Notifier {
	if os.Getenv("KAFKA_ENABLED") != "true" {
		cfg.Log.Info("Kafka disabled, waitlist promotions will be logged only")
		return notify.NewLogNotifier(cfg.Log)
	}

	kafkaCfg, err := kafka_config.Load()
	if err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.PromotionsTopic, cfg.PromotionsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	return notify.NewKafkaNotifier(producer, cfg.Log)
}
