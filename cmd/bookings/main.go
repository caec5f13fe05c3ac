package main

import (
	"context"

	"sharedcal/internal/bookings/events"
	"sharedcal/internal/bookings/handler"
	"sharedcal/internal/bookings/repository"
	"sharedcal/internal/bookings/service"
	"sharedcal/internal/bookings/validator"
	"sharedcal/pkg/app"
	"sharedcal/pkg/config"
	"sharedcal/pkg/kafka"
	kafka_config "sharedcal/pkg/kafka/config"
	kafka_middleware "sharedcal/pkg/kafka/middleware"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}

	cfg.LogConfiguration()

	cfg.Log.Info("Starting Bookings service")
	connectClients(cfg)

	store := initStore(cfg)
	publisher := initPublisher(cfg)
	bookingService := service.NewBookingService(
		store,
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.OnShutdown("events", func(context.Context) error { return publisher.Close() })
	serverApp.OnShutdown("store", store.Close)
	serverApp.SetApp(
		handler.NewHealthHandler(store, cfg.StoreBackend, cfg.Log),
		handler.NewBookingHandler(bookingService, cfg.Log),
	)
	serverApp.Run()
}

func connectClients(cfg *config.Config) {
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		cfg.SetMongo()
	case config.StoreBackendPostgres:
		cfg.SetPostgres()
	}

	if cfg.IdempotencyBackend == config.IdempotencyBackendRedis {
		cfg.SetRedis()
	}
}

// initStore opens the configured store and loads it once so a malformed
// store stops the service before it accepts requests.
func initStore(cfg *config.Config) *repository.Serialized {
	repo, err := repository.NewFromConfig(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open booking store", "error", err)
	}

	store := repository.NewSerialized(repo, cfg.Log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.StoreTimeout)
	defer cancel()

	bookings, err := store.Snapshot(ctx)
	if err != nil {
		cfg.Log.Fatal("Failed to load bookings", "error", err, "backend", cfg.StoreBackend)
	}

	cfg.Log.Info("Booking store initialized", "backend", cfg.StoreBackend, "bookings", len(bookings))
	return store
}

func initPublisher(cfg *config.Config) events.Publisher {
	if !cfg.EventsEnabled {
		cfg.Log.Info("Booking events disabled")
		return events.NewNoopPublisher()
	}

	kafkaCfg := kafka_config.Load()
	if err := kafkaCfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid Kafka configuration", "error", err)
	}
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.Log, cfg.BookingEventsTopic, cfg.BookingEventsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}
	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
	}

	cfg.Log.Info("Booking events enabled", "topic", cfg.BookingEventsTopic)
	return events.NewKafkaPublisher(producer, cfg.ServiceName, kafkaCfg.PublishTimeout)
}
