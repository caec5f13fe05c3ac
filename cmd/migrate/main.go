package main

import (
	"context"
	"time"

	"sharedcal/internal/bookings/repository"
	mongoMigration "sharedcal/internal/migrations/mongo"
	postgresMigration "sharedcal/internal/migrations/postgres"
	"sharedcal/pkg/config"
)

const JobName = "bookings-migration"

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	cfg := config.Load(JobName)
	if err := cfg.Validate(); err != nil {
		cfg.Log.Fatal("Invalid configuration", "error", err)
	}
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting migration job", "backend", cfg.StoreBackend)
	migrateSchema(ctx, cfg)
	normalizeBookings(ctx, cfg)
	cfg.Log.Info("Migration completed successfully")
}

func migrateSchema(ctx context.Context, cfg *config.Config) {
	switch cfg.StoreBackend {
	case config.StoreBackendMongo:
		cfg.SetMongo()
		if err := mongoMigration.RunMigration(ctx, cfg.Client.Mongo, cfg.MongoDatabaseName, cfg.Log); err != nil {
			cfg.Log.Fatal("Mongo migration failed", "error", err)
		}
	case config.StoreBackendPostgres:
		cfg.SetPostgres()
		if err := postgresMigration.RunMigration(ctx, cfg.Client.Postgres, cfg.Log); err != nil {
			cfg.Log.Fatal("Postgres migration failed", "error", err)
		}
	default:
		cfg.Log.Info("No schema to migrate for backend", "backend", cfg.StoreBackend)
	}
}

// normalizeBookings loads the store once, which backfills missing ids and
// statuses and writes the result back when anything changed.
func normalizeBookings(ctx context.Context, cfg *config.Config) {
	repo, err := repository.NewFromConfig(cfg)
	if err != nil {
		cfg.Log.Fatal("Failed to open booking store", "error", err)
	}

	bookings, err := repository.NewSerialized(repo, cfg.Log).Snapshot(ctx)
	if err != nil {
		cfg.Log.Fatal("Failed to normalize bookings", "error", err)
	}
	cfg.Log.Info("Bookings normalized", "bookings", len(bookings))
}
