package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sharedcal/internal/bookings/repository"
	"sharedcal/internal/migrations/mongo/validators"
	"sharedcal/pkg/logger"
)

var BookingsIndexes = []mongo.IndexModel{
	{Keys: bson.D{{Key: "position", Value: 1}}},
	{Keys: bson.D{
		{Key: "date", Value: 1},
		{Key: "start", Value: 1},
	}},
	{Keys: bson.D{{Key: "status", Value: 1}}},
}

// RunMigration creates the bookings collection with its schema validator
// and indexes. Safe to run repeatedly.
func RunMigration(ctx context.Context, client *mongo.Client, databaseName string, log *logger.Logger) error {
	db := client.Database(databaseName)
	log.Info("Running Mongo migrations", "database", databaseName)

	name := repository.CollectionName
	if err := ensureCollection(ctx, db, name, validators.BookingValidator, log); err != nil {
		return fmt.Errorf("failed to ensure collection %s: %w", name, err)
	}
	if err := ensureIndexes(ctx, db, name, BookingsIndexes, log); err != nil {
		return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
	}

	log.Info("All Mongo migrations applied")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M, log *logger.Logger) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		log.Info("Creating collection", "collection", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
		return nil
	}

	log.Info("Collection already exists, updating validator", "collection", name)
	command := bson.D{
		{Key: "collMod", Value: name},
		{Key: "validator", Value: validator},
	}
	if err := db.RunCommand(ctx, command).Err(); err != nil {
		log.Warn("Failed updating validator", "collection", name, "error", err)
	}
	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel, log *logger.Logger) error {
	if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
		return err
	}
	log.Info("Ensured indexes", "collection", name, "count", len(models))
	return nil
}
