package client

import (
	"context"
	"sync"
	"time"

	"sharedcal/pkg/logger"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Client holds the optional backend connections. Only the ones a service
// asks for are populated.
type Client struct {
	Mongo    *mongo.Client
	Postgres *sqlx.DB
	Redis    *redis.Client
}

func NewClient() *Client {
	return &Client{}
}

func (c *Client) SetMongo(log *logger.Logger, mongoURI string, mongoConnTimeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), mongoConnTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		log.Fatal("Failed to ping MongoDB", "error", err)
	}

	log.Info("Successfully connected to MongoDB")
	c.Mongo = client
}

func (c *Client) GracefulShutdown(log *logger.Logger, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var wg sync.WaitGroup

	if c.Mongo != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Mongo.Disconnect(ctx); err != nil {
				log.Error("Failed to disconnect MongoDB", "error", err)
				return
			}
			log.Info("MongoDB connection closed")
		}()
	}

	if c.Postgres != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Postgres.Close(); err != nil {
				log.Error("Failed to close PostgreSQL pool", "error", err)
				return
			}
			log.Info("PostgreSQL connection closed")
		}()
	}

	if c.Redis != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := c.Redis.Close(); err != nil {
				log.Error("Failed to close Redis client", "error", err)
				return
			}
			log.Info("Redis connection closed")
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		log.Warn("Timed out closing backend connections", "timeout", timeout)
	}
}
