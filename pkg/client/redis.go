package client

import (
	"context"
	"time"

	"sharedcal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = 3 * time.Second

func (c *Client) SetRedis(log *logger.Logger, addr, password string) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisPingTimeout)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		log.Fatal("Failed to ping Redis", "error", err, "addr", addr)
	}

	log.Info("Successfully connected to Redis", "addr", addr)
	c.Redis = rdb
}
