package client

import (
	"context"
	"time"

	"sharedcal/pkg/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

const postgresPingTimeout = 5 * time.Second

func (c *Client) SetPostgres(log *logger.Logger, dsn string, maxConns int) {
	db, err := sqlx.Open("postgres", dsn)
	if err != nil {
		log.Fatal("Failed to open PostgreSQL", "error", err)
	}

	db.SetMaxOpenConns(maxConns)
	db.SetMaxIdleConns(maxConns)
	db.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), postgresPingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		log.Fatal("Failed to ping PostgreSQL", "error", err)
	}

	log.Info("Successfully connected to PostgreSQL")
	c.Postgres = db
}
