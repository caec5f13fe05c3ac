package config

import "time"

const (
	StoreBackendFile     = "file"
	StoreBackendMemory   = "memory"
	StoreBackendMongo    = "mongo"
	StoreBackendPostgres = "postgres"

	IdempotencyBackendMemory = "memory"
	IdempotencyBackendRedis  = "redis"
)

const (
	DefaultPort     = "5000"
	DefaultLogLevel = "info"

	DefaultStoreBackend = StoreBackendFile
	DefaultBookingsFile = "bookings.json"
	DefaultStoreTimeout = 5 * time.Second

	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "sharedcal"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPostgresDSN      = "postgres://localhost:5432/sharedcal?sslmode=disable"
	DefaultPostgresMaxConns = 10

	DefaultTimezone         = "Local"
	DefaultOtherPersonLabel = "other"

	DefaultEventsEnabled      = false
	DefaultBookingEventsTopic = "booking-events"

	DefaultIdempotencyBackend = IdempotencyBackendMemory
	DefaultIdempotencyTTL     = 24 * time.Hour
	DefaultRedisAddr          = "localhost:6379"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultMaxRequestSize = 64 * 1024 // 64KB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second
)
