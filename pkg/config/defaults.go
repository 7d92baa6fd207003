package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "courtbook"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRateLimitRequests = 10
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Hourly display slots are projected over this window.
	DefaultSlotDayStart = "06:00"
	DefaultSlotDayEnd   = "22:00"

	// Advisory slot locks self-expire so a crashed holder cannot wedge
	// a resource.
	DefaultSlotLockTTL = 10 * time.Second

	DefaultPromotionsTopic    = "waitlist.promotions"
	DefaultPromotionsDLQTopic = ""

	DefaultPaginationLimit = 100
)
