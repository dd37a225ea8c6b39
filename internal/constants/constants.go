package constants

import "time"

const (
	RequestTimeout  = 30 * time.Second
	DatabaseTimeout = 5 * time.Second
	JobTimeout      = 10 * time.Minute
	HeadshotTimeout = 10 * time.Second
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	// CommitRetries bounds reload-and-retry after an optimistic concurrency conflict.
	CommitRetries = 3
	// JobRetryDelay is how long a failed scheduled run waits before its next attempt.
	JobRetryDelay = 5 * time.Minute
)

const (
	HeadshotLookupConcurrency = 8
	ImportHeadshotTimeout     = 2 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)
