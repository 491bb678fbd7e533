// Copyright (c) 2026 Librarium. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package constants provides centralized, immutable values for the entire platform.

Categories:

  - Server Timing: Read/Write/Idle timeouts for the HTTP server.
  - Rate Limiting: Burst capacities and IP tracking TTLs.
  - Library Rules: Overdue threshold and backup retention.
*/
package constants

import "time"

// # Metadata

const (
	AppName    = "librarium"
	AppVersion = "0.1.0-dev"
)

// # Server Timing

const (
	// DefaultReadTimeout is the maximum duration for reading the entire request.
	DefaultReadTimeout = 5 * time.Second

	// DefaultWriteTimeout is the maximum duration before timing out writes of the response.
	DefaultWriteTimeout = 30 * time.Second

	// DefaultIdleTimeout is the maximum amount of time to wait for the next request.
	DefaultIdleTimeout = 120 * time.Second

	// DefaultReadHeaderTimeout is the amount of time allowed to read request headers.
	DefaultReadHeaderTimeout = 2 * time.Second

	// GlobalRequestTimeout is the deadline for the entire request lifecycle.
	GlobalRequestTimeout = 30 * time.Second

	// ShutdownTimeout is how long we wait for in-flight requests to complete during shutdown.
	ShutdownTimeout = 30 * time.Second
)

// # Rate Limiting

const (
	// DefaultRateLimitRPS is the requests per second allowed per IP.
	DefaultRateLimitRPS = 50.0

	// DefaultRateLimitBurst is the maximum burst allowed for the rate limiter.
	DefaultRateLimitBurst = 100

	// RateLimitCleanupInterval is how often old IP entries are removed from memory.
	RateLimitCleanupInterval = 1 * time.Minute

	// RateLimitClientTTL is how long a client must be idle before its entry is deleted.
	RateLimitClientTTL = 3 * time.Minute
)

// # Authentication

const (
	// AuthIssuer is the standard 'iss' claim in admin tokens.
	AuthIssuer = "librarium.local"

	// AdminRole is the only role the admin routes accept.
	AdminRole = "admin"

	// AdminTokenTTL is the lifetime of tokens minted by the CLI.
	AdminTokenTTL = 30 * 24 * time.Hour
)

// # Library Rules

const (
	// OverdueAfter is how long an open lending may run before stats report it overdue.
	OverdueAfter = 14 * 24 * time.Hour

	// BackupRetention is the default age after which backup cleanup removes a backup.
	BackupRetention = 30 * 24 * time.Hour

	// DefaultPageSize is the catalog listing page size.
	DefaultPageSize = 20
)

// # Backups

const (
	// BackupFilePrefix and BackupTimeLayout name snapshot files library_YYYYMMDD_HHMMSS.db.
	BackupFilePrefix = "library_"
	BackupTimeLayout = "20060102_150405"

	// BackupObjectPrefix is prepended to object keys in the backup bucket.
	BackupObjectPrefix = "backups/"
)

// # Request Logging

const (
	// RequestLogQueueSize bounds the entries waiting to be persisted.
	RequestLogQueueSize = 256

	// RequestLogWriteTimeout bounds a single persist of one entry.
	RequestLogWriteTimeout = 5 * time.Second
)

// # HTTP Headers

const (
	HeaderXRequestID         = "X-Request-ID"
	HeaderXRealIP            = "X-Real-IP"
	HeaderXForwardedFor      = "X-Forwarded-For"
	HeaderOrigin             = "Origin"
	HeaderAuthorization      = "Authorization"
	HeaderContentDisposition = "Content-Disposition"
)

// # JSON Field Identifiers

const (
	FieldData    = "data"
	FieldMeta    = "meta"
	FieldError   = "error"
	FieldCode    = "code"
	FieldDetails = "details"
	FieldItems   = "items"
	FieldTotal   = "total"
	FieldMessage = "message"
	FieldStatus  = "status"
	FieldApp     = "app"
	FieldVersion = "version"
	FieldChecks  = "checks"
)

// # Redis Prefixes (Cache Taxonomy)

const (
	RedisPrefixISBNLookup = "metadata:isbn:"
)
