package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 60 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Database ping timeout for health checks
const DBPingTimeout = 5 * time.Second

// Background job intervals
const CleanupJobInterval = 1 * time.Hour

// Send-link abuse limits (per IP, sliding window)
const (
	SendLinkRateLimit  = 5
	SendLinkRateWindow = time.Minute
)

// Outbound collaborator call timeouts
const (
	GatewayRequestTimeout = 30 * time.Second
	MailRequestTimeout    = 15 * time.Second
)
