package config

import "time"

// Default values for configuration.
const (
	// Server defaults
	DefaultServerHost      = "0.0.0.0"
	DefaultServerPort      = 8080
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 10 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 15 * time.Second
	DefaultMaxUploadSizeMB = 50

	// Session defaults
	DefaultSessionTTL      = 24 * time.Hour
	DefaultCleanupInterval = 1 * time.Hour

	// Cache defaults
	DefaultCacheTTL = 60 * time.Minute

	// Display defaults
	DefaultLocale             = "en-US"
	DefaultTimezone           = "Local"
	DefaultContentMaxHeightPx = 500
	DefaultContentLines       = 20

	// Logging defaults
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// DefaultConfigFile задает файл конфигурации, который ищется в рабочем каталоге.
	DefaultConfigFile = "config.yml"
)
