package domain

import "time"

// Config defines the interface for application configuration
type Config interface {
	// AppID returns the reverse-DNS application identifier
	AppID() string

	// Identity returns the human readable player name
	Identity() string

	// LogLevel returns the zap level name
	LogLevel() string

	// ArtworkCacheDir returns the directory for persisted cover art.
	// An empty string disables persistence.
	ArtworkCacheDir() string

	// ArtworkMaxSize bounds the decoded bitmap's longest side; 0 derives it from the screen
	ArtworkMaxSize() int

	// PaletteSize returns the number of colours extracted per cover
	PaletteSize() int

	// ResolverWorkers returns the metadata resolution pool size
	ResolverWorkers() int

	// CommandBuffer returns the capacity of the shared command queue
	CommandBuffer() int

	// MPRISEnabled reports whether the D-Bus media session sink is registered
	MPRISEnabled() bool

	// MPRISTimeout bounds the asynchronous MPRIS registration
	MPRISTimeout() time.Duration

	// TrayEnabled reports whether the notification-area sink is registered
	TrayEnabled() bool
}
