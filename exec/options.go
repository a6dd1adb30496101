package exec

import "log/slog"

// Options configure a scan state.
type Options struct {
	// Logger receives structured scan lifecycle events.
	Logger *slog.Logger

	// ArenaChunkSize sets the chunk size of the scan-scoped arena.
	// Zero picks the allocator default.
	ArenaChunkSize int
}

// Option customizes scan state construction.
type Option func(*Options)

// WithLogger sets the scan logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}

// WithArenaChunkSize sets the chunk size of the scan-scoped arena.
func WithArenaChunkSize(size int) Option {
	return func(o *Options) {
		o.ArenaChunkSize = size
	}
}
