package bridgescan

type options struct {
	logger         *Logger
	arenaChunkSize int
}

// Option configures Bridge constructor behavior.
type Option func(*options)

// WithLogger configures the structured logger used by the bridge and
// the scans it creates.
//
// If nil is passed, logging is disabled.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithArenaChunkSize configures the chunk size of the per-scan memory
// arena. Zero keeps the allocator default.
func WithArenaChunkSize(size int) Option {
	return func(o *options) {
		o.arenaChunkSize = size
	}
}
