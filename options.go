package hooter

import (
	"io"

	"github.com/charmbracelet/log"

	"github.com/dshills/hooter/pattern"
	"github.com/dshills/hooter/seq"
)

// Option configures a Hooter.
type Option func(*config)

// config contains construction-time configuration for a bus.
type config struct {
	// sep is the segment separator for wildcard matching.
	sep string

	// logger receives bus diagnostics at debug level.
	logger *log.Logger

	// seqConfig is forwarded verbatim to the sequencer constructor.
	seqConfig seq.Config

	// sequencer, when set, replaces the default runner entirely.
	sequencer Sequencer

	// broadcastBuffer is the gochannel buffer of the broadcaster.
	broadcastBuffer int
}

// defaultConfig returns sensible defaults.
func defaultConfig() config {
	return config{
		sep:    pattern.DefaultSeparator,
		logger: log.New(io.Discard),
	}
}

// WithSeparator sets the segment separator used for wildcard matching
// and prefix composition. Empty separators are ignored.
func WithSeparator(sep string) Option {
	return func(c *config) {
		if sep != "" {
			c.sep = sep
		}
	}
}

// WithLogger sets the bus logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithSequencing forwards configuration to the sequencing capability's
// constructor.
func WithSequencing(cfg seq.Config) Option {
	return func(c *config) {
		c.seqConfig = cfg
	}
}

// WithSequencer replaces the sequencing capability entirely.
func WithSequencer(s Sequencer) Option {
	return func(c *config) {
		if s != nil {
			c.sequencer = s
		}
	}
}

// WithBroadcastBuffer sets the broadcast gochannel buffer size.
func WithBroadcastBuffer(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.broadcastBuffer = n
		}
	}
}
