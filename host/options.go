package host

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
)

// Option configures an Executor.
type Option func(*Executor)

// WithOpener replaces the OS dynamic loader. Used by tests and by hosts
// embedding an alternative loading mechanism.
func WithOpener(o ports.Opener) Option {
	return func(e *Executor) {
		e.opener = o
	}
}

// WithBinder replaces the FFI binder. Used together with WithOpener.
func WithBinder(b ports.Binder) Option {
	return func(e *Executor) {
		e.binder = b
	}
}

// WithLogger sets the executor's logger. Default is a no-op logger.
func WithLogger(log zerolog.Logger) Option {
	return func(e *Executor) {
		e.log = log
	}
}

// WithMetrics registers the executor's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(e *Executor) {
		e.metrics = newMetrics(reg)
	}
}
