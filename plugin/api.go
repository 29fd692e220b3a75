package plugin

import (
	"context"
	"sync"
)

// Plugin is the interface every Dynplug plugin implements.
type Plugin interface {
	// Name identifies the plugin. It ends up in the descriptor the host
	// reads at load time, so it must be stable for the process lifetime.
	Name() string
	// Invoke runs the plugin's logic: produce the output for input repeated
	// repeat times. Returning an error reports a failure to the host with
	// the error's message; the SDK handles the buffer ownership either way.
	Invoke(ctx context.Context, input []byte, repeat uint32) ([]byte, error)
}

// Option adjusts how the plugin is described to the host.
type Option func(*settings)

type settings struct {
	reentrant bool
}

// WithReentrant declares that Invoke is safe to call from multiple host
// threads concurrently. Without it the host serializes invocations.
func WithReentrant() Option {
	return func(s *settings) {
		s.reentrant = true
	}
}

var (
	registerMu sync.Mutex
	registered Plugin
	opts       settings
)

// Register installs p as the plugin this library exports. Plugin authors
// call it in main(); the exported entry symbol refuses to produce a
// descriptor until a plugin is registered. A second call is ignored.
func Register(p Plugin, options ...Option) {
	registerMu.Lock()
	defer registerMu.Unlock()
	if registered != nil {
		return
	}
	for _, opt := range options {
		opt(&opts)
	}
	registered = p
}

// current returns the registered plugin and its settings.
func current() (Plugin, settings) {
	registerMu.Lock()
	defer registerMu.Unlock()
	return registered, opts
}
