package host

import (
	"context"
	stderrors "errors"
	"path/filepath"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dynplug-dev/dynplug-sdk/domain/entities"
	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
	dperrors "github.com/dynplug-dev/dynplug-sdk/errors"
	"github.com/dynplug-dev/dynplug-sdk/infrastructure/dl"
	"github.com/dynplug-dev/dynplug-sdk/internal/abi"
)

// Executor manages the lifecycle of native shared-library plugins. It owns
// the table mapping loaded paths to instances; loads and unloads mutate
// the table, lookups read it, and the two are mutually exclusive.
type Executor struct {
	opener  ports.Opener
	binder  ports.Binder
	log     zerolog.Logger
	metrics *metrics

	mu        sync.Mutex
	instances map[string]*PluginInstance
}

// NewExecutor creates an executor. Without options it loads through the
// operating system's dynamic loader and logs nowhere.
func NewExecutor(opts ...Option) *Executor {
	loader := dl.New()
	e := &Executor{
		opener:    loader,
		binder:    loader,
		log:       zerolog.Nop(),
		instances: make(map[string]*PluginInstance),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Load opens the library at path, resolves and validates its descriptor,
// and registers the instance in the handle table. Loading an already
// loaded path returns the existing instance. The ABI version tag is
// checked before any descriptor function pointer is bound; on mismatch
// the library is closed and the pointers are never exposed.
func (e *Executor) Load(ctx context.Context, path string) (*PluginInstance, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, dperrors.LoadError(path, err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if inst, ok := e.instances[resolved]; ok {
		return inst, nil
	}

	lib, err := e.opener.Open(resolved)
	if err != nil {
		return nil, dperrors.LoadError(resolved, err)
	}

	inst, err := e.register(resolved, lib)
	if err != nil {
		// Nothing derived from the library escaped; closing is safe.
		_ = lib.Close()
		return nil, err
	}

	e.instances[resolved] = inst
	e.metrics.pluginLoaded()
	e.log.Info().
		Str("plugin", inst.desc.Name).
		Str("path", resolved).
		Str("instance_id", inst.id).
		Bool("reentrant", inst.desc.Reentrant).
		Msg("plugin loaded")
	return inst, nil
}

// register resolves the entry symbol and turns the raw descriptor into a
// validated instance. Called with the table lock held.
func (e *Executor) register(path string, lib ports.Library) (*PluginInstance, error) {
	addr, err := lib.Lookup(entities.EntrySymbol)
	if err != nil || addr == 0 {
		return nil, dperrors.SymbolError(path, entities.EntrySymbol, err)
	}

	raw, err := abi.ReadDescriptor(e.binder.Entry(addr)())
	if err != nil {
		return nil, dperrors.LoadError(path, err)
	}

	// The version tag is the only defense against an incompatible layout;
	// nothing else in the descriptor may be trusted before this check.
	if raw.ABIVersion != entities.ABIVersion {
		return nil, dperrors.VersionError(path, raw.ABIVersion, entities.ABIVersion)
	}
	if err := raw.Validate(); err != nil {
		return nil, dperrors.LoadError(path, err)
	}

	nameBytes := abi.CopyBytes(raw.Name, raw.NameLen)
	if !utf8.Valid(nameBytes) {
		return nil, dperrors.LoadError(path, stderrors.New("plugin name is not valid UTF-8"))
	}

	desc := entities.Descriptor{
		Name:       string(nameBytes),
		ABIVersion: raw.ABIVersion,
		Reentrant:  raw.Reentrant(),
	}
	if err := desc.Validate(); err != nil {
		return nil, dperrors.LoadError(path, err)
	}

	return &PluginInstance{
		id:      uuid.NewString(),
		path:    path,
		desc:    desc,
		lib:     lib,
		invoke:  e.binder.Invoke(raw.Invoke),
		release: e.binder.Release(raw.Release),
		ledger:  abi.NewLedger(),
		log:     e.log.With().Str("plugin", desc.Name).Logger(),
		metrics: e.metrics,
	}, nil
}

// Instance returns the loaded instance for path, if any.
func (e *Executor) Instance(path string) (*PluginInstance, bool) {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	inst, ok := e.instances[resolved]
	return inst, ok
}

// Unload drains in-flight invocations on the instance at path and releases
// the library. If ctx expires while invocations are still in flight the
// unload fails busy and the instance stays loaded and usable.
func (e *Executor) Unload(ctx context.Context, path string) error {
	resolved, err := filepath.Abs(path)
	if err != nil {
		return dperrors.LoadError(path, err)
	}

	e.mu.Lock()
	inst, ok := e.instances[resolved]
	e.mu.Unlock()
	if !ok {
		return dperrors.ClosedError(resolved)
	}

	if err := inst.unload(ctx); err != nil {
		return err
	}

	e.mu.Lock()
	delete(e.instances, resolved)
	e.mu.Unlock()
	e.metrics.pluginUnloaded()
	e.log.Info().Str("path", resolved).Msg("plugin unloaded")
	return nil
}

// Close unloads every plugin. Errors are joined; a busy instance stays
// loaded and is reported.
func (e *Executor) Close(ctx context.Context) error {
	e.mu.Lock()
	paths := make([]string, 0, len(e.instances))
	for path := range e.instances {
		paths = append(paths, path)
	}
	e.mu.Unlock()

	var errs []error
	for _, path := range paths {
		if err := e.Unload(ctx, path); err != nil {
			errs = append(errs, err)
		}
	}
	return stderrors.Join(errs...)
}
