package host

import (
	"context"
	"runtime"
	"sync"
	"time"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/dynplug-dev/dynplug-sdk/domain/entities"
	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
	dperrors "github.com/dynplug-dev/dynplug-sdk/errors"
	"github.com/dynplug-dev/dynplug-sdk/internal/abi"
)

// PluginInstance is a loaded plugin: the library handle, the validated
// descriptor, and the bound invoke/release functions. It outlives every
// function pointer derived from it; unload waits for in-flight calls.
type PluginInstance struct {
	id      string
	path    string
	desc    entities.Descriptor
	lib     ports.Library
	invoke  ports.InvokeFunc
	release ports.ReleaseFunc
	ledger  *abi.Ledger
	log     zerolog.Logger
	metrics *metrics

	mu       sync.Mutex
	inFlight int
	closing  bool
	closed   bool
	drained  chan struct{}

	// callMu serializes invocations of plugins that did not declare
	// themselves reentrant.
	callMu sync.Mutex
}

// ID returns the instance's unique identifier.
func (p *PluginInstance) ID() string {
	return p.id
}

// Path returns the library path the instance was loaded from.
func (p *PluginInstance) Path() string {
	return p.path
}

// Describe returns the plugin's validated descriptor metadata.
func (p *PluginInstance) Describe() entities.Descriptor {
	return p.desc
}

// Invoke crosses the boundary once: it encodes the request, calls the
// plugin's invoke function, decodes the returned buffer into host memory
// and releases the original allocation through the plugin's release
// function. The returned result shares no memory with the plugin.
//
// A breach of the ownership protocol detected on the release path is a
// programming defect and panics; by then memory corruption may already
// have occurred and continuing would hide it.
func (p *PluginInstance) Invoke(ctx context.Context, req entities.InvocationRequest) (entities.InvocationResult, error) {
	if err := ctx.Err(); err != nil {
		return entities.InvocationResult{}, err
	}
	if err := p.beginCall(); err != nil {
		return entities.InvocationResult{}, err
	}
	defer p.endCall()

	if !p.desc.Reentrant {
		p.callMu.Lock()
		defer p.callMu.Unlock()
	}

	p.metrics.callStarted(p.desc.Name)
	defer p.metrics.callFinished(p.desc.Name)
	start := time.Now()

	// Pointer+length view of the input; no copy. The string's bytes must
	// stay put until the call returns, hence the KeepAlive below.
	var input unsafe.Pointer
	if len(req.Input) > 0 {
		input = unsafe.Pointer(unsafe.StringData(req.Input))
	}

	var out uintptr
	var outLen uint64
	status := p.invoke(input, uint64(len(req.Input)), req.Repeat, unsafe.Pointer(&out), unsafe.Pointer(&outLen))
	runtime.KeepAlive(req.Input)

	payload, err := p.decodeAndRelease(status, out, outLen)
	if err != nil {
		p.metrics.observeInvocation(p.desc.Name, "error")
		p.log.Debug().Err(err).Msg("invocation failed")
		return entities.InvocationResult{}, err
	}

	p.metrics.observeInvocation(p.desc.Name, "ok")
	meta := entities.NewRunMetadata(start, time.Now()).WithPluginID(p.id)
	return entities.InvocationResult{Output: string(payload), Metadata: meta}, nil
}

// decodeAndRelease walks a returned buffer through the ownership
// lifecycle: track, copy into host memory, release exactly once. The copy
// happens before the release, so the host-native result never depends on
// plugin allocator state surviving it.
func (p *PluginInstance) decodeAndRelease(status int32, out uintptr, outLen uint64) ([]byte, error) {
	if out == 0 {
		if outLen != 0 {
			return nil, dperrors.InvocationError(p.path, "plugin returned a null buffer with non-zero length")
		}
		if status != entities.StatusOK {
			return nil, dperrors.InvocationError(p.path, "plugin signalled failure")
		}
		// Empty result: nothing was allocated, nothing to release.
		return nil, nil
	}

	tok, err := p.ledger.Track(out, outLen, p.release)
	if err != nil {
		panic(err)
	}
	payload, err := p.ledger.Bytes(tok)
	if err != nil {
		panic(err)
	}
	if err := p.ledger.Release(tok); err != nil {
		panic(err)
	}

	if status != entities.StatusOK {
		return nil, dperrors.InvocationError(p.path, string(payload))
	}
	return payload, nil
}

// InvokeDetached runs Invoke on a worker goroutine so the caller can give
// up waiting. There is no way to interrupt a native call in-process: on
// ctx expiry the worker is abandoned, never killed. The abandoned worker
// still decodes and releases the plugin's buffer, and its in-flight count
// keeps unload from pulling the library out from under it.
func (p *PluginInstance) InvokeDetached(ctx context.Context, req entities.InvocationRequest) (entities.InvocationResult, error) {
	type outcome struct {
		res entities.InvocationResult
		err error
	}

	ch := make(chan outcome, 1)
	go func() {
		res, err := p.Invoke(context.WithoutCancel(ctx), req)
		ch <- outcome{res: res, err: err}
	}()

	select {
	case o := <-ch:
		return o.res, o.err
	case <-ctx.Done():
		p.log.Warn().Str("path", p.path).Msg("invocation abandoned after deadline")
		return entities.InvocationResult{}, dperrors.TimeoutError(p.path)
	}
}

// InFlight returns the number of invocations currently inside the plugin.
func (p *PluginInstance) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

func (p *PluginInstance) beginCall() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closing || p.closed {
		return dperrors.ClosedError(p.path)
	}
	p.inFlight++
	return nil
}

func (p *PluginInstance) endCall() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight--
	if p.closing && p.inFlight == 0 && p.drained != nil {
		close(p.drained)
		p.drained = nil
	}
}

// unload drains in-flight invocations, then closes the library; the
// library is never released beneath an active call. On ctx expiry the
// instance is reopened for invocations and a busy error is returned.
func (p *PluginInstance) unload(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closing = true
	if p.inFlight > 0 {
		if p.drained == nil {
			p.drained = make(chan struct{})
		}
		drained := p.drained
		p.mu.Unlock()

		select {
		case <-drained:
			p.mu.Lock()
		case <-ctx.Done():
			p.mu.Lock()
			if !p.closed && p.inFlight > 0 {
				p.closing = false
				p.drained = nil
				p.mu.Unlock()
				return dperrors.BusyError(p.path)
			}
		}
	}
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	// Any buffer still tracked belongs to an abandoned call that will
	// never decode it; return it to the plugin while release is valid.
	p.ledger.ReleaseAll()

	if err := p.lib.Close(); err != nil {
		return dperrors.LoadError(p.path, err)
	}
	return nil
}
