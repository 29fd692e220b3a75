// Package errors provides structured error types for plugin loading and
// invocation.
package errors

import (
	stderrors "errors"
	"fmt"
)

// Kind classifies a PluginError by the stage that produced it.
type Kind string

const (
	// KindLoad covers a missing file or a file that is not a loadable module.
	KindLoad Kind = "load"

	// KindSymbol means the fixed entry symbol is absent from the library.
	KindSymbol Kind = "symbol"

	// KindVersionMismatch means the descriptor declares an ABI version the
	// host does not speak. The descriptor's function pointers are never
	// exposed in this case.
	KindVersionMismatch Kind = "version_mismatch"

	// KindInvocation means the plugin itself signalled failure through its
	// return convention.
	KindInvocation Kind = "invocation"

	// KindOwnership marks a breach of the ownership protocol, such as a
	// double release. It is a programming defect, not an operational error:
	// callers that see it should abort, because memory may already be
	// corrupted.
	KindOwnership Kind = "ownership_violation"

	// KindBusy means an unload was rejected because invocations were still
	// in flight when the caller's deadline expired.
	KindBusy Kind = "busy"

	// KindClosed means the handle is being or has been unloaded.
	KindClosed Kind = "closed"

	// KindTimeout means a detached invocation overran its deadline and was
	// abandoned.
	KindTimeout Kind = "timeout"

	// KindConfig covers host configuration validation failures.
	KindConfig Kind = "config_invalid"
)

// PluginError is the error type surfaced by every stage of the host driver.
// Path and Symbol carry the context the stage had; either may be empty.
type PluginError struct {
	ErrKind    Kind
	ErrMessage string
	Path       string
	Symbol     string
	Err        error
}

func (e *PluginError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.ErrKind, e.ErrMessage)
	if e.Path != "" {
		msg = fmt.Sprintf("%s (plugin %s)", msg, e.Path)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *PluginError) Unwrap() error {
	return e.Err
}

// Kind returns the error's classification.
func (e *PluginError) Kind() Kind {
	return e.ErrKind
}

// LoadError reports that the OS loader could not map the library at path.
func LoadError(path string, cause error) *PluginError {
	return &PluginError{
		ErrKind:    KindLoad,
		ErrMessage: "cannot load library",
		Path:       path,
		Err:        cause,
	}
}

// SymbolError reports that symbol was not found in the library at path.
func SymbolError(path, symbol string, cause error) *PluginError {
	return &PluginError{
		ErrKind:    KindSymbol,
		ErrMessage: fmt.Sprintf("entry symbol %q not found", symbol),
		Path:       path,
		Symbol:     symbol,
		Err:        cause,
	}
}

// VersionError reports an ABI version the host does not support.
func VersionError(path string, got, want uint32) *PluginError {
	return &PluginError{
		ErrKind:    KindVersionMismatch,
		ErrMessage: fmt.Sprintf("descriptor declares ABI version %d, host supports %d", got, want),
		Path:       path,
	}
}

// InvocationError reports a failure signalled by the plugin. message is the
// plugin-provided text, already decoded into host memory.
func InvocationError(path, message string) *PluginError {
	return &PluginError{
		ErrKind:    KindInvocation,
		ErrMessage: message,
		Path:       path,
	}
}

// OwnershipError reports a breach of the deallocation protocol.
func OwnershipError(message string) *PluginError {
	return &PluginError{
		ErrKind:    KindOwnership,
		ErrMessage: message,
	}
}

// BusyError reports an unload rejected while invocations were in flight.
func BusyError(path string) *PluginError {
	return &PluginError{
		ErrKind:    KindBusy,
		ErrMessage: "invocations still in flight",
		Path:       path,
	}
}

// ClosedError reports use of a handle that is being unloaded.
func ClosedError(path string) *PluginError {
	return &PluginError{
		ErrKind:    KindClosed,
		ErrMessage: "plugin is unloading",
		Path:       path,
	}
}

// TimeoutError reports an abandoned detached invocation.
func TimeoutError(path string) *PluginError {
	return &PluginError{
		ErrKind:    KindTimeout,
		ErrMessage: "invocation abandoned after deadline",
		Path:       path,
	}
}

// ConfigError reports an invalid host configuration field.
func ConfigError(field, reason string) *PluginError {
	return &PluginError{
		ErrKind:    KindConfig,
		ErrMessage: fmt.Sprintf("field %s: %s", field, reason),
	}
}

// IsKind reports whether err is a PluginError of the given kind.
func IsKind(err error, k Kind) bool {
	var pe *PluginError
	if stderrors.As(err, &pe) {
		return pe.ErrKind == k
	}
	return false
}
