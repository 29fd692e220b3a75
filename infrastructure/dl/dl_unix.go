//go:build darwin || freebsd || linux || netbsd

package dl

import (
	"unsafe"

	"github.com/ebitengine/purego"

	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
)

// Loader drives dlopen/dlsym/dlclose through purego and binds resolved
// addresses to the frozen dynplug signatures.
type Loader struct{}

// New creates a Loader.
func New() *Loader {
	return &Loader{}
}

// Open maps the library at path into the process. Symbols are resolved
// eagerly so a plugin with unresolved references fails here, not in the
// middle of an invocation, and stay local to avoid polluting the host's
// symbol namespace.
func (*Loader) Open(path string) (ports.Library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_LOCAL)
	if err != nil {
		return nil, err
	}
	return &library{handle: handle}, nil
}

// Entry binds the plugin's registration entry point.
func (*Loader) Entry(addr uintptr) ports.EntryFunc {
	var fn func() uintptr
	purego.RegisterFunc(&fn, addr)
	return fn
}

// Invoke binds a descriptor's invoke function pointer.
func (*Loader) Invoke(addr uintptr) ports.InvokeFunc {
	var fn func(input unsafe.Pointer, inputLen uint64, repeat uint32, out unsafe.Pointer, outLen unsafe.Pointer) int32
	purego.RegisterFunc(&fn, addr)
	return fn
}

// Release binds a descriptor's release function pointer.
func (*Loader) Release(addr uintptr) ports.ReleaseFunc {
	var fn func(ptr uintptr, length uint64)
	purego.RegisterFunc(&fn, addr)
	return fn
}

// library wraps one loaded module handle.
type library struct {
	handle uintptr
}

// Lookup resolves an exported symbol to its address.
func (l *library) Lookup(symbol string) (uintptr, error) {
	return purego.Dlsym(l.handle, symbol)
}

// Close releases the module from the process.
func (l *library) Close() error {
	return purego.Dlclose(l.handle)
}
