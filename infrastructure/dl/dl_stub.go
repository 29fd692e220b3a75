//go:build !(darwin || freebsd || linux || netbsd)

package dl

import (
	"errors"
	"runtime"

	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
)

// Loader is a stub on platforms without a supported dynamic loader.
type Loader struct{}

// New creates a Loader.
func New() *Loader {
	return &Loader{}
}

// Open always fails on unsupported platforms.
func (*Loader) Open(string) (ports.Library, error) {
	return nil, errors.New("dynamic loading is not supported on " + runtime.GOOS)
}

// Entry is never reached because Open always fails.
func (*Loader) Entry(uintptr) ports.EntryFunc {
	return func() uintptr { return 0 }
}

// Invoke is never reached because Open always fails.
func (*Loader) Invoke(uintptr) ports.InvokeFunc {
	return nil
}

// Release is never reached because Open always fails.
func (*Loader) Release(uintptr) ports.ReleaseFunc {
	return nil
}
