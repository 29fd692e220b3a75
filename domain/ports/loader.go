package ports

// Library is an open handle to a shared library mapped into the process.
// It must outlive every address resolved through it; Close releases the
// module and invalidates them all.
type Library interface {
	// Lookup resolves an exported symbol to its address.
	Lookup(symbol string) (uintptr, error)

	// Close releases the module. The caller guarantees no call derived
	// from this library is in flight.
	Close() error
}

// Opener asks the operating system's dynamic-loading facility to map the
// library at path into the process.
type Opener interface {
	Open(path string) (Library, error)
}
