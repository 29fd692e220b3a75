package ports

import "unsafe"

// EntryFunc is the plugin's registration entry point. It returns the
// address of a plugin-owned descriptor, or 0.
type EntryFunc func() uintptr

// InvokeFunc is the descriptor's invoke function pointer. input/inputLen is
// a pointer+length view of the request string; the buffer behind it must
// stay stable for the duration of the call. out and outLen point at a
// uintptr and a uint64 the plugin fills with the plugin-owned result
// buffer. The return value is a dynplug status code: 0 for success,
// non-zero for a plugin-signalled failure whose message is in out/outLen.
type InvokeFunc func(input unsafe.Pointer, inputLen uint64, repeat uint32, out unsafe.Pointer, outLen unsafe.Pointer) int32

// ReleaseFunc returns a buffer produced by InvokeFunc to the allocator
// that produced it. It must be called exactly once per buffer.
type ReleaseFunc func(ptr uintptr, length uint64)

// Binder turns raw addresses resolved from a library into callable
// functions with the frozen dynplug signatures. Argument layout, pointer
// width and integer width must match the descriptor's C declaration
// exactly; a mismatch is undefined behavior, which is why the host checks
// the descriptor's ABI version before binding anything.
type Binder interface {
	Entry(addr uintptr) EntryFunc
	Invoke(addr uintptr) InvokeFunc
	Release(addr uintptr) ReleaseFunc
}
