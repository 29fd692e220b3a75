package abi

import "unsafe"

// CopyBytes copies length bytes at ptr into a fresh host-owned slice.
// A null or empty view yields nil. The copy is what lets the caller's
// slice survive the release of the original allocation.
func CopyBytes(ptr uintptr, length uint64) []byte {
	if ptr == 0 || length == 0 {
		return nil
	}

	//nolint:gosec // G103: ptr is plugin-allocated memory, not GC-managed.
	src := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), length)
	dst := make([]byte, length)
	copy(dst, src)
	return dst
}
