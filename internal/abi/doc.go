// Package abi implements the host side of the dynplug boundary: decoding
// the raw descriptor a plugin's entry point returns, viewing and copying
// boundary buffers, and the ownership ledger that guarantees every
// plugin-owned buffer is released exactly once through the allocator that
// produced it.
//
// The binary layout handled here is frozen by include/dynplug.h.
package abi
