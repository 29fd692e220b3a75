package plugin

import (
	"fmt"
	"math"
	"unsafe"
)

// copyInput copies a boundary input buffer into Go memory. The length is a
// full 64-bit count per the ABI; it is validated before any slice header is
// formed, so an oversized value is rejected instead of wrapping into a
// short read.
func copyInput(ptr unsafe.Pointer, length uint64) ([]byte, error) {
	if ptr == nil || length == 0 {
		return nil, nil
	}
	if length > math.MaxInt {
		return nil, fmt.Errorf("input length %d exceeds addressable memory", length)
	}

	//nolint:gosec // G103: ptr is host-owned memory handed across the C boundary.
	src := unsafe.Slice((*byte)(ptr), int(length))
	out := make([]byte, length)
	copy(out, src)
	return out, nil
}
