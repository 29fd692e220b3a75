package abi

import (
	"fmt"
	"unsafe"
)

// RawDescriptor mirrors dynplug_descriptor from include/dynplug.h on a
// 64-bit platform: two 32-bit fields followed by four pointer-width fields,
// no implicit padding. Function pointers are kept as raw addresses; they
// are only ever turned into callable functions after the version check.
type RawDescriptor struct {
	ABIVersion uint32
	Flags      uint32
	Name       uintptr
	NameLen    uint64
	Invoke     uintptr
	Release    uintptr
}

// Reentrant reports whether the descriptor sets the reentrancy flag.
func (d RawDescriptor) Reentrant() bool {
	return d.Flags&flagReentrant != 0
}

const flagReentrant uint32 = 0x1

// ReadDescriptor copies the descriptor at addr into host memory. The
// plugin retains ownership of the original; the copy means no later host
// access depends on plugin memory staying intact.
//
// No field is interpreted here. The caller must check ABIVersion before
// trusting anything else in the copy; whether addr really points at a
// dynplug_descriptor is exactly what the version tag exists to protect.
func ReadDescriptor(addr uintptr) (RawDescriptor, error) {
	if addr == 0 {
		return RawDescriptor{}, fmt.Errorf("entry point returned a null descriptor")
	}

	//nolint:gosec // G103: addr is a C pointer from the plugin, not GC-managed memory.
	return *(*RawDescriptor)(unsafe.Pointer(addr)), nil
}

// Validate checks the descriptor's pointer fields. Meaningful only after
// the ABI version has been verified.
func (d RawDescriptor) Validate() error {
	if d.Name == 0 || d.NameLen == 0 {
		return fmt.Errorf("descriptor has no name")
	}
	if d.Invoke == 0 || d.Release == 0 {
		return fmt.Errorf("descriptor is missing a function pointer")
	}
	return nil
}
