//go:build cgo

package plugin

/*
#cgo CFLAGS: -I${SRCDIR}/../include

#include <stdint.h>
#include <stdlib.h>
#include "dynplug.h"

extern const dynplug_descriptor *dynplugInitDescriptor(const uint8_t *name,
                                                       uint64_t name_len,
                                                       uint32_t flags);
*/
import "C"

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"unsafe"
)

var descOnce sync.Once
var desc *C.dynplug_descriptor

// dynplug_plugin_v1 is the entry symbol the host resolves. It returns the
// descriptor for the registered plugin, or NULL when Register was never
// called. The name buffer is C-allocated and lives as long as the library.
//
//export dynplug_plugin_v1
func dynplug_plugin_v1() *C.dynplug_descriptor {
	p, s := current()
	if p == nil {
		return nil
	}
	descOnce.Do(func() {
		name := p.Name()
		var flags C.uint32_t
		if s.reentrant {
			flags = C.DYNPLUG_FLAG_REENTRANT
		}
		desc = (*C.dynplug_descriptor)(unsafe.Pointer(C.dynplugInitDescriptor(
			(*C.uint8_t)(C.CBytes([]byte(name))),
			C.uint64_t(len(name)),
			flags,
		)))
	})
	return desc
}

// dynplugGoInvoke adapts the registered plugin's Invoke to the C signature.
// Panics are recovered and reported as failures; whatever buffer crosses
// back to the host is C-allocated so release can return it to free.
//
//export dynplugGoInvoke
func dynplugGoInvoke(input *C.uint8_t, inputLen C.uint64_t, repeat C.uint32_t, out **C.uint8_t, outLen *C.uint64_t) (status C.int32_t) {
	*out = nil
	*outLen = 0

	defer func() {
		if r := recover(); r != nil {
			fail(out, outLen, fmt.Sprintf("plugin panic: %v\n%s", r, debug.Stack()))
			status = C.DYNPLUG_ERR
		}
	}()

	p, _ := current()
	if p == nil {
		fail(out, outLen, "no plugin registered")
		return C.DYNPLUG_ERR
	}

	in, err := copyInput(unsafe.Pointer(input), uint64(inputLen))
	if err != nil {
		fail(out, outLen, err.Error())
		return C.DYNPLUG_ERR
	}

	result, err := p.Invoke(context.Background(), in, uint32(repeat))
	if err != nil {
		fail(out, outLen, err.Error())
		return C.DYNPLUG_ERR
	}
	if len(result) == 0 {
		return C.DYNPLUG_OK
	}

	*out = (*C.uint8_t)(C.CBytes(result))
	*outLen = C.uint64_t(len(result))
	return C.DYNPLUG_OK
}

// dynplugGoRelease returns a buffer produced by dynplugGoInvoke to the C
// allocator. The host calls it exactly once per buffer.
//
//export dynplugGoRelease
func dynplugGoRelease(ptr *C.uint8_t, _ C.uint64_t) {
	if ptr != nil {
		C.free(unsafe.Pointer(ptr))
	}
}

func fail(out **C.uint8_t, outLen *C.uint64_t, msg string) {
	*out = (*C.uint8_t)(C.CBytes([]byte(msg)))
	*outLen = C.uint64_t(len(msg))
}
