package host

import (
	"bytes"
	"errors"
	"sync"
	"unsafe"

	"github.com/dynplug-dev/dynplug-sdk/domain/entities"
	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
	"github.com/dynplug-dev/dynplug-sdk/internal/abi"
)

// fakePlugin emulates a loaded shared library: a descriptor in real host
// memory and an allocator that tracks every buffer it hands out, so tests
// can assert the ownership protocol released each one exactly once.
type fakePlugin struct {
	name       []byte
	desc       *abi.RawDescriptor
	flags      uint32
	abiVersion uint32
	noEntry    bool

	// invokeImpl computes the payload and status for a call. Defaults to
	// repeat semantics with StatusOK.
	invokeImpl func(in []byte, repeat uint32) ([]byte, int32)

	// gate, when non-nil, blocks invocations until the channel is closed.
	gate chan struct{}

	mu          sync.Mutex
	allocs      map[uintptr][]byte
	releases    int
	badReleases int
	inCalls     int
	maxInCalls  int

	entryAddr   uintptr
	invokeAddr  uintptr
	releaseAddr uintptr
}

func newFakePlugin(name string, flags uint32) *fakePlugin {
	p := &fakePlugin{
		name:       []byte(name),
		flags:      flags,
		abiVersion: entities.ABIVersion,
		allocs:     make(map[uintptr][]byte),
	}
	p.invokeImpl = func(in []byte, repeat uint32) ([]byte, int32) {
		return bytes.Repeat(in, int(repeat)), entities.StatusOK
	}
	return p
}

func (p *fakePlugin) descriptorAddr() uintptr {
	if p.desc == nil {
		p.desc = &abi.RawDescriptor{
			ABIVersion: p.abiVersion,
			Flags:      p.flags,
			Name:       uintptr(unsafe.Pointer(&p.name[0])),
			NameLen:    uint64(len(p.name)),
			Invoke:     p.invokeAddr,
			Release:    p.releaseAddr,
		}
	}
	return uintptr(unsafe.Pointer(p.desc))
}

func (p *fakePlugin) alloc(data []byte) (uintptr, uint64) {
	if len(data) == 0 {
		return 0, 0
	}
	ptr := uintptr(unsafe.Pointer(&data[0]))
	p.mu.Lock()
	p.allocs[ptr] = data
	p.mu.Unlock()
	return ptr, uint64(len(data))
}

func (p *fakePlugin) invoke(input unsafe.Pointer, inputLen uint64, repeat uint32, out unsafe.Pointer, outLen unsafe.Pointer) int32 {
	p.mu.Lock()
	p.inCalls++
	if p.inCalls > p.maxInCalls {
		p.maxInCalls = p.inCalls
	}
	gate := p.gate
	p.mu.Unlock()

	if gate != nil {
		<-gate
	}

	var in []byte
	if input != nil && inputLen > 0 {
		in = make([]byte, inputLen)
		copy(in, unsafe.Slice((*byte)(input), inputLen))
	}

	payload, status := p.invokeImpl(in, repeat)
	ptr, n := p.alloc(payload)
	*(*uintptr)(out) = ptr
	*(*uint64)(outLen) = n

	p.mu.Lock()
	p.inCalls--
	p.mu.Unlock()
	return status
}

func (p *fakePlugin) release(ptr uintptr, _ uint64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.allocs[ptr]; !ok {
		p.badReleases++
		return
	}
	delete(p.allocs, ptr)
	p.releases++
}

func (p *fakePlugin) outstanding() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.allocs)
}

func (p *fakePlugin) releaseCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.releases
}

func (p *fakePlugin) maxConcurrency() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxInCalls
}

// fakeLoader implements ports.Opener and ports.Binder over a table of
// fake plugins keyed by path.
type fakeLoader struct {
	mu       sync.Mutex
	plugins  map[string]*fakePlugin
	libs     map[string]*fakeLibrary
	nextAddr uintptr

	entries  map[uintptr]*fakePlugin
	invokes  map[uintptr]*fakePlugin
	releases map[uintptr]*fakePlugin

	opens       int
	invokeBinds int
}

func newFakeLoader() *fakeLoader {
	return &fakeLoader{
		plugins:  make(map[string]*fakePlugin),
		libs:     make(map[string]*fakeLibrary),
		nextAddr: 0x1000,
		entries:  make(map[uintptr]*fakePlugin),
		invokes:  make(map[uintptr]*fakePlugin),
		releases: make(map[uintptr]*fakePlugin),
	}
}

// install registers a fake plugin at path and assigns its addresses.
func (l *fakeLoader) install(path string, p *fakePlugin) *fakePlugin {
	l.mu.Lock()
	defer l.mu.Unlock()
	p.entryAddr = l.nextAddr
	p.invokeAddr = l.nextAddr + 1
	p.releaseAddr = l.nextAddr + 2
	l.nextAddr += 0x10
	l.entries[p.entryAddr] = p
	l.invokes[p.invokeAddr] = p
	l.releases[p.releaseAddr] = p
	l.plugins[path] = p
	return p
}

func (l *fakeLoader) Open(path string) (ports.Library, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opens++
	p, ok := l.plugins[path]
	if !ok {
		return nil, errors.New("cannot open shared object file: no such file or directory")
	}
	lib := &fakeLibrary{plugin: p, noEntry: p.noEntry}
	l.libs[path] = lib
	return lib, nil
}

// lib returns the last library opened for path.
func (l *fakeLoader) lib(path string) *fakeLibrary {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.libs[path]
}

func (l *fakeLoader) invokeBindCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.invokeBinds
}

func (l *fakeLoader) openCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.opens
}

func (l *fakeLoader) Entry(addr uintptr) ports.EntryFunc {
	l.mu.Lock()
	p := l.entries[addr]
	l.mu.Unlock()
	return func() uintptr {
		if p == nil {
			return 0
		}
		return p.descriptorAddr()
	}
}

func (l *fakeLoader) Invoke(addr uintptr) ports.InvokeFunc {
	l.mu.Lock()
	l.invokeBinds++
	p := l.invokes[addr]
	l.mu.Unlock()
	return p.invoke
}

func (l *fakeLoader) Release(addr uintptr) ports.ReleaseFunc {
	l.mu.Lock()
	p := l.releases[addr]
	l.mu.Unlock()
	return p.release
}

// fakeLibrary resolves the fixed entry symbol for its plugin.
type fakeLibrary struct {
	plugin     *fakePlugin
	noEntry    bool
	mu         sync.Mutex
	closed     bool
	closeCount int
}

func (f *fakeLibrary) Lookup(symbol string) (uintptr, error) {
	if f.noEntry || symbol != entities.EntrySymbol {
		return 0, errors.New("undefined symbol: " + symbol)
	}
	return f.plugin.entryAddr, nil
}

func (f *fakeLibrary) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.closeCount++
	return nil
}

func (f *fakeLibrary) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
