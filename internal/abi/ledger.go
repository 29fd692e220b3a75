package abi

import (
	"fmt"
	"sync"

	"github.com/dynplug-dev/dynplug-sdk/domain/ports"
	dperrors "github.com/dynplug-dev/dynplug-sdk/errors"
)

// Token is a capability for one tracked plugin-owned buffer. The
// generation makes a token stale once the buffer is released, even if the
// plugin's allocator later hands out the same address again.
type Token struct {
	ptr uintptr
	gen uint64
}

type ledgerEntry struct {
	gen     uint64
	length  uint64
	release ports.ReleaseFunc
}

// Ledger tracks every buffer a plugin has handed to the host and not yet
// had returned. It enforces the lifecycle
//
//	Track -> Bytes (any number of times) -> Release (exactly once)
//
// and reports any deviation as an ownership violation instead of letting
// it corrupt memory silently.
type Ledger struct {
	mu      sync.Mutex
	nextGen uint64
	live    map[uintptr]*ledgerEntry
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{live: make(map[uintptr]*ledgerEntry)}
}

// Track registers a plugin-owned buffer and the release function of the
// allocator that produced it. ptr must be non-null. A plugin handing out an
// address that is already tracked has double-allocated: the collision is an
// ownership violation, and the existing entry is left intact.
func (l *Ledger) Track(ptr uintptr, length uint64, release ports.ReleaseFunc) (Token, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.live[ptr]; ok {
		return Token{}, dperrors.OwnershipError(fmt.Sprintf("buffer 0x%x handed out twice without release", ptr))
	}

	l.nextGen++
	l.live[ptr] = &ledgerEntry{gen: l.nextGen, length: length, release: release}
	return Token{ptr: ptr, gen: l.nextGen}, nil
}

// Bytes copies the tracked buffer into host memory. Using a stale token is
// an ownership violation: the buffer may already belong to someone else.
func (l *Ledger) Bytes(tok Token) ([]byte, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.live[tok.ptr]
	if !ok || entry.gen != tok.gen {
		return nil, dperrors.OwnershipError(fmt.Sprintf("access to released buffer 0x%x", tok.ptr))
	}
	return CopyBytes(tok.ptr, entry.length), nil
}

// Release returns the buffer to the plugin's allocator. A second release
// of the same token, or a release of a token the ledger never issued, is
// an ownership violation and the plugin's release function is not called.
func (l *Ledger) Release(tok Token) error {
	l.mu.Lock()
	entry, ok := l.live[tok.ptr]
	if !ok || entry.gen != tok.gen {
		l.mu.Unlock()
		return dperrors.OwnershipError(fmt.Sprintf("double release of buffer 0x%x", tok.ptr))
	}
	delete(l.live, tok.ptr)
	l.mu.Unlock()

	// Outside the lock: the release function crosses back into the plugin.
	entry.release(tok.ptr, entry.length)
	return nil
}

// Live returns the number of buffers currently tracked.
func (l *Ledger) Live() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.live)
}

// ReleaseAll returns every tracked buffer to its allocator. Used during
// shutdown so abandoned buffers do not leak past the plugin's lifetime.
func (l *Ledger) ReleaseAll() {
	l.mu.Lock()
	entries := make(map[uintptr]*ledgerEntry, len(l.live))
	for ptr, e := range l.live {
		entries[ptr] = e
	}
	l.live = make(map[uintptr]*ledgerEntry)
	l.mu.Unlock()

	for ptr, e := range entries {
		e.release(ptr, e.length)
	}
}
