package abi

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// TestLedger_PropertyBased_ExactlyOnceRelease drives the ledger through
// random sequences of track/release/double-release and checks the protocol
// invariants: every tracked buffer is released exactly once, stale tokens
// never reach the plugin's release function, and the live count matches
// the model at every step.
func TestLedger_PropertyBased_ExactlyOnceRelease(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		l := NewLedger()

		var bufs []*trackedBuf
		var tokens []Token
		released := make(map[int]bool)
		liveCount := 0

		steps := rapid.IntRange(1, 50).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			canRelease := len(tokens) > 0
			op := rapid.IntRange(0, 2).Draw(t, "op")

			switch {
			case op == 0 || !canRelease: // track a new buffer
				size := rapid.IntRange(1, 64).Draw(t, "size")
				buf := &trackedBuf{data: make([]byte, size)}
				tok, err := l.Track(buf.ptr(), uint64(size), buf.releaseFn())
				assert.NoError(t, err)
				bufs = append(bufs, buf)
				tokens = append(tokens, tok)
				released[len(tokens)-1] = false
				liveCount++

			default: // release a random token, possibly one already spent
				idx := rapid.IntRange(0, len(tokens)-1).Draw(t, "idx")
				err := l.Release(tokens[idx])
				if released[idx] {
					assert.Error(t, err, "second release must be rejected")
				} else {
					assert.NoError(t, err)
					released[idx] = true
					liveCount--
				}
			}

			assert.Equal(t, liveCount, l.Live())
		}

		// Exactly-once: no buffer's release function ran more than once.
		for i, buf := range bufs {
			want := 0
			if released[i] {
				want = 1
			}
			assert.Equal(t, want, buf.released)
		}
		runtime.KeepAlive(bufs)
	})
}
