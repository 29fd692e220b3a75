package plugin

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetRegistry() {
	registerMu.Lock()
	defer registerMu.Unlock()
	registered = nil
	opts = settings{}
}

func TestRegister(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	Register(StubPlugin{}, WithReentrant())

	p, s := current()
	require.NotNil(t, p)
	assert.Equal(t, "stub", p.Name())
	assert.True(t, s.reentrant)
}

func TestRegister_SecondCallIgnored(t *testing.T) {
	resetRegistry()
	t.Cleanup(resetRegistry)

	first := StubPlugin{}
	Register(first)
	Register(StubPlugin{}, WithReentrant())

	_, s := current()
	assert.False(t, s.reentrant)
}

func TestStubPlugin_EchoesInput(t *testing.T) {
	out, err := StubPlugin{}.Invoke(context.Background(), []byte("hello"), 3)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), out)
}
