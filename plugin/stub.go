package plugin

import "context"

// StubPlugin is a no-op Plugin implementation for tests and harnesses.
type StubPlugin struct{}

func (StubPlugin) Name() string {
	return "stub"
}

func (StubPlugin) Invoke(_ context.Context, input []byte, _ uint32) ([]byte, error) {
	return input, nil
}
