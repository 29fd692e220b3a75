// Package plugintest provides a test harness for Dynplug plugin
// implementations, exercised in-process without building a shared object.
package plugintest

import (
	"context"
	"testing"

	"github.com/dynplug-dev/dynplug-sdk/plugin"
)

// TestCase defines one invocation of a plugin under test.
type TestCase struct {
	Name     string
	Input    string
	Repeat   uint32
	Validate func(t *testing.T, output []byte, err error)
}

// RunPluginTests runs a suite of invocations against a plugin.
func RunPluginTests(t *testing.T, p plugin.Plugin, tests []TestCase) {
	t.Helper()

	if p.Name() == "" {
		t.Fatal("plugin reports an empty name")
	}

	for _, tc := range tests {
		t.Run(tc.Name, func(t *testing.T) {
			output, err := p.Invoke(context.Background(), []byte(tc.Input), tc.Repeat)
			if tc.Validate != nil {
				tc.Validate(t, output, err)
			}
		})
	}
}

// AssertOutput asserts the invocation succeeded with exactly want.
func AssertOutput(want string) func(t *testing.T, output []byte, err error) {
	return func(t *testing.T, output []byte, err error) {
		t.Helper()
		if err != nil {
			t.Fatalf("expected success, got error: %v", err)
		}
		if string(output) != want {
			t.Errorf("output: expected %q, got %q", want, output)
		}
	}
}

// AssertError asserts the invocation failed.
func AssertError() func(t *testing.T, output []byte, err error) {
	return func(t *testing.T, output []byte, err error) {
		t.Helper()
		if err == nil {
			t.Errorf("expected error, got output %q", output)
		}
	}
}
