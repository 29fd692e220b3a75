package entities

import (
	"time"
)

// InvocationRequest is one call into a plugin: an input string and a repeat
// count. Both are translated into boundary-safe form (pointer+length and a
// fixed-width integer) by the marshaler; the request itself never crosses
// the boundary.
type InvocationRequest struct {
	Input  string
	Repeat uint32
}

// InvocationResult is the decoded outcome of a successful invocation. By
// the time a caller holds one, the plugin-owned buffer behind it has been
// copied into host memory and released; Output shares nothing with the
// plugin's allocator.
type InvocationResult struct {
	Output   string
	Metadata *RunMetadata
}

// RunMetadata carries execution metadata for one invocation.
type RunMetadata struct {
	// PluginID identifies the loaded instance that served the call.
	PluginID string `json:"plugin_id,omitempty"`

	// StartTime is when the boundary call began.
	StartTime time.Time `json:"start_time"`

	// Duration is the time spent across the boundary, including decode and
	// release.
	Duration time.Duration `json:"duration_ns"`
}

// NewRunMetadata creates metadata for a call that started at start and
// finished at end.
func NewRunMetadata(start, end time.Time) *RunMetadata {
	return &RunMetadata{
		StartTime: start,
		Duration:  end.Sub(start),
	}
}

// WithPluginID returns the metadata with the instance ID set.
func (m *RunMetadata) WithPluginID(id string) *RunMetadata {
	m.PluginID = id
	return m
}
