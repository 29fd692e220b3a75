// Package plugin is the plugin-side SDK. A Go plugin implements the Plugin
// interface, calls Register from an init function or main, and builds with
// -buildmode=c-shared; the package exports the versioned entry symbol and
// translates between the C ABI and the Plugin interface, including the
// ownership protocol for result buffers.
package plugin
