// Package host provides the runtime that loads native shared-library
// plugins, validates their descriptors, invokes them across the C ABI
// boundary and enforces the ownership protocol for every buffer a plugin
// hands back.
//
// The Executor owns the table of loaded plugins. Loading resolves the
// fixed entry symbol, checks the descriptor's ABI version before binding
// any function pointer, and keeps the library resident until an explicit
// unload. Unloading is serialized against in-flight invocations: it waits
// for them to drain, or fails busy when the caller's context expires
// first; it never pulls a library out from under an active call.
package host
