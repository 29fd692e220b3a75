// Package entities provides the host-native domain types of the SDK: the
// decoded plugin descriptor, invocation requests and results, and their
// execution metadata. Nothing in this package crosses the plugin boundary
// directly; the boundary-safe representations live in internal/abi and are
// frozen by include/dynplug.h.
package entities
