// Package ports defines the interfaces between the host runtime and the
// platform facilities it drives: the OS dynamic loader and the FFI binder
// that turns raw function-pointer addresses into callable Go functions.
// Implementations live under infrastructure; tests substitute fakes.
package ports
