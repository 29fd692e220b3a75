// Package dl adapts the operating system's dynamic-loading facility to the
// SDK's ports. It is the only package that talks to the FFI layer
// (ebitengine/purego); everything above it works with the Opener, Library
// and Binder interfaces and can be tested without loading real libraries.
package dl
