package entities

import (
	"github.com/go-playground/validator/v10"
)

// ABI constants mirrored from include/dynplug.h. The header is the source
// of truth; these must not drift from it.
const (
	// ABIVersion is the descriptor ABI version this host speaks.
	ABIVersion uint32 = 1

	// EntrySymbol is the fixed, versioned entry symbol every plugin exports.
	EntrySymbol = "dynplug_plugin_v1"

	// FlagReentrant declares that the plugin may be invoked concurrently
	// from multiple host threads.
	FlagReentrant uint32 = 0x1

	// StatusOK and StatusErr are the invoke() return codes.
	StatusOK  int32 = 0
	StatusErr int32 = 1
)

// validate is a package-level singleton; constructing a validator per call
// is expensive.
var validate = validator.New()

// Descriptor is the host-native view of a plugin's registration metadata.
// Name has been copied out of plugin memory at load time; the raw function
// pointer addresses stay inside the host runtime and are not exported here.
type Descriptor struct {
	// Name is the plugin's declared name.
	Name string `json:"name" validate:"required,max=255"`

	// ABIVersion is the version tag the descriptor carried. Always equals
	// ABIVersion for a descriptor the host accepted.
	ABIVersion uint32 `json:"abi_version"`

	// Reentrant reports whether the plugin declared itself safe for
	// concurrent invocation.
	Reentrant bool `json:"reentrant"`
}

// Validate checks the descriptor's host-visible fields. The ABI version is
// checked separately at load time, before any pointer is trusted.
func (d Descriptor) Validate() error {
	return validate.Struct(d)
}
