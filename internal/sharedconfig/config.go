// File: internal/sharedconfig/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package sharedconfig

// Config is implemented by the codegen layer's generated wrapper for one
// config type. The dictionary treats the serialized payload as opaque; key
// equality and rebinding are delegated here because only the generated
// type knows which fixed fields make up its key.
type Config interface {
	// CodegenTypeID identifies the concrete config layout.
	CodegenTypeID() uint32
	// KeyHash is FNV1a over this config's user-key bytes.
	KeyHash() uint64
	// Marshal serializes the fixed-then-variable payload that follows the
	// record header in the arena.
	Marshal() []byte
	// MatchesStored reports whether a stored record's payload has the same
	// key as this config (the per-type "compare key" predicate).
	MatchesStored(payload []byte) bool
	// Unmarshal rebinds this config's local fields from a stored record's
	// payload, used on both create_or_update's occupied-slot path and on
	// lookup.
	Unmarshal(payload []byte) error
}

// recordHeaderSize is sizeof({config_id, codegen_type_index, reserved[24]}).
const recordHeaderSize = 32
