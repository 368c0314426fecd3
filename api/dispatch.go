// File: api/dispatch.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// DispatchTable routes a control-channel message to the handler registered
// for its codegen type, the same role protocol/ once gave a WS opcode
// table but keyed by codegen_type_index instead of a frame opcode byte.

package api

// DispatchEntry is one registered (type, handler) pair.
type DispatchEntry struct {
	CodegenTypeIndex uint32
	CodegenTypeHash  uint64
	Handle           func(payload []byte) error
}

// DispatchTable looks up and invokes the handler for an incoming frame's
// codegen type. Unregistered types are not an error: callers should treat
// them as "no listener yet" and move on.
type DispatchTable interface {
	// Register installs or replaces the handler for a codegen type.
	Register(entry DispatchEntry)
	// Dispatch invokes the handler registered for typeIndex/typeHash, if
	// any, returning (handled, error).
	Dispatch(typeIndex uint32, typeHash uint64, payload []byte) (bool, error)
}
