// File: api/region.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Region is the OS-backed shared-memory mapping every other component
// (arena, dictionary, channel) is laid out on top of.

package api

// RegionHeader mirrors the fixed on-disk/on-mapping header every named or
// anonymous region begins with, except channel regions (the whole mapping
// is ring buffer, no header — see internal/region).
type RegionHeader struct {
	Signature    uint32
	Size         uint32
	CodegenType  uint32
	RegionID     uint32
}

// Region is a live OS mapping: a contiguous byte slice plus the metadata
// needed to tear it down and, for named regions, to re-open it.
type Region interface {
	// Bytes returns the full mapped extent.
	Bytes() []byte
	// Size returns len(Bytes()).
	Size() int
	// Type reports which of the four region kinds this mapping holds.
	Type() RegionType
	// FD returns the underlying OS descriptor, for passing to a peer
	// process over internal/fdexchange.
	FD() uintptr
	// Close unmaps the region. It does not unlink a named region's
	// backing file; internal/region's CloseWithCleanup(true) does that.
	Close() error
}
