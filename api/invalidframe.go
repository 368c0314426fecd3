// File: api/invalidframe.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// InvalidFramePolicy is the injectable retail-assert hook: what happens
// when a reader's variable-payload verification fails on an otherwise
// well-formed frame header.

package api

// InvalidFramePolicy decides how a channel reacts to a frame that failed
// verification. Internal builds should fail loud; a long-running
// inter-process agent should log and keep serving other frames.
type InvalidFramePolicy interface {
	// OnInvalidFrame is called with a description of what failed and the
	// region/offset it was found at. Returning a non-nil error aborts the
	// read that triggered it; returning nil skips the frame and continues.
	OnInvalidFrame(reason string, regionID uint64, offset uint32) error
}

// PanicPolicy implements InvalidFramePolicy for internal/debug builds:
// any invalid frame is a programming error, so it panics immediately.
type PanicPolicy struct{}

func (PanicPolicy) OnInvalidFrame(reason string, regionID uint64, offset uint32) error {
	panic("mlos: invalid frame: " + reason)
}

// LogAndSkipPolicy implements InvalidFramePolicy for inter-process agents:
// log the bad frame and let the caller decide whether to keep reading.
type LogAndSkipPolicy struct {
	Logf func(format string, args ...any)
}

func (p LogAndSkipPolicy) OnInvalidFrame(reason string, regionID uint64, offset uint32) error {
	if p.Logf != nil {
		p.Logf("mlos: invalid frame skipped: %s (region=%d offset=%d)", reason, regionID, offset)
	}
	return nil
}
