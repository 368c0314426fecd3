// File: api/spin.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SpinPolicy is one of three small injectable capability objects
// (alongside Wakeup and InvalidFramePolicy) covering spin behavior,
// blocked-reader wakeup, and invalid-frame handling: how a writer backs
// off while spinning on a full ring.

package api

import (
	"runtime"
	"time"
)

// SpinPolicy controls backoff while a writer or free-advancer spins
// waiting for reader progress. attempt is the 0-based retry count within
// the current acquire_write_region call.
type SpinPolicy interface {
	Backoff(attempt int)
}

// BusySpinPolicy never yields; suitable for dedicated, pinned writer
// threads where context-switch latency must stay off the hot path.
type BusySpinPolicy struct{}

func (BusySpinPolicy) Backoff(attempt int) {}

// YieldSpinPolicy yields the processor for the first 16 attempts, then
// sleeps briefly, for writers sharing a core with other goroutines.
type YieldSpinPolicy struct{}

func (YieldSpinPolicy) Backoff(attempt int) {
	switch {
	case attempt < 16:
		runtime.Gosched()
	default:
		time.Sleep(time.Microsecond)
	}
}
