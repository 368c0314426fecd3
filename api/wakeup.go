// File: api/wakeup.go
// Package api
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wakeup decouples the ring channel's blocked-reader notification from any
// one OS primitive: same-process tests use a channel-backed Wakeup, cross-
// process readers use a futex-word-backed one (channel.FutexWakeup).

package api

import "context"

// Wakeup lets a blocked reader park without spinning, and a writer notify
// it without knowing how many readers are waiting or where they live.
type Wakeup interface {
	// Wait blocks until Signal is called at least once since the last
	// Wait returned, or ctx is done.
	Wait(ctx context.Context) error
	// Signal wakes at most one parked Wait call; implementations must
	// not block or fail if nobody is currently waiting.
	Signal()
}
