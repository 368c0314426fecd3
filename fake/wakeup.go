// Package fake
// Author: momentics <momentics@gmail.com>
//
// Channel-backed api.Wakeup for same-process tests. Coalesces repeated
// Signal calls the way a semaphore would: a reader that hasn't called
// Wait yet still only sees one pending wakeup, not one per Signal.

package fake

import (
	"context"

	"github.com/momentics/mlos-sub000/api"
)

// Wakeup is a fake implementation of api.Wakeup backed by a buffered channel.
type Wakeup struct {
	ch chan struct{}
}

var _ api.Wakeup = (*Wakeup)(nil)

// NewWakeup creates a ready-to-use Wakeup.
func NewWakeup() *Wakeup {
	return &Wakeup{ch: make(chan struct{}, 1)}
}

func (w *Wakeup) Wait(ctx context.Context) error {
	select {
	case <-w.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *Wakeup) Signal() {
	select {
	case w.ch <- struct{}{}:
	default:
	}
}
