// File: internal/channel/wakeup.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// FutexWakeup is the cross-process api.Wakeup realization: addressed by
// a word inside the channel_sync block both processes already have
// mapped, so named mode's "two wakeup primitives by name"
// fall out of the named global region itself rather than needing a
// separate named kernel object.

package channel

import (
	"context"
	"sync/atomic"

	"github.com/momentics/mlos-sub000/internal/futex"
)

// FutexWakeup implements api.Wakeup over one SyncBlock's futex_word.
type FutexWakeup struct {
	sync *SyncBlock
	seen uint32 // futex_word value when the last Wait returned (or at construction)
}

// NewFutexWakeup returns a Wakeup bound to sync's futex_word.
func NewFutexWakeup(sync *SyncBlock) *FutexWakeup {
	return &FutexWakeup{sync: sync, seen: sync.FutexWord()}
}

// Wait returns once futex_word differs from its value when the previous
// Wait returned, so a Signal issued before Wait is entered is not lost.
func (w *FutexWakeup) Wait(ctx context.Context) error {
	seen := atomic.LoadUint32(&w.seen)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if cur := w.sync.FutexWord(); cur != seen {
			atomic.StoreUint32(&w.seen, cur)
			return nil
		}
		if err := futex.Wait(ctx, w.sync.FutexAddr(), seen); err != nil {
			return err
		}
		// Spurious return or poll-interval timeout: caller's Read loop
		// re-checks ring state before calling Wait again, so returning
		// here would busy-loop; instead keep waiting on the same word.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}
}

func (w *FutexWakeup) Signal() {
	w.sync.IncFutexWord()
	futex.Wake(w.sync.FutexAddr(), 1)
}
