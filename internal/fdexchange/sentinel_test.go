// File: internal/fdexchange/sentinel_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fdexchange

import (
	"context"
	"testing"
	"time"
)

func TestSentinelWatcherFiresOnTouch(t *testing.T) {
	dir := t.TempDir()
	sw, err := NewSentinelWatcher(dir)
	if err != nil {
		t.Fatalf("NewSentinelWatcher: %v", err)
	}
	defer sw.Close()

	go func() {
		time.Sleep(20 * time.Millisecond)
		if err := TouchSentinel(dir); err != nil {
			t.Errorf("TouchSentinel: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := sw.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
}
