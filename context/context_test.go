// File: context/context_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mloscontext

import (
	"context"
	"testing"
	"time"
)

func newTestNamedContext(t *testing.T, create bool, dir string) *Context {
	t.Helper()
	cfg := DefaultConfig()
	cfg.SocketFolder = dir
	// Small enough to be quick but well past any fixed layout size.
	cfg.GlobalRegionSize = 64 * 1024
	cfg.ControlChannelSize = 4096
	cfg.FeedbackChannelSize = 4096
	cfg.SharedConfigMemorySize = 64 * 1024
	cfg.DictionaryElementCount = 64

	c, err := NewNamed(cfg, create)
	if err != nil {
		t.Fatalf("NewNamed(create=%v): %v", create, err)
	}
	return c
}

func TestNewNamedAttachIncrementsProcessCount(t *testing.T) {
	dir := t.TempDir()
	creator := newTestNamedContext(t, true, dir)
	defer creator.Close()

	if got := creator.counters.AttachedProcessCount(); got != 1 {
		t.Fatalf("attached_process_count after create = %d, want 1", got)
	}

	attacher := newTestNamedContext(t, false, dir)
	if got := attacher.counters.AttachedProcessCount(); got != 2 {
		t.Fatalf("attached_process_count after attach = %d, want 2", got)
	}

	if err := attacher.Close(); err != nil {
		t.Fatalf("attacher.Close: %v", err)
	}
	if got := creator.counters.AttachedProcessCount(); got != 1 {
		t.Fatalf("attached_process_count after detach = %d, want 1", got)
	}
}

func TestRegisterSettingsAssemblyIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	c := newTestNamedContext(t, true, dir)
	defer c.Close()

	first, err := c.RegisterSettingsAssembly("Widgets.SettingsRegistry", 100)
	if err != nil {
		t.Fatalf("first RegisterSettingsAssembly: %v", err)
	}

	// Drain the control channel so the second (idempotent) call leaves it
	// empty, proving no second request was ever written.
	res, err := c.Control.Read(context.Background())
	if err != nil {
		t.Fatalf("drain control channel: %v", err)
	}
	if res.Skipped {
		t.Fatalf("expected the registration request frame, got a skipped/link frame")
	}

	second, err := c.RegisterSettingsAssembly("Widgets.SettingsRegistry", 100)
	if err != nil {
		t.Fatalf("second RegisterSettingsAssembly: %v", err)
	}
	if second != first {
		t.Fatalf("second registration returned assembly index %d, want %d (idempotent)", second, first)
	}

	other, err := c.RegisterSettingsAssembly("Other.SettingsRegistry", 200)
	if err != nil {
		t.Fatalf("RegisterSettingsAssembly for a distinct name: %v", err)
	}
	if other == first {
		t.Fatalf("distinct file names must not collapse to the same assembly index")
	}
}

func TestTerminateControlChannelUnblocksReader(t *testing.T) {
	dir := t.TempDir()
	c := newTestNamedContext(t, true, dir)
	defer c.Close()

	done := make(chan error, 1)
	go func() {
		_, err := c.Control.Read(context.Background())
		done <- err
	}()

	c.TerminateControlChannel()

	select {
	case err := <-done:
		_ = err // either the sentinel frame or ErrAborted is acceptable
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not unblock after TerminateControlChannel")
	}
}
