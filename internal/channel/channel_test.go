// File: internal/channel/channel_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package channel

import (
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/fake"
)

const testTypeIndex = 7
const testTypeHash = 0xC0FFEE

func newTestChannel(t *testing.T, ringSize int) (*Channel, *fake.DispatchTable) {
	t.Helper()
	ring := make([]byte, ringSize)
	syncBuf := make([]byte, SyncBlockSize)
	sb := NewSyncBlock(syncBuf, 0)
	dispatch := fake.NewDispatchTable()
	ch, err := New(ring, sb, fake.NewWakeup(), api.YieldSpinPolicy{}, api.LogAndSkipPolicy{Logf: t.Logf}, dispatch)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := ch.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return ch, dispatch
}

func writeUint64(payload []byte, v uint64) {
	binary.LittleEndian.PutUint64(payload, v)
}

func TestWriteReadRoundTrip(t *testing.T) {
	ch, dispatch := newTestChannel(t, 256)

	var got uint64
	dispatch.Register(api.DispatchEntry{
		CodegenTypeIndex: testTypeIndex,
		CodegenTypeHash:  testTypeHash,
		Handle: func(payload []byte) error {
			got = binary.LittleEndian.Uint64(payload)
			return nil
		},
	})

	ctx := context.Background()
	if err := ch.Write(ctx, testTypeIndex, testTypeHash, 8, func(p []byte) { writeUint64(p, 42) }); err != nil {
		t.Fatalf("Write: %v", err)
	}

	res, err := ch.Read(ctx)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if res.Skipped {
		t.Fatalf("expected a delivered frame, got skipped")
	}
	if got != 42 {
		t.Fatalf("got payload %d, want 42", got)
	}
}

func TestWriteWrapsWithLinkFrame(t *testing.T) {
	// A small ring forces write() to wrap and insert a link frame.
	ch, dispatch := newTestChannel(t, 64)

	delivered := 0
	dispatch.Register(api.DispatchEntry{
		CodegenTypeIndex: testTypeIndex,
		CodegenTypeHash:  testTypeHash,
		Handle:           func(payload []byte) error { delivered++; return nil },
	})

	ctx := context.Background()
	// Each frame: 16-byte header + 8-byte payload = 24, aligned to 24.
	// Three writes exceed 64 bytes and force at least one wrap. Each frame
	// is read back before the next write, since the ring's margin cannot
	// hold all three at once.
	for i := 0; i < 3; i++ {
		if err := ch.Write(ctx, testTypeIndex, testTypeHash, 8, func(p []byte) { writeUint64(p, uint64(i)) }); err != nil {
			t.Fatalf("Write %d: %v", i, err)
		}
		for delivered < i+1 {
			res, err := ch.Read(ctx)
			if err != nil {
				t.Fatalf("Read: %v", err)
			}
			_ = res // link frames surface as Skipped and are simply consumed
		}
	}
}

func TestInitializeClearsPartialWrite(t *testing.T) {
	ring := make([]byte, 256)
	syncBuf := make([]byte, SyncBlockSize)
	sb := NewSyncBlock(syncBuf, 0)
	dispatch := fake.NewDispatchTable()

	ch, err := New(ring, sb, fake.NewWakeup(), api.BusySpinPolicy{}, nil, dispatch)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Simulate a crash mid-write: writer-owns bit set, write_position
	// already advanced past the frame, as if the writer died before the
	// final release store.
	ctx := context.Background()
	_ = ctx
	sb.StoreWritePosition(24)
	sb.StoreFreePosition(0)
	sb.StoreReadPosition(0)
	// length = 24 | 1 (writer-owns), never cleared.
	ring[0] = 24 | 1

	if err := ch.Initialize(); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if sb.ReadPosition() != sb.FreePosition() {
		t.Fatalf("read_position %d != free_position %d after recovery", sb.ReadPosition(), sb.FreePosition())
	}
	length := int32(ring[0]) | int32(ring[1])<<8 | int32(ring[2])<<16 | int32(ring[3])<<24
	if length != 24 {
		t.Fatalf("recovered frame length = %d, want 24 (writer-owns bit cleared, marked ready)", length)
	}
}

func TestTerminateWakesBlockedReader(t *testing.T) {
	ch, _ := newTestChannel(t, 256)

	done := make(chan error, 1)
	go func() {
		_, err := ch.Read(context.Background())
		done <- err
	}()

	time.Sleep(10 * time.Millisecond)
	ch.Terminate()

	select {
	case err := <-done:
		if err != api.ErrAborted {
			t.Fatalf("Read returned %v, want api.ErrAborted", err)
		}
	case <-time.After(time.Second):
		t.Fatal("reader did not wake up after Terminate")
	}
}

func TestConcurrentWritersAndReaders(t *testing.T) {
	ch, dispatch := newTestChannel(t, 4096)

	const n = 200
	var mu sync.Mutex
	received := make(map[uint64]bool, n)

	dispatch.Register(api.DispatchEntry{
		CodegenTypeIndex: testTypeIndex,
		CodegenTypeHash:  testTypeHash,
		Handle: func(payload []byte) error {
			mu.Lock()
			received[binary.LittleEndian.Uint64(payload)] = true
			mu.Unlock()
			return nil
		},
	})

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(v uint64) {
			defer wg.Done()
			if err := ch.Write(ctx, testTypeIndex, testTypeHash, 8, func(p []byte) { writeUint64(p, v) }); err != nil {
				t.Errorf("Write: %v", err)
			}
		}(uint64(i))
	}

	readCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	for {
		mu.Lock()
		count := len(received)
		mu.Unlock()
		if count >= n {
			break
		}
		if _, err := ch.Read(readCtx); err != nil {
			t.Fatalf("Read: %v", err)
		}
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(received) != n {
		t.Fatalf("received %d distinct messages, want %d", len(received), n)
	}
}
