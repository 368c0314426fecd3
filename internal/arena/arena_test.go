package arena_test

import (
	"sync"
	"testing"

	"github.com/momentics/mlos-sub000/internal/arena"
)

func newTestArena(t *testing.T, size int) *arena.Arena {
	t.Helper()
	buf := make([]byte, size)
	a := arena.New(buf, 16)
	a.Init()
	return a
}

func TestAllocateLinksPrefixes(t *testing.T) {
	a := newTestArena(t, 4096)

	off1, err := a.Allocate(10)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a.Prev(off1) != 0 {
		t.Errorf("first allocation should have prev=0, got %d", a.Prev(off1))
	}

	off2, err := a.Allocate(20)
	if err != nil {
		t.Fatalf("Allocate: %v", err)
	}
	if a.Prev(off2) != off1 {
		t.Errorf("second allocation's prev = %d, want %d", a.Prev(off2), off1)
	}
	if a.Next(off1) != off2 {
		t.Errorf("first allocation's next = %d, want %d", a.Next(off1), off2)
	}
	if a.Next(off2) != 0 {
		t.Errorf("tail's next should be 0, got %d", a.Next(off2))
	}
}

func TestAllocateOutOfMemory(t *testing.T) {
	a := newTestArena(t, 512)
	for {
		if _, err := a.Allocate(32); err != nil {
			return
		}
	}
}

func TestAllocateConcurrentOffsetsDistinct(t *testing.T) {
	a := newTestArena(t, 1<<20)
	const n = 200
	offsets := make([]uint64, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			off, err := a.Allocate(8)
			if err != nil {
				t.Errorf("Allocate: %v", err)
				return
			}
			offsets[i] = off
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool, n)
	for _, off := range offsets {
		if seen[off] {
			t.Fatalf("duplicate offset %d handed out to two callers", off)
		}
		seen[off] = true
	}
}
