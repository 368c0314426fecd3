// File: internal/arena/arena.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bump allocator over [start, end) of a host region. The free
// cursor and the tail of the allocation list are themselves small atomic
// fields embedded at start, so concurrent callers across processes never
// corrupt each other's slot even though no caller-visible lock exists —
// only the dictionary (internal/sharedconfig) calls Allocate, and it alone
// is responsible for publishing (or abandoning) what it gets back.
package arena

import (
	"sync/atomic"
	"unsafe"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/region"
)

// AllocPrefixSize is sizeof({prev_offset, next_offset}), written
// immediately before every allocation's returned offset.
const AllocPrefixSize = 16

// controlSize is the bump-cursor control block's own footprint, placed at
// start before the first real allocation.
const controlSize = 16

// Arena is a bump allocator embedded in a region's byte slice.
type Arena struct {
	buf   []byte
	start uint64
	end   uint64
}

// New constructs an Arena view over buf's [align256(headerSize), len(buf))
// span. It does not touch memory; call Init on first creation or Attach
// when mapping an existing region.
func New(buf []byte, headerSize uint64) *Arena {
	start := region.Align256(headerSize)
	return &Arena{buf: buf, start: start, end: uint64(len(buf))}
}

func (a *Arena) freeOffsetPtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&a.buf[a.start]))
}

func (a *Arena) lastAllocPtr() *uint64 {
	return (*uint64)(unsafe.Pointer(&a.buf[a.start+8]))
}

// Init zeroes the control block and sets the free cursor to the first
// 64-byte-aligned offset past it. Call exactly once, by whichever process
// creates the host region.
func (a *Arena) Init() {
	firstSlot := region.Align64(a.start + controlSize)
	atomic.StoreUint64(a.freeOffsetPtr(), firstSlot)
	atomic.StoreUint64(a.lastAllocPtr(), 0)
}

// FreeOffset returns the next offset Allocate would hand out, for tests
// and diagnostics.
func (a *Arena) FreeOffset() uint64 {
	return atomic.LoadUint64(a.freeOffsetPtr())
}

// Allocate reserves size bytes, returning the offset (relative to the
// region base) of the payload — past the {prev,next} prefix the allocator
// writes ahead of it. Returns ErrOutOfMemory if the bumped cursor would
// cross end.
func (a *Arena) Allocate(size int) (uint64, error) {
	if size < 0 {
		return 0, api.NewError(api.ErrCodeInvalid, "arena: negative size")
	}
	slotSize := region.Align64(uint64(AllocPrefixSize + size))

	var prefixOffset uint64
	for {
		cur := atomic.LoadUint64(a.freeOffsetPtr())
		next := cur + slotSize
		if next > a.end {
			return 0, api.ErrOutOfMemory
		}
		if atomic.CompareAndSwapUint64(a.freeOffsetPtr(), cur, next) {
			prefixOffset = cur
			break
		}
	}

	dataOffset := prefixOffset + AllocPrefixSize
	a.putPrefix(prefixOffset, 0, 0)

	// Swap ourselves in as the new tail, then patch the old tail's next.
	var prevTail uint64
	for {
		prevTail = atomic.LoadUint64(a.lastAllocPtr())
		if atomic.CompareAndSwapUint64(a.lastAllocPtr(), prevTail, dataOffset) {
			break
		}
	}
	a.putPrefix(prefixOffset, prevTail, 0)
	if prevTail != 0 {
		a.setNext(prevTail, dataOffset)
	}

	return dataOffset, nil
}

func (a *Arena) putPrefix(prefixOffset, prev, next uint64) {
	p := (*uint64)(unsafe.Pointer(&a.buf[prefixOffset]))
	n := (*uint64)(unsafe.Pointer(&a.buf[prefixOffset+8]))
	atomic.StoreUint64(p, prev)
	atomic.StoreUint64(n, next)
}

// setNext patches the next field of the allocation whose payload begins
// at dataOffset.
func (a *Arena) setNext(dataOffset, next uint64) {
	n := (*uint64)(unsafe.Pointer(&a.buf[dataOffset-AllocPrefixSize+8]))
	atomic.StoreUint64(n, next)
}

// Prev returns the {prev_offset} recorded ahead of the allocation whose
// payload begins at dataOffset; 0 if it was the first allocation.
func (a *Arena) Prev(dataOffset uint64) uint64 {
	p := (*uint64)(unsafe.Pointer(&a.buf[dataOffset-AllocPrefixSize]))
	return atomic.LoadUint64(p)
}

// Next returns the {next_offset} recorded ahead of the allocation whose
// payload begins at dataOffset; 0 if it is currently the tail.
func (a *Arena) Next(dataOffset uint64) uint64 {
	n := (*uint64)(unsafe.Pointer(&a.buf[dataOffset-AllocPrefixSize+8]))
	return atomic.LoadUint64(n)
}

// Payload returns a byte slice view of the n bytes at dataOffset.
func (a *Arena) Payload(dataOffset uint64, n int) []byte {
	return a.buf[dataOffset : dataOffset+uint64(n)]
}
