// File: internal/channel/sync.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// channel_sync: six atomic 32-bit counters living in the global
// region, one block per channel (control, feedback).

package channel

import (
	"sync/atomic"
	"unsafe"
)

// SyncBlockSize is sizeof(channel_sync) in bytes: the six logical ring
// position/count counters, plus a futex_word used only by the real
// (non-fake) Wakeup implementation to detect lost wakeups across
// processes (internal/futex), never touched by the channel state machine
// itself.
const SyncBlockSize = 28

const (
	offWritePosition        = 0
	offReadPosition         = 4
	offFreePosition         = 8
	offReaderInWaitingCount = 12
	offActiveReaderCount    = 16
	offTerminate            = 20
	offFutexWord            = 24
)

// SyncBlock is a view over one channel_sync block inside the global
// region's bytes.
type SyncBlock struct {
	buf    []byte
	offset uint64
}

// NewSyncBlock returns a view over the channel_sync block at offset
// within buf (the global region's bytes).
func NewSyncBlock(buf []byte, offset uint64) *SyncBlock {
	return &SyncBlock{buf: buf, offset: offset}
}

func (s *SyncBlock) ptr32(rel uint64) *uint32 {
	return (*uint32)(unsafe.Pointer(&s.buf[s.offset+rel]))
}

// Reset zeroes the block; the context package calls it when the creating
// process wires up a new global region.
func (s *SyncBlock) Reset() {
	clear(s.buf[s.offset : s.offset+SyncBlockSize])
}

func (s *SyncBlock) WritePosition() uint32 { return atomic.LoadUint32(s.ptr32(offWritePosition)) }
func (s *SyncBlock) ReadPosition() uint32  { return atomic.LoadUint32(s.ptr32(offReadPosition)) }
func (s *SyncBlock) FreePosition() uint32  { return atomic.LoadUint32(s.ptr32(offFreePosition)) }

func (s *SyncBlock) CASWritePosition(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(s.ptr32(offWritePosition), old, new)
}
func (s *SyncBlock) CASReadPosition(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(s.ptr32(offReadPosition), old, new)
}
func (s *SyncBlock) CASFreePosition(old, new uint32) bool {
	return atomic.CompareAndSwapUint32(s.ptr32(offFreePosition), old, new)
}
func (s *SyncBlock) StoreReadPosition(v uint32) {
	atomic.StoreUint32(s.ptr32(offReadPosition), v)
}
func (s *SyncBlock) StoreFreePosition(v uint32) {
	atomic.StoreUint32(s.ptr32(offFreePosition), v)
}
func (s *SyncBlock) StoreWritePosition(v uint32) {
	atomic.StoreUint32(s.ptr32(offWritePosition), v)
}

func (s *SyncBlock) ReaderInWaitingCount() uint32 {
	return atomic.LoadUint32(s.ptr32(offReaderInWaitingCount))
}
func (s *SyncBlock) IncReaderInWaiting() uint32 {
	return atomic.AddUint32(s.ptr32(offReaderInWaitingCount), 1)
}
func (s *SyncBlock) DecReaderInWaiting() uint32 {
	return atomic.AddUint32(s.ptr32(offReaderInWaitingCount), ^uint32(0))
}

func (s *SyncBlock) ActiveReaderCount() uint32 {
	return atomic.LoadUint32(s.ptr32(offActiveReaderCount))
}
func (s *SyncBlock) IncActiveReader() uint32 {
	return atomic.AddUint32(s.ptr32(offActiveReaderCount), 1)
}
func (s *SyncBlock) DecActiveReader() uint32 {
	return atomic.AddUint32(s.ptr32(offActiveReaderCount), ^uint32(0))
}

// FutexAddr exposes the futex_word's address for internal/futex's
// Wait/Wake calls. Only meaningful when buf is a real OS mapping shared
// across processes; fake.Wakeup never touches it.
func (s *SyncBlock) FutexAddr() *uint32 {
	return s.ptr32(offFutexWord)
}

func (s *SyncBlock) FutexWord() uint32 {
	return atomic.LoadUint32(s.ptr32(offFutexWord))
}

func (s *SyncBlock) IncFutexWord() uint32 {
	return atomic.AddUint32(s.ptr32(offFutexWord), 1)
}

func (s *SyncBlock) Terminate() bool {
	return atomic.LoadUint32(s.ptr32(offTerminate)) != 0
}
func (s *SyncBlock) SetTerminate() {
	atomic.StoreUint32(s.ptr32(offTerminate), 1)
}
func (s *SyncBlock) ClearTerminate() {
	atomic.StoreUint32(s.ptr32(offTerminate), 0)
}
