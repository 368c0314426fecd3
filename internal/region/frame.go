// File: internal/region/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Frame header codec. A frame is 16 bytes of
// header followed by length-16 bytes of payload:
//
//	offset 0  : i32 length   (low bit = writer-owns, sign = reader-done)
//	offset 4  : u32 codegen_type_index (0 = link frame)
//	offset 8  : u64 codegen_type_hash
//	offset 16 : payload
//
// Only length needs atomic acquire/release semantics (ss5): type index and
// hash are written once by the writer before the release store of length,
// and are only read by a reader that has already observed that release,
// so a plain load is sequenced-after it by the happens-before edge length
// establishes.
package region

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"
)

// FrameHeaderSize is sizeof(frame_header) in bytes.
const FrameHeaderSize = 16

// LinkTypeIndex marks a frame as a link/skip frame.
const LinkTypeIndex = 0

func lengthPtr(buf []byte, offset uint32) *int32 {
	return (*int32)(unsafe.Pointer(&buf[offset]))
}

// LoadLength performs an acquire load of the length field at offset.
func LoadLength(buf []byte, offset uint32) int32 {
	return atomic.LoadInt32(lengthPtr(buf, offset))
}

// StoreLengthRelease stores length with release ordering: the "ready"
// transition (ss4.4.1 step 10) and the "free" transition (ss4.4.2 step 7)
// both use this, since both publish a state change other threads spin-wait
// to observe.
func StoreLengthRelease(buf []byte, offset uint32, length int32) {
	atomic.StoreInt32(lengthPtr(buf, offset), length)
}

// CASLength attempts to move length from old to new. The channel does not
// use it: writers publish with StoreLengthRelease and readers claim a
// frame by advancing the read position.
func CASLength(buf []byte, offset uint32, old, new int32) bool {
	return atomic.CompareAndSwapInt32(lengthPtr(buf, offset), old, new)
}

// PutTypeFields writes codegen_type_index and codegen_type_hash. Must be
// called strictly before StoreLengthRelease publishes the frame as ready.
func PutTypeFields(buf []byte, offset uint32, typeIndex uint32, typeHash uint64) {
	binary.LittleEndian.PutUint32(buf[offset+4:offset+8], typeIndex)
	binary.LittleEndian.PutUint64(buf[offset+8:offset+16], typeHash)
}

// TypeIndex reads codegen_type_index. Only valid after observing a
// positive (ready) length via LoadLength.
func TypeIndex(buf []byte, offset uint32) uint32 {
	return binary.LittleEndian.Uint32(buf[offset+4 : offset+8])
}

// TypeHash reads codegen_type_hash. Same precondition as TypeIndex.
func TypeHash(buf []byte, offset uint32) uint64 {
	return binary.LittleEndian.Uint64(buf[offset+8 : offset+16])
}

// ZeroPayload clears length-16 bytes of payload starting after the header
// at offset, per ss4.4.2 step 7's "writer requires a clean slate."
func ZeroPayload(buf []byte, offset uint32, length uint32) {
	start := offset + FrameHeaderSize
	end := offset + length
	if end > uint32(len(buf)) {
		end = uint32(len(buf))
	}
	if start >= end {
		return
	}
	clear(buf[start:end])
}

// EncodeLength folds a frame size and the writer-owns bit into the signed
// length field. size must already be 4-byte aligned.
func EncodeLength(size uint32, writerOwns bool) int32 {
	v := size
	if writerOwns {
		v |= 1
	}
	return int32(v)
}

// DecodeSize extracts the frame size in bytes from a length value,
// regardless of sign or the writer-owns bit.
func DecodeSize(length int32) uint32 {
	v := length
	if v < 0 {
		v = -v
	}
	return uint32(v) &^ 1
}

// IsWriterOwned reports whether length has the writer-owns (incomplete) bit set.
func IsWriterOwned(length int32) bool {
	return length&1 == 1
}

// IsReady reports whether length encodes a readable, fully-written frame.
func IsReady(length int32) bool {
	return length > 0 && length&1 == 0
}

// IsFreed reports whether length encodes a reader-done, reclaimable frame.
func IsFreed(length int32) bool {
	return length < 0
}

// IsEmpty reports whether length encodes an untouched slot.
func IsEmpty(length int32) bool {
	return length == 0
}
