// File: internal/sharedconfig/dictionary.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Open-addressing dictionary over a shared-config region: a fixed table of
// u32 arena offsets (ss3, ss4.3), linear-probed, CAS-published, never
// resized.

package sharedconfig

import (
	"encoding/binary"
	"sync/atomic"
	"unsafe"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/arena"
	"github.com/momentics/mlos-sub000/internal/region"
)

// Dictionary is a fixed-size, CAS-published open-addressing table of
// config-record offsets, backed by an Arena for record storage.
type Dictionary struct {
	buf         []byte
	tableOffset uint64
	tableSize   uint32
	arena       *arena.Arena
}

// New lays a table of tableSize u32 slots immediately after the region
// header, with the arena's addressable span starting right after the
// table (256-byte aligned, per Arena.New).
func New(buf []byte, tableSize uint32) *Dictionary {
	tableOffset := uint64(region.HeaderSize)
	arenaHeaderEnd := tableOffset + uint64(tableSize)*4
	return &Dictionary{
		buf:         buf,
		tableOffset: tableOffset,
		tableSize:   tableSize,
		arena:       arena.New(buf, arenaHeaderEnd),
	}
}

// Init zeroes the table and the arena control block. Call exactly once,
// by whichever process creates the shared-config region.
func (d *Dictionary) Init() {
	clear(d.buf[d.tableOffset : d.tableOffset+uint64(d.tableSize)*4])
	d.arena.Init()
}

func (d *Dictionary) slotPtr(idx uint32) *uint32 {
	off := d.tableOffset + uint64(idx)*4
	return (*uint32)(unsafe.Pointer(&d.buf[off]))
}

func (d *Dictionary) recordPayload(off uint64) []byte {
	return d.buf[off+recordHeaderSize:]
}

func (d *Dictionary) recordCodegenType(off uint64) uint32 {
	return binary.LittleEndian.Uint32(d.buf[off+4 : off+8])
}

func (d *Dictionary) writeRecordHeader(off uint64, configID, codegenTypeID uint32) {
	binary.LittleEndian.PutUint32(d.buf[off:off+4], configID)
	binary.LittleEndian.PutUint32(d.buf[off+4:off+8], codegenTypeID)
	clear(d.buf[off+8 : off+recordHeaderSize])
}

// CreateOrUpdate implements the probe described in ss4.3: it either
// publishes a new record at an empty slot, or rebinds cfg to whatever is
// already stored at a matching occupied slot. Returns the record's arena
// offset.
func (d *Dictionary) CreateOrUpdate(cfg Config) (uint64, error) {
	start := cfg.KeyHash() % uint64(d.tableSize)
	for i := uint32(0); i < d.tableSize; i++ {
		idx := uint32((start + uint64(i)) % uint64(d.tableSize))
		slot := d.slotPtr(idx)

		cur := atomic.LoadUint32(slot)
		if cur == 0 {
			payload := cfg.Marshal()
			recOff, err := d.arena.Allocate(recordHeaderSize + len(payload))
			if err != nil {
				return 0, err
			}
			d.writeRecordHeader(recOff, uint32(cfg.KeyHash()), cfg.CodegenTypeID())
			copy(d.recordPayload(recOff), payload)

			if atomic.CompareAndSwapUint32(slot, 0, uint32(recOff)) {
				return recOff, nil
			}
			// Lost the publish race: the arena allocation above is
			// abandoned (ss4.3 "acceptable in this ephemeral region").
			// Fall through and compare the winner's record in this slot.
			cur = atomic.LoadUint32(slot)
		}

		existingOff := uint64(cur)
		if d.recordCodegenType(existingOff) == cfg.CodegenTypeID() && cfg.MatchesStored(d.recordPayload(existingOff)) {
			if err := cfg.Unmarshal(d.recordPayload(existingOff)); err != nil {
				return 0, err
			}
			return existingOff, nil
		}
	}
	return 0, api.ErrOutOfMemory
}

// Lookup probes for cfg's key without allocating. On a match, it rebinds
// cfg from the stored record and returns its offset; api.ErrNotFound if
// the probe reaches an empty slot.
func (d *Dictionary) Lookup(cfg Config) (uint64, error) {
	start := cfg.KeyHash() % uint64(d.tableSize)
	for i := uint32(0); i < d.tableSize; i++ {
		idx := uint32((start + uint64(i)) % uint64(d.tableSize))
		cur := atomic.LoadUint32(d.slotPtr(idx))
		if cur == 0 {
			return 0, api.ErrNotFound
		}
		existingOff := uint64(cur)
		if d.recordCodegenType(existingOff) == cfg.CodegenTypeID() && cfg.MatchesStored(d.recordPayload(existingOff)) {
			if err := cfg.Unmarshal(d.recordPayload(existingOff)); err != nil {
				return 0, err
			}
			return existingOff, nil
		}
	}
	return 0, api.ErrNotFound
}
