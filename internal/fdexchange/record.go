// File: internal/fdexchange/record.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fdexchange

import (
	"encoding/binary"

	"github.com/momentics/mlos-sub000/api"
)

// RecordSize is sizeof(the wire record) in bytes: region_type (u32),
// region_index (u32), region_size (u64), contains_fd (u8), padded to 24
//.
const RecordSize = 24

// Record is the fixed-size iovec payload exchanged alongside an
// optional SCM_RIGHTS-carried descriptor.
type Record struct {
	RegionType  api.RegionType
	RegionIndex uint32
	RegionSize  uint64
	ContainsFD  bool
}

// Encode serializes r into a RecordSize-byte buffer.
func (r Record) Encode() []byte {
	buf := make([]byte, RecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(r.RegionType))
	binary.LittleEndian.PutUint32(buf[4:8], r.RegionIndex)
	binary.LittleEndian.PutUint64(buf[8:16], r.RegionSize)
	if r.ContainsFD {
		buf[16] = 1
	}
	return buf
}

// DecodeRecord parses a RecordSize-byte buffer back into a Record.
func DecodeRecord(buf []byte) Record {
	return Record{
		RegionType:  api.RegionType(binary.LittleEndian.Uint32(buf[0:4])),
		RegionIndex: binary.LittleEndian.Uint32(buf[4:8]),
		RegionSize:  binary.LittleEndian.Uint64(buf[8:16]),
		ContainsFD:  buf[16] != 0,
	}
}
