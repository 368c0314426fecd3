// File: internal/region/header.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Fixed region header layout: every region except a
// channel region begins with these 16 bytes, little-endian.

package region

import (
	"encoding/binary"

	"github.com/momentics/mlos-sub000/api"
)

// HeaderSize is sizeof(region_header) in bytes.
const HeaderSize = 16

// PutHeader writes a region header into the first HeaderSize bytes of buf.
func PutHeader(buf []byte, size uint32, codegenTypeID uint32, regionID uint64) {
	binary.LittleEndian.PutUint32(buf[0:4], api.RegionSignature)
	binary.LittleEndian.PutUint32(buf[4:8], size)
	binary.LittleEndian.PutUint32(buf[8:12], codegenTypeID)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(regionID))
}

// Header is the decoded form of the first HeaderSize bytes of a region.
type Header struct {
	Signature   uint32
	Size        uint32
	CodegenType uint32
	RegionID    uint32
}

// ReadHeader decodes the header at the start of buf.
func ReadHeader(buf []byte) Header {
	return Header{
		Signature:   binary.LittleEndian.Uint32(buf[0:4]),
		Size:        binary.LittleEndian.Uint32(buf[4:8]),
		CodegenType: binary.LittleEndian.Uint32(buf[8:12]),
		RegionID:    binary.LittleEndian.Uint32(buf[12:16]),
	}
}

// Verify checks the header against the observed mapping size, per
// map_existing's contract in : signature and size must match
// exactly.
func (h Header) Verify(observedSize int) error {
	if h.Signature != api.RegionSignature {
		return api.NewError(api.ErrCodeInvalid, "region: signature mismatch").
			WithContext("got", h.Signature).WithContext("want", api.RegionSignature)
	}
	if uint64(h.Size) != uint64(observedSize) {
		return api.NewError(api.ErrCodeInvalid, "region: size mismatch").
			WithContext("header_size", h.Size).WithContext("mapped_size", observedSize)
	}
	return nil
}

// MakeRegionID packs a region type (4 bits) and index (28 bits) the way
// the global region's id fields are encoded on the wire.
func MakeRegionID(regionType api.RegionType, index uint32) uint64 {
	return uint64(regionType&0xF)<<28 | uint64(index&0x0FFFFFFF)
}

// SplitRegionID is the inverse of MakeRegionID.
func SplitRegionID(id uint64) (regionType api.RegionType, index uint32) {
	return api.RegionType(id >> 28 & 0xF), uint32(id & 0x0FFFFFFF)
}
