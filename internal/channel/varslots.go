// File: internal/channel/varslots.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Variable-length payload verification: the fixed part of a
// message carries {offset, size} for each variable field, with offset
// measured from the end of the fixed part, not from the descriptor's own
// position; the data regions they describe must chain without gaps or
// overlaps and must stay inside the frame.

package channel

import (
	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/region"
)

// VarSlot is one variable-length field descriptor as stored on the fixed
// part of a message: two u64s, offset relative to the end of the fixed
// part and size in bytes.
type VarSlot struct {
	Offset uint64
	Size   uint64
}

// VerifyVariableSlots checks that slots form a monotone, non-overlapping,
// within-frame sequence starting immediately after fixedSize, and that
// fixedSize plus every slot's data plus the frame header does not exceed
// frameLength. Codegen-generated handlers call this before trusting
// variable-length payload data.
func VerifyVariableSlots(frameLength, fixedSize uint32, slots []VarSlot) error {
	expected := uint64(0)
	for i, slot := range slots {
		if slot.Offset != expected {
			return api.NewError(api.ErrCodeInvalid, "channel: variable slot is not contiguous").
				WithContext("index", i).WithContext("offset", slot.Offset).WithContext("expected", expected)
		}
		expected += slot.Size
	}
	total := uint64(fixedSize) + expected + uint64(region.FrameHeaderSize)
	if total > uint64(frameLength) {
		return api.NewError(api.ErrCodeInvalid, "channel: variable payload exceeds frame length").
			WithContext("total", total).WithContext("frame_length", frameLength)
	}
	return nil
}
