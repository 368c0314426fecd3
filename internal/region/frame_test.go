package region_test

import (
	"testing"

	"github.com/momentics/mlos-sub000/internal/region"
)

func TestFrameStateMachine(t *testing.T) {
	buf := make([]byte, 64)
	const off = 0

	if !region.IsEmpty(region.LoadLength(buf, off)) {
		t.Fatal("fresh frame should be empty")
	}

	if !region.CASLength(buf, off, 0, region.EncodeLength(32, true)) {
		t.Fatal("writer-owns CAS should succeed from empty")
	}
	l := region.LoadLength(buf, off)
	if !region.IsWriterOwned(l) {
		t.Fatalf("length %d should be writer-owned", l)
	}

	region.PutTypeFields(buf, off, 3, 0xdeadbeef)
	region.StoreLengthRelease(buf, off, int32(region.DecodeSize(l)))

	l = region.LoadLength(buf, off)
	if !region.IsReady(l) {
		t.Fatalf("length %d should be ready", l)
	}
	if region.TypeIndex(buf, off) != 3 {
		t.Fatal("type index lost across ready transition")
	}

	region.StoreLengthRelease(buf, off, -int32(region.DecodeSize(l)))
	l = region.LoadLength(buf, off)
	if !region.IsFreed(l) {
		t.Fatalf("length %d should be freed", l)
	}

	region.StoreLengthRelease(buf, off, 0)
	if !region.IsEmpty(region.LoadLength(buf, off)) {
		t.Fatal("frame should return to empty")
	}
}

func TestEncodeDecodeLength(t *testing.T) {
	l := region.EncodeLength(48, true)
	if region.DecodeSize(l) != 48 {
		t.Errorf("DecodeSize(%d) = %d, want 48", l, region.DecodeSize(l))
	}
	if !region.IsWriterOwned(l) {
		t.Error("expected writer-owned bit set")
	}
}
