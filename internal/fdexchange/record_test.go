// File: internal/fdexchange/record_test.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fdexchange

import (
	"testing"

	"github.com/momentics/mlos-sub000/api"
)

func TestRecordRoundTrip(t *testing.T) {
	r := Record{RegionType: api.RegionControlChannel, RegionIndex: 1, RegionSize: 65536, ContainsFD: true}
	got := DecodeRecord(r.Encode())
	if got != r {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, r)
	}
}

func TestRecordWithoutFD(t *testing.T) {
	r := Record{RegionType: api.RegionGlobal, RegionSize: 4096, ContainsFD: false}
	got := DecodeRecord(r.Encode())
	if got.ContainsFD {
		t.Fatalf("ContainsFD should round-trip false")
	}
}
