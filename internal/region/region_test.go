package region_test

import (
	"path/filepath"
	"testing"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/region"
)

func TestMapNewAnonymousHasHeader(t *testing.T) {
	m, err := region.MapNew(region.Options{
		Size:          4096,
		RegionType:    api.RegionGlobal,
		CodegenTypeID: 7,
		RegionID:      region.MakeRegionID(api.RegionGlobal, 0),
	})
	if err != nil {
		t.Fatalf("MapNew: %v", err)
	}
	defer m.Close()

	hdr := region.ReadHeader(m.Bytes())
	if hdr.Signature != api.RegionSignature {
		t.Errorf("signature = %#x, want %#x", hdr.Signature, api.RegionSignature)
	}
	if hdr.Size != 4096 {
		t.Errorf("size = %d, want 4096", hdr.Size)
	}
	if hdr.CodegenType != 7 {
		t.Errorf("codegen type = %d, want 7", hdr.CodegenType)
	}
}

func TestMapNewChannelRegionHasNoHeader(t *testing.T) {
	m, err := region.MapNew(region.Options{
		Size:       4096,
		RegionType: api.RegionControlChannel,
	})
	if err != nil {
		t.Fatalf("MapNew: %v", err)
	}
	defer m.Close()

	for i, b := range m.Bytes()[:region.HeaderSize] {
		if b != 0 {
			t.Fatalf("channel region byte %d = %d, want 0 (no header)", i, b)
		}
	}
}

func TestMapNewNamedThenExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global.mlos")

	created, err := region.MapNew(region.Options{
		Path:          path,
		Size:          8192,
		RegionType:    api.RegionGlobal,
		CodegenTypeID: 1,
	})
	if err != nil {
		t.Fatalf("MapNew: %v", err)
	}
	copy(created.Bytes()[region.HeaderSize:], []byte("hello"))

	attached, err := region.MapExisting(region.ExistOptions{
		Path:       path,
		Size:       8192,
		RegionType: api.RegionGlobal,
	})
	if err != nil {
		t.Fatalf("MapExisting: %v", err)
	}
	defer attached.CloseWithCleanup(true)
	defer created.Close()

	if string(attached.Bytes()[region.HeaderSize:region.HeaderSize+5]) != "hello" {
		t.Errorf("attached mapping does not observe writes through the named file")
	}
}

func TestMapExistingSizeMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "global.mlos")

	created, err := region.MapNew(region.Options{Path: path, Size: 4096, RegionType: api.RegionGlobal})
	if err != nil {
		t.Fatalf("MapNew: %v", err)
	}
	defer created.CloseWithCleanup(true)

	_, err = region.MapExisting(region.ExistOptions{Path: path, Size: 8192, RegionType: api.RegionGlobal})
	if err == nil {
		t.Fatal("expected size mismatch error")
	}
}

func TestRegionIDRoundTrip(t *testing.T) {
	id := region.MakeRegionID(api.RegionFeedbackChannel, 5)
	rt, idx := region.SplitRegionID(id)
	if rt != api.RegionFeedbackChannel || idx != 5 {
		t.Errorf("got (%v, %d), want (%v, 5)", rt, idx, api.RegionFeedbackChannel)
	}
}
