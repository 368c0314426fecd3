package sharedconfig_test

import (
	"bytes"
	"sync"
	"testing"

	"github.com/momentics/mlos-sub000/internal/sharedconfig"
)

const testTypeID = 42

// testConfig is a minimal Config: key is the first 8 bytes of payload,
// value runs from there to the first zero byte.
type testConfig struct {
	key   string
	value string
}

func (c *testConfig) CodegenTypeID() uint32 { return testTypeID }
func (c *testConfig) KeyHash() uint64       { return sharedconfig.FNV1a([]byte(c.key)) }
func (c *testConfig) Marshal() []byte {
	buf := make([]byte, 8+len(c.value))
	copy(buf, []byte(padKey(c.key)))
	copy(buf[8:], c.value)
	return buf
}
func (c *testConfig) MatchesStored(payload []byte) bool {
	return len(payload) >= 8 && bytes.Equal(payload[:8], []byte(padKey(c.key)))
}
func (c *testConfig) Unmarshal(payload []byte) error {
	v := payload[8:]
	if i := bytes.IndexByte(v, 0); i >= 0 {
		v = v[:i]
	}
	c.value = string(v)
	return nil
}

func padKey(k string) string {
	b := make([]byte, 8)
	copy(b, k)
	return string(b)
}

func newTestDictionary(t *testing.T, regionSize int, tableSize uint32) *sharedconfig.Dictionary {
	t.Helper()
	buf := make([]byte, regionSize)
	d := sharedconfig.New(buf, tableSize)
	d.Init()
	return d
}

func TestCreateOrUpdateThenLookup(t *testing.T) {
	d := newTestDictionary(t, 1<<16, 64)

	cfg := &testConfig{key: "alpha", value: "first-value"}
	off, err := d.CreateOrUpdate(cfg)
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}

	lookupCfg := &testConfig{key: "alpha"}
	gotOff, err := d.Lookup(lookupCfg)
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if gotOff != off {
		t.Errorf("Lookup offset = %d, want %d", gotOff, off)
	}
	if lookupCfg.value != "first-value" {
		t.Errorf("Lookup value = %q, want %q", lookupCfg.value, "first-value")
	}
}

func TestCreateOrUpdateRebindsOnExistingKey(t *testing.T) {
	d := newTestDictionary(t, 1<<16, 64)

	first := &testConfig{key: "beta", value: "v1"}
	off1, err := d.CreateOrUpdate(first)
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}

	second := &testConfig{key: "beta", value: "ignored-since-already-present"}
	off2, err := d.CreateOrUpdate(second)
	if err != nil {
		t.Fatalf("CreateOrUpdate: %v", err)
	}
	if off1 != off2 {
		t.Fatalf("second insert under same key produced a new record: %d != %d", off1, off2)
	}
	if second.value != "v1" {
		t.Errorf("second config should rebind to stored value, got %q", second.value)
	}
}

func TestLookupMissReturnsNotFound(t *testing.T) {
	d := newTestDictionary(t, 1<<16, 64)
	_, err := d.Lookup(&testConfig{key: "nope"})
	if err == nil {
		t.Fatal("expected not-found error")
	}
}

func TestConcurrentInsertRace(t *testing.T) {
	d := newTestDictionary(t, 1<<20, 8)

	var wg sync.WaitGroup
	keys := []string{"A", "B", "C", "D"}
	for _, k := range keys {
		wg.Add(1)
		go func(k string) {
			defer wg.Done()
			cfg := &testConfig{key: k, value: "v-" + k}
			if _, err := d.CreateOrUpdate(cfg); err != nil {
				t.Errorf("CreateOrUpdate(%s): %v", k, err)
			}
		}(k)
	}
	wg.Wait()

	for _, k := range keys {
		lookupCfg := &testConfig{key: k}
		if _, err := d.Lookup(lookupCfg); err != nil {
			t.Fatalf("Lookup(%s): %v", k, err)
		}
		if lookupCfg.value != "v-"+k {
			t.Errorf("Lookup(%s).value = %q, want %q", k, lookupCfg.value, "v-"+k)
		}
	}
}
