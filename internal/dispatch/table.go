// File: internal/dispatch/table.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Table is the production api.DispatchTable: an RWMutex-guarded map from
// codegen type index to handler, matching fake.DispatchTable's shape but
// owned by the real engine rather than tests.
package dispatch

import (
	"sync"

	"github.com/momentics/mlos-sub000/api"
)

// Table is a concurrency-safe api.DispatchTable.
type Table struct {
	mu      sync.RWMutex
	entries map[uint32]api.DispatchEntry
}

var _ api.DispatchTable = (*Table)(nil)

// New creates an empty dispatch table.
func New() *Table {
	return &Table{entries: make(map[uint32]api.DispatchEntry)}
}

func (t *Table) Register(entry api.DispatchEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[entry.CodegenTypeIndex] = entry
}

func (t *Table) Dispatch(typeIndex uint32, typeHash uint64, payload []byte) (bool, error) {
	t.mu.RLock()
	entry, ok := t.entries[typeIndex]
	t.mu.RUnlock()
	if !ok || entry.CodegenTypeHash != typeHash || entry.Handle == nil {
		return false, nil
	}
	return true, entry.Handle(payload)
}
