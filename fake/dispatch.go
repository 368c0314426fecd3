// Package fake
// Author: momentics <momentics@gmail.com>
//
// In-memory DispatchTable for control-channel handler tests.

package fake

import (
	"sync"

	"github.com/momentics/mlos-sub000/api"
)

// DispatchTable is a fake implementation of api.DispatchTable.
type DispatchTable struct {
	mu      sync.RWMutex
	entries map[uint32]api.DispatchEntry
}

// NewDispatchTable creates an empty table.
func NewDispatchTable() *DispatchTable {
	return &DispatchTable{entries: make(map[uint32]api.DispatchEntry)}
}

func (t *DispatchTable) Register(entry api.DispatchEntry) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries[entry.CodegenTypeIndex] = entry
}

func (t *DispatchTable) Dispatch(typeIndex uint32, typeHash uint64, payload []byte) (bool, error) {
	t.mu.RLock()
	entry, ok := t.entries[typeIndex]
	t.mu.RUnlock()
	if !ok || entry.CodegenTypeHash != typeHash || entry.Handle == nil {
		return false, nil
	}
	return true, entry.Handle(payload)
}
