// File: internal/concurrency/affinity.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Thread pinning glue shared by pool NUMA selection and the affinity adapter.
// Topology detection is deliberately conservative: this package does not
// link against libnuma itself (cgo is used in affinity/affinity_linux.go
// and pool/numa_linux.go), it only tracks what the current goroutine
// believes its binding is.

package concurrency

import (
	"sync"

	"github.com/momentics/mlos-sub000/affinity"
)

var (
	mu          sync.Mutex
	pinnedCPU   = -1
	pinnedNUMA  = -1
)

// NUMANodes reports the number of NUMA nodes this process is willing to
// reason about. Without a libnuma probe we conservatively report 1 so
// callers fall back to node 0 rather than indexing out of range.
func NUMANodes() int {
	return 1
}

// CurrentNUMANodeID returns the NUMA node the calling goroutine was last
// pinned to, or -1 if unknown/unpinned.
func CurrentNUMANodeID() int {
	mu.Lock()
	defer mu.Unlock()
	return pinnedNUMA
}

// PinCurrentThread pins the current OS thread to cpu and records numaNode
// for later reporting via CurrentNUMANodeID.
func PinCurrentThread(numaNode, cpu int) error {
	if cpu >= 0 {
		if err := affinity.SetAffinity(cpu); err != nil {
			return err
		}
	}
	mu.Lock()
	pinnedCPU = cpu
	pinnedNUMA = numaNode
	mu.Unlock()
	return nil
}

// UnpinCurrentThread clears the recorded binding. The OS thread affinity
// mask itself is left as the platform's SetAffinity call last set it;
// there is no portable "remove affinity" primitive to invoke here.
func UnpinCurrentThread() error {
	mu.Lock()
	pinnedCPU = -1
	pinnedNUMA = -1
	mu.Unlock()
	return nil
}
