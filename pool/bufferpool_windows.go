// +build windows

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Windows-specific NUMA-aware buffer pool implementation. Mirrors
// bufferpool_linux.go; Windows has no per-node affinity knob wired yet so
// numaId is bookkeeping only (see pool/numa_windows.go).

package pool

import (
	"sync"

	"github.com/momentics/mlos-sub000/api"
)

type windowsBufferPool struct {
	pools  sync.Map // size class (int) -> *sync.Pool
	numaId int

	mu    sync.Mutex
	stats api.BufferPoolStats
}

func (bp *windowsBufferPool) classPool(size int) *sync.Pool {
	if v, ok := bp.pools.Load(size); ok {
		return v.(*sync.Pool)
	}
	p := &sync.Pool{New: func() any {
		buf := make([]byte, size)
		return &buf
	}}
	actual, _ := bp.pools.LoadOrStore(size, p)
	return actual.(*sync.Pool)
}

func (bp *windowsBufferPool) Get(size int, numaPreferred int) api.Buffer {
	p := bp.classPool(size)
	buf := p.Get().(*[]byte)
	if cap(*buf) < size {
		*buf = make([]byte, size)
	}
	*buf = (*buf)[:size]

	bp.mu.Lock()
	bp.stats.TotalAlloc++
	bp.stats.InUse++
	bp.mu.Unlock()

	return api.Buffer{
		Data:  *buf,
		NUMA:  bp.numaId,
		Pool:  &windowsReleaser{pool: bp},
		Class: size,
	}
}

func (bp *windowsBufferPool) Put(b api.Buffer) {
	p := bp.classPool(cap(b.Data))
	data := b.Data[:cap(b.Data)]
	p.Put(&data)

	bp.mu.Lock()
	bp.stats.TotalFree++
	bp.stats.InUse--
	bp.mu.Unlock()
}

func (bp *windowsBufferPool) Stats() api.BufferPoolStats {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.stats
}

type windowsReleaser struct {
	pool *windowsBufferPool
}

func (r *windowsReleaser) Put(b api.Buffer) {
	r.pool.Put(b)
}

// newBufferPool (Windows) creates a buffer pool with bookkeeping NUMA affinity.
func newBufferPool(numaNode int) api.BufferPool {
	return &windowsBufferPool{numaId: numaNode}
}
