// +build linux

// Package pool
// Author: momentics <momentics@gmail.com>
//
// Linux-specific NUMA-aware buffer pool implementation. Backs scratch
// staging buffers a caller assembles a variable-length message into
// before copying it into a channel.Write fill callback (see
// cmd/mlos-demo's Label message), avoiding a plain allocation per send.

package pool

import (
	"sync"

	"github.com/momentics/mlos-sub000/api"
)

// linuxBufferPool is a sync.Pool-backed allocator for one NUMA node.
type linuxBufferPool struct {
	pools sync.Map // size class (int) -> *sync.Pool
	numaId int

	mu    sync.Mutex
	stats api.BufferPoolStats
}

func (bp *linuxBufferPool) classPool(size int) *sync.Pool {
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

func (bp *linuxBufferPool) Get(size int, numaPreferred int) api.Buffer {
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
		Pool:  &linuxReleaser{pool: bp, size: size},
		Class: size,
	}
}

func (bp *linuxBufferPool) Put(b api.Buffer) {
	p := bp.classPool(cap(b.Data))
	data := b.Data[:cap(b.Data)]
	p.Put(&data)

	bp.mu.Lock()
	bp.stats.TotalFree++
	bp.stats.InUse--
	bp.mu.Unlock()
}

func (bp *linuxBufferPool) Stats() api.BufferPoolStats {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.stats
}

// linuxReleaser lets api.Buffer.Release() reach back into the owning pool
// without the pool itself needing to satisfy api.Releaser on every Buffer.
type linuxReleaser struct {
	pool *linuxBufferPool
	size int
}

func (r *linuxReleaser) Put(b api.Buffer) {
	r.pool.Put(b)
}

// newBufferPool (Linux) creates a buffer pool for the specified NUMA node.
// TODO: hugepage-backed allocation for the largest size class.
func newBufferPool(numaNode int) api.BufferPool {
	return &linuxBufferPool{numaId: numaNode}
}
