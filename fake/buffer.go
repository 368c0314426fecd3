// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake buffer pool implementation for testing. api.Buffer is a plain
// struct now, so unlike the old interface-shaped fake there is nothing to
// wrap: this file only needs to produce and account for api.Buffer values.

package fake

import (
	"sync"

	"github.com/momentics/mlos-sub000/api"
)

type fakeReleaser struct {
	pool *BufferPool
}

func (r *fakeReleaser) Put(b api.Buffer) {
	r.pool.Put(b)
}

// BufferPool is a fake implementation of api.BufferPool.
type BufferPool struct {
	mu        sync.Mutex
	allocated int64
	freed     int64
	inUse     int64
	numaStats map[int]int64
}

// NewBufferPool creates a new fake buffer pool.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		numaStats: make(map[int]int64),
	}
}

// Get returns a buffer sized at least 'size' bytes.
func (p *BufferPool) Get(size int, numaPreferred int) api.Buffer {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.allocated++
	p.inUse++
	p.numaStats[numaPreferred]++

	return api.Buffer{
		Data:  make([]byte, size),
		NUMA:  numaPreferred,
		Pool:  &fakeReleaser{pool: p},
		Class: size,
	}
}

// Put returns buffer to pool.
func (p *BufferPool) Put(b api.Buffer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.freed++
	if p.inUse > 0 {
		p.inUse--
	}

	if p.numaStats[b.NUMA] > 0 {
		p.numaStats[b.NUMA]--
	}
}

// Stats exposes resource/accounting metrics.
func (p *BufferPool) Stats() api.BufferPoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	numaStatsCopy := make(map[int]int64)
	for k, v := range p.numaStats {
		numaStatsCopy[k] = v
	}

	return api.BufferPoolStats{
		TotalAlloc: p.allocated,
		TotalFree:  p.freed,
		InUse:      p.inUse,
		NUMAStats:  numaStatsCopy,
	}
}
