// File: context/counters.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package mloscontext

import (
	"sync/atomic"
	"unsafe"
)

// globalCounters is a view over the three atomic counters embedded in
// the global region right after its header.
type globalCounters struct {
	buf []byte
}

func (g globalCounters) ptr(rel uint64) *uint32 {
	return (*uint32)(unsafe.Pointer(&g.buf[rel]))
}

func (g globalCounters) AttachedProcessCount() uint32 {
	return atomic.LoadUint32(g.ptr(offAttachedProcessCount))
}

func (g globalCounters) IncAttachedProcessCount() uint32 {
	return atomic.AddUint32(g.ptr(offAttachedProcessCount), 1)
}

func (g globalCounters) DecAttachedProcessCount() uint32 {
	return atomic.AddUint32(g.ptr(offAttachedProcessCount), ^uint32(0))
}

func (g globalCounters) StoreAttachedProcessCount(v uint32) {
	atomic.StoreUint32(g.ptr(offAttachedProcessCount), v)
}

func (g globalCounters) RegisteredSettingsAssemblyCount() uint32 {
	return atomic.LoadUint32(g.ptr(offRegisteredSettingsAssemblyCount))
}

func (g globalCounters) NextRegisteredSettingsAssemblyIndex() uint32 {
	return atomic.AddUint32(g.ptr(offRegisteredSettingsAssemblyCount), 1) - 1
}

func (g globalCounters) GlobalRegionIndex() uint32 {
	return atomic.LoadUint32(g.ptr(offGlobalRegionIndex))
}

func (g globalCounters) NextGlobalRegionIndex() uint32 {
	return atomic.AddUint32(g.ptr(offGlobalRegionIndex), 1) - 1
}
