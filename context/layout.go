// File: context/layout.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Global region layout, beyond the common region.Header every region
// starts with: three atomic counters, then the
// control and feedback channel_sync blocks. The shared-config dictionary
// itself lives in its own, independently-sized region (the fourth
// exchanged descriptor) rather than inside this fixed-size layout, since
// its table/arena size is a caller knob (shared_config_memory_size)
// sized independently of the global region (Config.GlobalRegionSize,
// default 64 KiB) — an Open Question resolution recorded in DESIGN.md.

package mloscontext

import (
	"github.com/momentics/mlos-sub000/internal/channel"
	"github.com/momentics/mlos-sub000/internal/region"
)

const (
	offAttachedProcessCount            = region.HeaderSize
	offRegisteredSettingsAssemblyCount = offAttachedProcessCount + 4
	offGlobalRegionIndex               = offRegisteredSettingsAssemblyCount + 4
	offControlSync                     = offGlobalRegionIndex + 4
	offFeedbackSync                    = offControlSync + channel.SyncBlockSize
)

// GlobalLayoutSize is the number of bytes the global region's fixed
// layout occupies, before any unused tail padding out to its full
// mapped size (default 64 KiB, ).
const GlobalLayoutSize = offFeedbackSync + channel.SyncBlockSize
