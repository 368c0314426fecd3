// File: context/config.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Config mirrors a facade-style DefaultConfig-plus-env-override pattern,
// carrying this system's environment knobs (socket folder, region sizes,
// dictionary size) instead of transport/listener settings.

package mloscontext

import (
	"os"
	"strconv"
)

// Config holds every environment knob this system exposes.
type Config struct {
	// SocketFolder is the rendezvous directory for anonymous-mode FD
	// exchange: it holds mlos.sock and mlos.opened.
	SocketFolder string
	// GlobalRegionSize is the fixed-layout global region's mapped size.
	GlobalRegionSize int
	// SharedConfigMemorySize is the shared-config region's mapped size.
	SharedConfigMemorySize int
	// ControlChannelSize and FeedbackChannelSize are power-of-two ring sizes.
	ControlChannelSize  int
	FeedbackChannelSize int
	// DictionaryElementCount is the shared-config dictionary's table size.
	DictionaryElementCount uint32
}

const (
	defaultGlobalRegionSize       = 64 * 1024
	defaultSharedConfigMemorySize = 64 * 1024
	defaultControlChannelSize     = 64 * 1024
	defaultFeedbackChannelSize    = 64 * 1024
	defaultDictionaryElementCount = 2048
)

func defaultSocketFolder() string {
	if dir := os.Getenv("MLOS_SOCKET_FOLDER"); dir != "" {
		return dir
	}
	if os.PathSeparator == '\\' {
		return os.Getenv("TEMP") + `\mlos`
	}
	return "/var/tmp/mlos"
}

// DefaultConfig returns the baseline region/channel sizing, overridable
// from the environment by the MLOS_* variables matching each field;
// GlobalRegionSize has no environment override.
func DefaultConfig() *Config {
	cfg := &Config{
		SocketFolder:           defaultSocketFolder(),
		GlobalRegionSize:       defaultGlobalRegionSize,
		SharedConfigMemorySize: defaultSharedConfigMemorySize,
		ControlChannelSize:     defaultControlChannelSize,
		FeedbackChannelSize:    defaultFeedbackChannelSize,
		DictionaryElementCount: defaultDictionaryElementCount,
	}
	cfg.applyEnvOverrides()
	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("MLOS_SHARED_CONFIG_MEMORY_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SharedConfigMemorySize = n
		}
	}
	if v := os.Getenv("MLOS_CONTROL_CHANNEL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.ControlChannelSize = n
		}
	}
	if v := os.Getenv("MLOS_FEEDBACK_CHANNEL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.FeedbackChannelSize = n
		}
	}
	if v := os.Getenv("MLOS_DICTIONARY_ELEMENT_COUNT"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 32); err == nil {
			c.DictionaryElementCount = uint32(n)
		}
	}
}

// AsConfigStoreSnapshot renders cfg the way control.ConfigStore.SetConfig
// expects, for wiring into the ambient metrics/debug registry.
func (c *Config) AsConfigStoreSnapshot() map[string]any {
	return map[string]any{
		"socket_folder":             c.SocketFolder,
		"shared_config_memory_size": c.SharedConfigMemorySize,
		"control_channel_size":      c.ControlChannelSize,
		"feedback_channel_size":     c.FeedbackChannelSize,
		"dictionary_element_count":  c.DictionaryElementCount,
	}
}
