// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants for the
// shared-memory messaging core.

package api

import "time"

// RegionType enumerates the four region kinds a context exchanges.
type RegionType uint32

const (
	RegionGlobal RegionType = iota
	RegionControlChannel
	RegionFeedbackChannel
	RegionSharedConfig
)

func (t RegionType) String() string {
	switch t {
	case RegionGlobal:
		return "global"
	case RegionControlChannel:
		return "control"
	case RegionFeedbackChannel:
		return "feedback"
	case RegionSharedConfig:
		return "shared_config"
	default:
		return "unknown"
	}
}

// RegionSignature is the fixed sentinel every region header begins with.
const RegionSignature uint32 = 0x67676767

// Default sizes and knobs, matching 
const (
	DefaultGlobalRegionSize   = 64 * 1024
	DefaultChannelRegionSize  = 64 * 1024
	DefaultSharedConfigSize   = 64 * 1024
	DefaultDictionaryElements = 2048
	DefaultSocketFolder       = "/var/tmp/mlos"
	SocketFileName            = "mlos.sock"
	SentinelFileName          = "mlos.opened"
)

// EndpointConfig collects the environment / configuration knobs of 
type EndpointConfig struct {
	SocketFolder           string
	SharedConfigMemorySize int
	ControlChannelSize     int
	FeedbackChannelSize    int
	DictionaryElementCount int
}

// DefaultEndpointConfig returns the documented defaults.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		SocketFolder:           DefaultSocketFolder,
		SharedConfigMemorySize: DefaultSharedConfigSize,
		ControlChannelSize:     DefaultChannelRegionSize,
		FeedbackChannelSize:    DefaultChannelRegionSize,
		DictionaryElementCount: DefaultDictionaryElements,
	}
}

// ServiceInfo exposes descriptive build- and runtime info for external tools.
type ServiceInfo struct {
	Name      string
	Version   string
	Build     string
	StartedAt time.Time
}
