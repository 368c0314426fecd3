// File: context/assembly.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Settings-assembly registration: each application component
// calls RegisterSettingsAssembly once per generated file it loads. The
// call publishes a RegisteredSettingsAssembly record into the global
// shared-config dictionary and notifies the agent, but is a no-op on a
// repeat call for the same file name.

package mloscontext

import (
	"context"
	"encoding/binary"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/dispatch"
	"github.com/momentics/mlos-sub000/internal/sharedconfig"
)

// registeredSettingsAssemblyTypeID identifies the RegisteredSettingsAssembly
// config record's layout. Reserved by the core itself, below any codegen
// type id a schema compiler run would assign.
const registeredSettingsAssemblyTypeID uint32 = 0xFFFFFFFE

// registeredSettingsAssemblyFileNameSize is the fixed file-name slot width.
const registeredSettingsAssemblyFileNameSize = 256

const registeredSettingsAssemblyRecordSize = 4 + 8 + 4 + registeredSettingsAssemblyFileNameSize

// registeredSettingsAssemblyConfig implements sharedconfig.Config, keyed
// by the FNV-1a hash of the assembly's file name so that two registration
// calls for the same file collide on the same dictionary slot.
type registeredSettingsAssemblyConfig struct {
	assemblyIndex     uint32
	fileNameHash      uint64
	dispatchBaseIndex uint32
	fileName          string
}

var _ sharedconfig.Config = (*registeredSettingsAssemblyConfig)(nil)

func (c *registeredSettingsAssemblyConfig) CodegenTypeID() uint32 {
	return registeredSettingsAssemblyTypeID
}

func (c *registeredSettingsAssemblyConfig) KeyHash() uint64 {
	return c.fileNameHash
}

func (c *registeredSettingsAssemblyConfig) Marshal() []byte {
	buf := make([]byte, registeredSettingsAssemblyRecordSize)
	binary.LittleEndian.PutUint32(buf[0:4], c.assemblyIndex)
	binary.LittleEndian.PutUint64(buf[4:12], c.fileNameHash)
	binary.LittleEndian.PutUint32(buf[12:16], c.dispatchBaseIndex)
	copy(buf[16:16+registeredSettingsAssemblyFileNameSize], c.fileName)
	return buf
}

func (c *registeredSettingsAssemblyConfig) MatchesStored(payload []byte) bool {
	return len(payload) >= 12 && binary.LittleEndian.Uint64(payload[4:12]) == c.fileNameHash
}

func (c *registeredSettingsAssemblyConfig) Unmarshal(payload []byte) error {
	if len(payload) < registeredSettingsAssemblyRecordSize {
		return api.NewError(api.ErrCodeInvalid, "context: truncated RegisteredSettingsAssembly record")
	}
	c.assemblyIndex = binary.LittleEndian.Uint32(payload[0:4])
	c.fileNameHash = binary.LittleEndian.Uint64(payload[4:12])
	c.dispatchBaseIndex = binary.LittleEndian.Uint32(payload[12:16])
	end := 16
	stop := 16 + registeredSettingsAssemblyFileNameSize
	for end < stop && payload[end] != 0 {
		end++
	}
	c.fileName = string(payload[16:end])
	return nil
}

// RegisterSettingsAssembly publishes a RegisteredSettingsAssembly config
// keyed by fileName and sends a RegisterSettingsAssemblyRequest control
// message to the agent, unless fileName is already registered, in which
// case it returns the existing assembly index and sends nothing: the
// operation is idempotent.
func (c *Context) RegisterSettingsAssembly(fileName string, dispatchBaseIndex uint32) (uint32, error) {
	keyHash := sharedconfig.FNV1a([]byte(fileName))
	assignedIndex := c.counters.NextRegisteredSettingsAssemblyIndex()

	cfg := &registeredSettingsAssemblyConfig{
		assemblyIndex:     assignedIndex,
		fileNameHash:      keyHash,
		dispatchBaseIndex: dispatchBaseIndex,
		fileName:          fileName,
	}
	if _, err := c.Dict.CreateOrUpdate(cfg); err != nil {
		return 0, err
	}

	if cfg.assemblyIndex != assignedIndex {
		// create_or_update found fileName already registered and rebound
		// us to the existing record: no message to send.
		return cfg.assemblyIndex, nil
	}

	return cfg.assemblyIndex, c.sendRegisterSettingsAssemblyRequest(cfg.assemblyIndex)
}

// registerCoreControlMessages installs no-op handlers for the core's own
// two control messages so they dispatch cleanly instead of tripping the
// channel's "no handler registered" invalid-frame path; an agent process
// wiring this context overrides these with its own handlers.
func registerCoreControlMessages(table *dispatch.Table) {
	table.Register(api.DispatchEntry{
		CodegenTypeIndex: api.CoreTypeIndexTerminateReaderThreadRequest,
		CodegenTypeHash:  api.CoreTypeHashTerminateReaderThreadRequest,
		Handle:           func([]byte) error { return nil },
	})
	table.Register(api.DispatchEntry{
		CodegenTypeIndex: api.CoreTypeIndexRegisterSettingsAssemblyRequest,
		CodegenTypeHash:  api.CoreTypeHashRegisterSettingsAssemblyRequest,
		Handle:           func([]byte) error { return nil },
	})
}

func (c *Context) sendRegisterSettingsAssemblyRequest(assemblyIndex uint32) error {
	return c.Control.Write(
		context.Background(),
		api.CoreTypeIndexRegisterSettingsAssemblyRequest,
		api.CoreTypeHashRegisterSettingsAssemblyRequest,
		api.RegisterSettingsAssemblyRequestSize,
		func(payload []byte) {
			binary.LittleEndian.PutUint32(payload, assemblyIndex)
		},
	)
}
