// File: cmd/mlos-demo/main.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// mlos-demo wires a target and an agent-side reader together in one
// process pair over named shared-memory regions, to exercise the core
// end to end: a target sends a fixed-size Point message, the agent
// dispatches it, and the settings-assembly registration path runs once,
// idempotently.
package main

import (
	"context"
	"encoding/binary"
	"log"
	"math"
	"os"
	"time"

	"github.com/momentics/mlos-sub000/adapters"
	"github.com/momentics/mlos-sub000/api"
	mloscontext "github.com/momentics/mlos-sub000/context"
	"github.com/momentics/mlos-sub000/internal/channel"
	"github.com/momentics/mlos-sub000/internal/region"
	"github.com/momentics/mlos-sub000/pool"
)

const (
	pointTypeIndex uint32 = 10
	pointTypeHash  uint64 = 0xF0CACC1A
	pointPayload          = 8 // two float32s

	labelTypeIndex uint32 = 12
	labelTypeHash  uint64 = 0xBADC0DE1
	labelFixedSize        = 16 // one {offset, size} var-slot descriptor
)

// encodeLabel serializes a single variable-length string field the way a
// codegen-generated type would: the fixed
// part is one {offset, size} descriptor, the variable data follows it
// immediately. Scratch assembly borrows from the NUMA-aware buffer pool
// rather than allocating directly, even though the final copy into the
// ring is itself zero-copy via Write's fill callback.
func encodeLabel(pools *pool.BufferPoolManager, name string) (scratch api.Buffer, payloadLen int) {
	scratch = pools.GetPool(-1).Get(labelFixedSize+len(name), -1)
	buf := scratch.Bytes()
	binary.LittleEndian.PutUint64(buf[0:8], 0)
	binary.LittleEndian.PutUint64(buf[8:16], uint64(len(name)))
	copy(buf[labelFixedSize:labelFixedSize+len(name)], name)
	return scratch, labelFixedSize + len(name)
}

func main() {
	dir, err := os.MkdirTemp("", "mlos-demo-*")
	if err != nil {
		log.Fatalf("mlos-demo: temp dir: %v", err)
	}
	defer os.RemoveAll(dir)

	cfg := mloscontext.DefaultConfig()
	cfg.SocketFolder = dir
	cfg.ControlChannelSize = 4096
	cfg.FeedbackChannelSize = 4096

	affinity := adapters.NewAffinityAdapter()
	if err := affinity.Pin(-1, -1); err != nil {
		log.Printf("mlos-demo: affinity pin skipped: %v", err)
	}
	defer affinity.Unpin()

	ctrl := adapters.NewControlAdapter()
	ctrl.SetConfig(cfg.AsConfigStoreSnapshot())

	// Request-scoped metadata carried alongside the registration call,
	// independent of the region/channel plumbing itself.
	reqCtx := adapters.NewContextAdapter().NewContext()
	reqCtx.Set("caller_uid", os.Getuid(), true)
	reqCtx.Set("correlation_id", "mlos-demo-run", true)

	target, err := mloscontext.NewNamed(cfg, true)
	if err != nil {
		log.Fatalf("mlos-demo: create target context: %v", err)
	}
	defer target.Close()

	agent, err := mloscontext.NewNamed(cfg, false)
	if err != nil {
		log.Fatalf("mlos-demo: attach agent context: %v", err)
	}
	defer agent.Close()

	received := make(chan [2]float32, 1)
	agent.ControlDispatch.Register(api.DispatchEntry{
		CodegenTypeIndex: pointTypeIndex,
		CodegenTypeHash:  pointTypeHash,
		Handle: func(payload []byte) error {
			var pt [2]float32
			pt[0] = math.Float32frombits(binary.LittleEndian.Uint32(payload[0:4]))
			pt[1] = math.Float32frombits(binary.LittleEndian.Uint32(payload[4:8]))
			received <- pt
			return nil
		},
	})

	labels := make(chan string, 1)
	pools := pool.NewBufferPoolManager()

	agent.ControlDispatch.Register(api.DispatchEntry{
		CodegenTypeIndex: labelTypeIndex,
		CodegenTypeHash:  labelTypeHash,
		Handle: func(payload []byte) error {
			slot := channel.VarSlot{
				Offset: binary.LittleEndian.Uint64(payload[0:8]),
				Size:   binary.LittleEndian.Uint64(payload[8:16]),
			}
			frameLength := uint32(len(payload)) + region.FrameHeaderSize
			if err := channel.VerifyVariableSlots(frameLength, labelFixedSize, []channel.VarSlot{slot}); err != nil {
				return err
			}
			start := labelFixedSize + int(slot.Offset)
			labels <- string(payload[start : start+int(slot.Size)])
			return nil
		},
	})

	exec := adapters.NewExecutorAdapter(1, -1)
	defer exec.Close()
	if err := exec.Submit(func() {
		readCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		for {
			if _, err := agent.Control.Read(readCtx); err != nil {
				return
			}
		}
	}); err != nil {
		log.Fatalf("mlos-demo: submit reader task: %v", err)
	}

	if uid, ok := reqCtx.Get("caller_uid"); ok {
		log.Printf("mlos-demo: registering settings assembly on behalf of uid=%v", uid)
	}
	if _, err := target.RegisterSettingsAssembly("Demo.Generated.Settings", 1000); err != nil {
		log.Fatalf("mlos-demo: register settings assembly: %v", err)
	}
	// Idempotent repeat: must not publish a second record or request.
	if _, err := target.RegisterSettingsAssembly("Demo.Generated.Settings", 1000); err != nil {
		log.Fatalf("mlos-demo: repeat register settings assembly: %v", err)
	}

	writeCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err = target.Control.Write(writeCtx, pointTypeIndex, pointTypeHash, pointPayload, func(payload []byte) {
		binary.LittleEndian.PutUint32(payload[0:4], math.Float32bits(13))
		binary.LittleEndian.PutUint32(payload[4:8], math.Float32bits(17))
	})
	if err != nil {
		log.Fatalf("mlos-demo: write point: %v", err)
	}

	select {
	case pt := <-received:
		log.Printf("mlos-demo: agent received Point{x=%v, y=%v}", pt[0], pt[1])
	case <-time.After(3 * time.Second):
		log.Fatal("mlos-demo: timed out waiting for agent to dispatch the Point message")
	}

	scratch, labelPayloadLen := encodeLabel(pools, "mlos-demo-node")
	pending := pool.NewBufferBatch(1)
	pending.Append(scratch)

	labelWriteCtx, labelCancel := context.WithTimeout(context.Background(), 2*time.Second)
	for i := 0; i < pending.Len(); i++ {
		buf := pending.Get(i)
		if err = target.Control.Write(labelWriteCtx, labelTypeIndex, labelTypeHash, labelPayloadLen, func(payload []byte) {
			copy(payload, buf.Bytes())
		}); err != nil {
			break
		}
		buf.Release()
	}
	labelCancel()
	if err != nil {
		log.Fatalf("mlos-demo: write label: %v", err)
	}

	select {
	case name := <-labels:
		log.Printf("mlos-demo: agent received Label{name=%q}", name)
	case <-time.After(3 * time.Second):
		log.Fatal("mlos-demo: timed out waiting for agent to dispatch the Label message")
	}

	target.TerminateControlChannel()

	stats := ctrl.Stats()
	log.Printf("mlos-demo: control stats snapshot: %+v", stats)
}
