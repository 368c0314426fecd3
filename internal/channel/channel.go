// File: internal/channel/channel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Channel drives the bounded ring-buffer frame protocol over
// a channel region and the channel_sync block that describes it. Three
// capability objects are injected rather than hard-coded: SpinPolicy
// (writer backoff), Wakeup (blocked-reader notification),
// InvalidFramePolicy (what to do with a frame that fails verification).

package channel

import (
	"context"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/region"
)

// Channel is not safe for more than one concurrent call to Initialize;
// Write and Read are safe for any number of concurrent callers.
type Channel struct {
	ring     []byte
	s        uint32
	margin   uint32
	sync     *SyncBlock
	wakeup   api.Wakeup
	spin     api.SpinPolicy
	policy   api.InvalidFramePolicy
	dispatch api.DispatchTable
}

// New constructs a Channel over ring (a power-of-two-sized channel
// region's bytes) and sync (its channel_sync block in the global region).
func New(ring []byte, sync *SyncBlock, wakeup api.Wakeup, spin api.SpinPolicy, policy api.InvalidFramePolicy, dispatch api.DispatchTable) (*Channel, error) {
	s := uint32(len(ring))
	if !region.IsPowerOfTwo(uint64(s)) || s < 4 {
		return nil, api.NewError(api.ErrCodeInvalid, "channel: region size must be a power of two >= 4")
	}
	if spin == nil {
		spin = api.BusySpinPolicy{}
	}
	return &Channel{
		ring:     ring,
		s:        s,
		margin:   s - region.FrameHeaderSize,
		sync:     sync,
		wakeup:   wakeup,
		spin:     spin,
		policy:   policy,
		dispatch: dispatch,
	}, nil
}

// Initialize recovers the channel to tolerate a crashed prior peer
//. Call once per process attach, before normal traffic.
func (c *Channel) Initialize() error {
	c.sync.ClearTerminate()
	c.advanceFreePosition()

	free := c.sync.FreePosition()
	write := c.sync.WritePosition()
	pos := free
	for pos != write {
		offset := pos % c.s
		length := region.LoadLength(c.ring, offset)

		switch {
		case region.IsFreed(length), region.IsWriterOwned(length):
			size := region.DecodeSize(length)
			region.ZeroPayload(c.ring, offset, size)
			region.StoreLengthRelease(c.ring, offset, int32(size))
			pos += size
		case region.IsEmpty(length):
			// No more frames were ever written past this point.
			pos = write
		default:
			// Ready and untouched: leave it for the replaying reader.
			pos += region.DecodeSize(length)
		}
	}
	c.sync.StoreReadPosition(free)
	return nil
}

// advanceFreePosition walks forward from free_position over freed frames,
// stopping at the first non-negative length or at read_position
//.
func (c *Channel) advanceFreePosition() {
	for {
		free := c.sync.FreePosition()
		read := c.sync.ReadPosition()
		if free == read {
			return
		}
		offset := free % c.s
		length := region.LoadLength(c.ring, offset)
		if !region.IsFreed(length) {
			return
		}
		size := region.DecodeSize(length)
		if !c.sync.CASFreePosition(free, free+size) {
			continue
		}
	}
}

// Write reserves frameLen-region.FrameHeaderSize bytes for a message of
// the given codegen type, invokes fill to serialize directly into the
// acquired payload slice (zero-copy), then publishes the frame
//. payloadLen must already account for any variable-length
// data; fill receives a slice of exactly that length.
func (c *Channel) Write(ctx context.Context, typeIndex uint32, typeHash uint64, payloadLen int, fill func(payload []byte)) error {
	frameLen := region.AlignUp4(region.FrameHeaderSize + uint32(payloadLen))
	if frameLen > c.margin {
		return api.NewError(api.ErrCodeInvalid, "channel: frame larger than channel margin")
	}

	attempt := 0
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		free := c.sync.FreePosition()
		write := c.sync.WritePosition()

		// If the frame wouldn't fit contiguously before the ring wraps,
		// the tail gets burned with a link frame and the real frame
		// starts fresh at the wrap boundary.
		offsetNow := write % c.s
		extension := uint32(0)
		if c.s-offsetNow < frameLen {
			extension = c.s - offsetNow
		}
		total := extension + frameLen

		if write-free+total > c.margin {
			if c.sync.Terminate() {
				return api.ErrAborted
			}
			c.advanceFreePosition()
			c.spin.Backoff(attempt)
			attempt++
			continue
		}

		if !c.sync.CASWritePosition(write, write+total) {
			continue
		}

		if extension > 0 {
			c.writeLinkFrame(offsetNow, extension)
		}

		offset := (write + extension) % c.s
		c.writeFrame(offset, frameLen, typeIndex, typeHash, payloadLen, fill)
		if c.sync.ReaderInWaitingCount() > 0 {
			c.wakeup.Signal()
		}
		return nil
	}
}

// writeLinkFrame marks the unusable tail before a wrap so the reader
// skips it. The writer already owns [offset, offset+length) exclusively
// (claimed via CASWritePosition), so no further synchronization on the
// header bytes is needed beyond the final release store of length.
// length may be smaller than region.FrameHeaderSize when the tail is a
// few bytes short of a full header; in that case only the length field
// itself is written, since that's all the space guarantees.
func (c *Channel) writeLinkFrame(offset, length uint32) {
	if length >= region.FrameHeaderSize {
		region.PutTypeFields(c.ring, offset, region.LinkTypeIndex, 0)
	}
	region.StoreLengthRelease(c.ring, offset, int32(length))
}

func (c *Channel) writeFrame(offset, frameLen uint32, typeIndex uint32, typeHash uint64, payloadLen int, fill func([]byte)) {
	region.StoreLengthRelease(c.ring, offset, region.EncodeLength(frameLen, true))
	region.PutTypeFields(c.ring, offset, typeIndex, typeHash)
	payload := c.ring[offset+region.FrameHeaderSize : offset+region.FrameHeaderSize+uint32(payloadLen)]
	if fill != nil {
		fill(payload)
	}
	region.StoreLengthRelease(c.ring, offset, int32(frameLen))
}

// ReadResult is handed to InvalidFramePolicy / returned to callers wanting
// diagnostics about a processed frame.
type ReadResult struct {
	Skipped bool // true for link frames; a timeout returns an error instead
}

// Read claims, verifies, and dispatches exactly one frame, blocking on the
// channel's Wakeup if the ring is currently empty. Returns
// api.ErrAborted if terminate was observed while waiting.
func (c *Channel) Read(ctx context.Context) (ReadResult, error) {
	for {
		read := c.sync.ReadPosition()
		offset := read % c.s
		length := region.LoadLength(c.ring, offset)

		if length > 0 {
			size := region.DecodeSize(length)
			if !c.sync.CASReadPosition(read, read+size) {
				continue // another reader claimed it first
			}
			for region.IsWriterOwned(region.LoadLength(c.ring, offset)) {
				// writer still populating; spin until release store clears it
			}
			return c.processFrame(offset, size)
		}

		if c.sync.Terminate() {
			return ReadResult{}, api.ErrAborted
		}

		c.sync.IncReaderInWaiting()
		// Re-check for work that may have arrived between the length load
		// above and the increment, to avoid the lost-wakeup race.
		if region.LoadLength(c.ring, offset) > 0 || c.sync.Terminate() {
			c.sync.DecReaderInWaiting()
			continue
		}
		err := c.wakeup.Wait(ctx)
		c.sync.DecReaderInWaiting()
		if err != nil {
			return ReadResult{}, err
		}
	}
}

func (c *Channel) processFrame(offset, size uint32) (ReadResult, error) {
	c.sync.IncActiveReader()
	defer c.sync.DecActiveReader()

	result := ReadResult{}

	// A tail remnant shorter than a full header carries only a length
	// field (writeLinkFrame); there is nothing else to read.
	if size < region.FrameHeaderSize {
		result.Skipped = true
		region.StoreLengthRelease(c.ring, offset, -int32(size))
		return result, nil
	}

	typeIndex := region.TypeIndex(c.ring, offset)

	if typeIndex == region.LinkTypeIndex {
		result.Skipped = true
	} else {
		typeHash := region.TypeHash(c.ring, offset)
		payload := c.ring[offset+region.FrameHeaderSize : offset+size]
		handled, err := c.dispatch.Dispatch(typeIndex, typeHash, payload)
		if err != nil || !handled {
			reason := "dispatch failed"
			if !handled {
				reason = "no handler registered for codegen type"
			}
			if polErr := c.invokePolicy(reason, offset); polErr != nil {
				return result, polErr
			}
		}
	}

	region.ZeroPayload(c.ring, offset, size)
	region.StoreLengthRelease(c.ring, offset, -int32(size))
	return result, nil
}

func (c *Channel) invokePolicy(reason string, offset uint32) error {
	if c.policy == nil {
		return nil
	}
	return c.policy.OnInvalidFrame(reason, 0, offset)
}

// Terminate sets the terminate flag and wakes any reader currently
// blocked on the wakeup primitive so it can observe it.
func (c *Channel) Terminate() {
	c.sync.SetTerminate()
	c.wakeup.Signal()
}

// ActiveReaderCount exposes the live dispatch-loop count, used by the
// feedback channel's termination busy-wait.
func (c *Channel) ActiveReaderCount() uint32 {
	return c.sync.ActiveReaderCount()
}
