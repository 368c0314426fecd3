// File: context/context.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Context is the public endpoint of C5: it owns the four
// regions, the two ring channels built over them, and the shared-config
// dictionary, and arbitrates their combined teardown via the global
// region's attached_process_count.

package mloscontext

import (
	"context"
	"fmt"
	"log"
	"net"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/channel"
	"github.com/momentics/mlos-sub000/internal/dispatch"
	"github.com/momentics/mlos-sub000/internal/fdexchange"
	"github.com/momentics/mlos-sub000/internal/region"
	"github.com/momentics/mlos-sub000/internal/sharedconfig"
)

// Context is the assembled endpoint a target or agent process attaches
// through. Not safe for concurrent Close calls; Control/Feedback channel
// access is safe per internal/channel's own concurrency contract.
type Context struct {
	cfg *Config

	global       *region.Map
	controlRgn   *region.Map
	feedbackRgn  *region.Map
	sharedCfgRgn *region.Map

	counters globalCounters

	Control          *channel.Channel
	Feedback         *channel.Channel
	ControlDispatch  *dispatch.Table
	FeedbackDispatch *dispatch.Table
	Dict             *sharedconfig.Dictionary

	controlSync  *channel.SyncBlock
	feedbackSync *channel.SyncBlock

	watcher *fdexchange.SentinelWatcher
}

// regionSpec describes one of the four regions during construction, so
// the named and anonymous paths can share one parallel-acquire routine.
type regionSpec struct {
	regionType api.RegionType
	size       int
	namePart   string // file name suffix in named mode
}

func (c *Context) specs() [4]regionSpec {
	return [4]regionSpec{
		{api.RegionGlobal, c.cfg.GlobalRegionSize, "global"},
		{api.RegionControlChannel, c.cfg.ControlChannelSize, "control"},
		{api.RegionFeedbackChannel, c.cfg.FeedbackChannelSize, "feedback"},
		{api.RegionSharedConfig, c.cfg.SharedConfigMemorySize, "sharedconfig"},
	}
}

// NewNamed creates (or attaches to) the four regions at well-known paths
// under cfg.SocketFolder, incrementing attached_process_count on success.
// Every error unwinds whatever regions it already acquired, using errgroup to acquire the four regions in
// parallel and roll back together on first failure.
func NewNamed(cfg *Config, create bool) (*Context, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Context{cfg: cfg}
	specs := c.specs()
	maps := make([]*region.Map, len(specs))

	g, _ := errgroup.WithContext(context.Background())
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			path := filepath.Join(cfg.SocketFolder, spec.namePart+".region")
			var m *region.Map
			var err error
			if create {
				m, err = region.MapNew(region.Options{
					Path:       path,
					Size:       spec.size,
					RegionType: spec.regionType,
					RegionID:   region.MakeRegionID(spec.regionType, 0),
				})
			} else {
				m, err = region.MapExisting(region.ExistOptions{
					Path:       path,
					Size:       spec.size,
					RegionType: spec.regionType,
				})
			}
			if err != nil {
				return fmt.Errorf("context: acquire %s region: %w", spec.namePart, err)
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, m := range maps {
			if m != nil {
				m.Close()
			}
		}
		return nil, err
	}

	c.global, c.controlRgn, c.feedbackRgn, c.sharedCfgRgn = maps[0], maps[1], maps[2], maps[3]
	if err := c.wireUp(create); err != nil {
		c.closeRegions(false)
		return nil, err
	}
	log.Printf("mlos: named context attached (create=%v) under %s", create, cfg.SocketFolder)
	return c, nil
}

// NewAnonymousTarget creates four anonymous (memfd) regions and starts a
// background watcher that hands their descriptors to the agent as soon
// as it opens the sentinel file, looping across agent
// restarts.
func NewAnonymousTarget(cfg *Config) (*Context, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	c := &Context{cfg: cfg}
	specs := c.specs()
	maps := make([]*region.Map, len(specs))

	g, _ := errgroup.WithContext(context.Background())
	for i, spec := range specs {
		i, spec := i, spec
		g.Go(func() error {
			m, err := region.MapNew(region.Options{
				Size:       spec.size,
				RegionType: spec.regionType,
				RegionID:   region.MakeRegionID(spec.regionType, 0),
			})
			if err != nil {
				return fmt.Errorf("context: create anonymous %s region: %w", spec.namePart, err)
			}
			maps[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		for _, m := range maps {
			if m != nil {
				m.Close()
			}
		}
		return nil, err
	}

	c.global, c.controlRgn, c.feedbackRgn, c.sharedCfgRgn = maps[0], maps[1], maps[2], maps[3]
	if err := c.wireUp(true); err != nil {
		c.closeRegions(false)
		return nil, err
	}

	watcher, err := fdexchange.NewSentinelWatcher(cfg.SocketFolder)
	if err != nil {
		c.closeRegions(true)
		return nil, fmt.Errorf("context: sentinel watcher: %w", err)
	}
	c.watcher = watcher
	go c.sendDescriptorsLoop()

	log.Printf("mlos: anonymous target context created under %s", cfg.SocketFolder)
	return c, nil
}

// sendDescriptorsLoop waits for the agent to announce readiness, dials
// its socket, and sends all four descriptors, then re-arms — the
// target starts before the agent and must survive the agent restarting
// any number of times.
func (c *Context) sendDescriptorsLoop() {
	records := []fdexchange.Record{
		{RegionType: api.RegionGlobal, RegionSize: uint64(c.global.Size()), ContainsFD: true},
		{RegionType: api.RegionControlChannel, RegionSize: uint64(c.controlRgn.Size()), ContainsFD: true},
		{RegionType: api.RegionFeedbackChannel, RegionSize: uint64(c.feedbackRgn.Size()), ContainsFD: true},
		{RegionType: api.RegionSharedConfig, RegionSize: uint64(c.sharedCfgRgn.Size()), ContainsFD: true},
	}
	fds := []int{
		int(c.global.FD()), int(c.controlRgn.FD()), int(c.feedbackRgn.FD()), int(c.sharedCfgRgn.FD()),
	}
	socketPath := filepath.Join(c.cfg.SocketFolder, fdexchange.SocketName)

	for {
		if err := c.watcher.Wait(context.Background()); err != nil {
			return // watcher closed during Close()
		}
		conn, err := net.Dial("unix", socketPath)
		if err != nil {
			log.Printf("mlos: fd exchange dial %s: %v", socketPath, err)
			continue
		}
		uconn, ok := conn.(*net.UnixConn)
		if !ok {
			conn.Close()
			continue
		}
		if err := fdexchange.SendDescriptors(uconn, records, fds); err != nil {
			log.Printf("mlos: fd exchange send: %v", err)
		}
		uconn.Close()
	}
}

func (c *Context) wireUp(creator bool) error {
	c.counters = globalCounters{buf: c.global.Bytes()}
	if creator {
		c.counters.StoreAttachedProcessCount(1)
	} else {
		c.counters.IncAttachedProcessCount()
	}

	c.controlSync = channel.NewSyncBlock(c.global.Bytes(), offControlSync)
	c.feedbackSync = channel.NewSyncBlock(c.global.Bytes(), offFeedbackSync)
	if creator {
		c.controlSync.Reset()
		c.feedbackSync.Reset()
	}

	dispatchControl := dispatch.New()
	dispatchFeedback := dispatch.New()
	registerCoreControlMessages(dispatchControl)

	ctrl, err := channel.New(c.controlRgn.Bytes(), c.controlSync, channel.NewFutexWakeup(c.controlSync), api.YieldSpinPolicy{}, api.LogAndSkipPolicy{Logf: log.Printf}, dispatchControl)
	if err != nil {
		return err
	}
	fb, err := channel.New(c.feedbackRgn.Bytes(), c.feedbackSync, channel.NewFutexWakeup(c.feedbackSync), api.YieldSpinPolicy{}, api.LogAndSkipPolicy{Logf: log.Printf}, dispatchFeedback)
	if err != nil {
		return err
	}
	if err := ctrl.Initialize(); err != nil {
		return err
	}
	if err := fb.Initialize(); err != nil {
		return err
	}
	c.Control = ctrl
	c.Feedback = fb
	c.ControlDispatch = dispatchControl
	c.FeedbackDispatch = dispatchFeedback

	c.Dict = sharedconfig.New(c.sharedCfgRgn.Bytes(), c.cfg.DictionaryElementCount)
	if creator {
		c.Dict.Init()
	}
	return nil
}

// Close decrements attached_process_count and, if it reaches zero,
// unlinks the named backing resources.
func (c *Context) Close() error {
	if c.watcher != nil {
		c.watcher.Close()
	}
	remaining := c.counters.DecAttachedProcessCount()
	lastDetacher := remaining == 0
	return c.closeRegions(lastDetacher)
}

func (c *Context) closeRegions(cleanup bool) error {
	var firstErr error
	for _, m := range []*region.Map{c.global, c.controlRgn, c.feedbackRgn, c.sharedCfgRgn} {
		if m == nil {
			continue
		}
		if err := m.CloseWithCleanup(cleanup); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// TerminateControlChannel sets terminate, wakes any in-wait reader, and
// sends a TerminateReaderThreadRequest sentinel.
func (c *Context) TerminateControlChannel() {
	c.Control.Terminate()
	c.sendTerminateSentinel(c.Control)
}

// TerminateFeedbackChannel sets terminate, wakes any in-wait reader,
// sends a TerminateReaderThreadRequest sentinel, and busy-waits until
// active_reader_count reaches zero.
func (c *Context) TerminateFeedbackChannel() {
	c.Feedback.Terminate()
	c.sendTerminateSentinel(c.Feedback)
	for c.Feedback.ActiveReaderCount() > 0 {
	}
}

// sendTerminateSentinel writes a zero-payload TerminateReaderThreadRequest
// frame so a reader that is mid-dispatch rather than blocked on the
// wakeup primitive still observes a message.
// Best-effort: terminate is already set, so on a full buffer Write returns
// api.ErrAborted instead of spinning, and channel.Terminate's own Signal()
// remains the guaranteed unblock path.
func (c *Context) sendTerminateSentinel(ch *channel.Channel) {
	_ = ch.Write(context.Background(), api.CoreTypeIndexTerminateReaderThreadRequest, api.CoreTypeHashTerminateReaderThreadRequest, 0, nil)
}
