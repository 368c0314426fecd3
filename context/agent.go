// File: context/agent.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Agent-side anonymous-mode attach: listen on the rendezvous socket,
// announce readiness by touching the sentinel, and attach the four
// descriptors the target sends.

package mloscontext

import (
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/momentics/mlos-sub000/api"
	"github.com/momentics/mlos-sub000/internal/fdexchange"
	"github.com/momentics/mlos-sub000/internal/region"
)

// NewAnonymousAgent listens on cfg.SocketFolder's rendezvous socket,
// announces itself via the sentinel, and attaches to the four regions
// the target sends over SCM_RIGHTS. It blocks until the exchange
// completes, with no timeout (callers wanting cancellation should race
// this against their own timer).
func NewAnonymousAgent(cfg *Config) (*Context, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := os.MkdirAll(cfg.SocketFolder, 0o755); err != nil {
		return nil, err
	}
	socketPath := filepath.Join(cfg.SocketFolder, fdexchange.SocketName)
	os.Remove(socketPath) // stale socket from a crashed prior agent

	ln, err := net.Listen("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("context: listen %s: %w", socketPath, err)
	}
	defer ln.Close()

	stopTouch := make(chan struct{})
	go func() {
		ticker := time.NewTicker(500 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stopTouch:
				return
			case <-ticker.C:
				if err := fdexchange.TouchSentinel(cfg.SocketFolder); err != nil {
					log.Printf("mlos: touch sentinel: %v", err)
				}
			}
		}
	}()

	conn, err := ln.Accept()
	close(stopTouch)
	if err != nil {
		return nil, fmt.Errorf("context: accept: %w", err)
	}
	defer conn.Close()

	uconn, ok := conn.(*net.UnixConn)
	if !ok {
		return nil, fmt.Errorf("context: accepted connection is not a UnixConn")
	}

	records, fds, err := fdexchange.RecvDescriptors(uconn, 4)
	if err != nil {
		return nil, fmt.Errorf("context: recv descriptors: %w", err)
	}

	c := &Context{cfg: cfg}
	maps := make([]*region.Map, 4)
	for i, rec := range records {
		if !rec.ContainsFD || fds[i] < 0 {
			c.closeMaps(maps)
			return nil, api.NewError(api.ErrCodeNotFound, "context: record carried no descriptor")
		}
		m, err := region.MapExisting(region.ExistOptions{
			FD:         fds[i],
			Size:       int(rec.RegionSize),
			RegionType: rec.RegionType,
		})
		if err != nil {
			c.closeMaps(maps)
			return nil, err
		}
		maps[i] = m
	}

	c.global, c.controlRgn, c.feedbackRgn, c.sharedCfgRgn = maps[0], maps[1], maps[2], maps[3]
	if err := c.wireUp(false); err != nil {
		c.closeRegions(false)
		return nil, err
	}
	log.Printf("mlos: anonymous agent context attached via %s", socketPath)
	return c, nil
}

func (c *Context) closeMaps(maps []*region.Map) {
	for _, m := range maps {
		if m != nil {
			m.Close()
		}
	}
}
