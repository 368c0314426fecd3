// File: internal/fdexchange/sentinel.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Sentinel-file rendezvous: a target process watches a well-known
// directory for the agent to create/open a sentinel file, then pushes
// descriptors over the socket. Grounded on the pack's
// fsnotify wrapper, adapted to the single-event "wait for one open, then
// re-arm" protocol this rendezvous needs instead of a general Watcher.

package fdexchange

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// SentinelName is the well-known file the agent opens to signal readiness.
const SentinelName = "mlos.opened"

// SocketName is the well-known Unix-domain socket name in the rendezvous
// directory, listened on by the agent and dialed by the target.
const SocketName = "mlos.sock"

// SentinelWatcher fires Opened whenever the agent touches the sentinel
// file (the agent's side writes a byte to it to announce readiness,
// since plain opens aren't visible to fsnotify's default event set), and
// re-arms itself if the sentinel is removed or renamed (an agent
// restart), per 's "recreate after delete-self" rule. Deletion of the
// directory itself is not handled.
type SentinelWatcher struct {
	dir     string
	path    string
	w       *fsnotify.Watcher
	opened  chan struct{}
	errs    chan error
}

// NewSentinelWatcher creates (if absent) dir/mlos.opened and begins
// watching for the agent to open it.
func NewSentinelWatcher(dir string) (*SentinelWatcher, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, SentinelName)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, err
	}

	sw := &SentinelWatcher{
		dir:    dir,
		path:   path,
		w:      w,
		opened: make(chan struct{}, 1),
		errs:   make(chan error, 1),
	}
	if err := sw.ensureSentinel(); err != nil {
		w.Close()
		return nil, err
	}
	go sw.loop()
	return sw, nil
}

// TouchSentinel is called by the agent side to announce it is ready to
// receive descriptors: it writes a single byte to dir/mlos.opened, which
// the target's SentinelWatcher observes as a Write event.
func TouchSentinel(dir string) error {
	f, err := os.OpenFile(filepath.Join(dir, SentinelName), os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = f.Write([]byte{1})
	return err
}

func (sw *SentinelWatcher) ensureSentinel() error {
	f, err := os.OpenFile(sw.path, os.O_CREATE|os.O_RDONLY, 0o644)
	if err != nil {
		return err
	}
	return f.Close()
}

func (sw *SentinelWatcher) loop() {
	for {
		select {
		case ev, ok := <-sw.w.Events:
			if !ok {
				return
			}
			if ev.Name != sw.path {
				continue
			}
			switch {
			case ev.Op&fsnotify.Write != 0:
				select {
				case sw.opened <- struct{}{}:
				default:
				}
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// Agent restarted and deleted the sentinel it inherited;
				// recreate it so the next open is still observable.
				if err := sw.ensureSentinel(); err != nil {
					select {
					case sw.errs <- err:
					default:
					}
				}
			}
		case err, ok := <-sw.w.Errors:
			if !ok {
				return
			}
			select {
			case sw.errs <- err:
			default:
			}
		}
	}
}

// Wait blocks until the agent opens the sentinel, ctx is canceled, or a
// watcher error occurs.
func (sw *SentinelWatcher) Wait(ctx context.Context) error {
	select {
	case <-sw.opened:
		return nil
	case err := <-sw.errs:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the underlying fsnotify watcher. It does not remove the
// sentinel file, since the agent may still be polling it.
func (sw *SentinelWatcher) Close() error {
	return sw.w.Close()
}
