// File: internal/region/region.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Map is the OS-backed shared-memory mapping every other component is laid
// out on top of. Platform primitives (open/create/mmap/unlink)
// live in region_linux.go / region_windows.go / region_stub.go, selected by
// build tag, following the same split affinity/affinity_linux.go uses.

package region

import (
	"log"

	"github.com/momentics/mlos-sub000/api"
)

// Map implements api.Region. A Map exclusively owns its mapping: copying a
// Map is forbidden (pass a pointer), and only Close relinquishes ownership.
type Map struct {
	data       []byte
	fd         int
	path       string
	created    bool // true if this handle created the backing object
	named      bool // true if backed by a named filesystem path
	regionType api.RegionType
}

var _ api.Region = (*Map)(nil)

// Options configures MapNew.
type Options struct {
	Path          string // empty => anonymous (memfd) mapping
	Size          int
	RegionType    api.RegionType
	CodegenTypeID uint32
	RegionID      uint64
}

// hasHeader reports whether regionType carries a region header. Channel
// regions have none — the whole mapping is ring buffer.
func hasHeader(t api.RegionType) bool {
	return t != api.RegionControlChannel && t != api.RegionFeedbackChannel
}

// MapNew creates a fresh region: a named file at opts.Path, or an
// anonymous (memfd) mapping when opts.Path is empty. The mapping is zeroed
// and, unless this is a channel region, a header is installed.
func MapNew(opts Options) (*Map, error) {
	if opts.Size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalid, "region: size must be positive")
	}
	var fd int
	var err error
	named := opts.Path != ""
	if named {
		fd, err = createNamedFile(opts.Path, opts.Size)
	} else {
		fd, err = createAnonymousFile(opts.Size)
	}
	if err != nil {
		return nil, wrapOSError("region: create", err)
	}
	data, err := mmapFD(fd, opts.Size)
	if err != nil {
		closeFD(fd)
		if named {
			unlinkPath(opts.Path)
		}
		return nil, wrapOSError("region: mmap", err)
	}
	clear(data)
	if hasHeader(opts.RegionType) {
		PutHeader(data, uint32(opts.Size), opts.CodegenTypeID, opts.RegionID)
	}
	return &Map{
		data:       data,
		fd:         fd,
		path:       opts.Path,
		created:    true,
		named:      named,
		regionType: opts.RegionType,
	}, nil
}

// ExistOptions configures MapExisting.
type ExistOptions struct {
	Path       string // named attach path, or empty if FD is already open
	FD         int    // descriptor received over fdexchange, when Path == ""
	Size       int    // expected mapping size
	RegionType api.RegionType
}

// MapExisting attaches to a region created by another handle, verifying
// the header's signature and size for non-channel regions, and (on Linux)
// that the mapping's owning uid matches the current process.
func MapExisting(opts ExistOptions) (*Map, error) {
	if opts.Size <= 0 {
		return nil, api.NewError(api.ErrCodeInvalid, "region: size must be positive")
	}
	named := opts.Path != ""
	fd := opts.FD
	if named {
		var err error
		fd, err = openNamedFile(opts.Path)
		if err != nil {
			return nil, wrapOSError("region: open", err)
		}
	}
	if err := checkOwnerUID(fd); err != nil {
		if !named {
			// fd was handed to us, not ours to close on this path's early exit
		} else {
			closeFD(fd)
		}
		return nil, err
	}
	data, err := mmapFD(fd, opts.Size)
	if err != nil {
		if named {
			closeFD(fd)
		}
		return nil, wrapOSError("region: mmap", err)
	}
	if hasHeader(opts.RegionType) {
		hdr := ReadHeader(data)
		if verr := hdr.Verify(opts.Size); verr != nil {
			munmapBytes(data)
			if named {
				closeFD(fd)
			}
			return nil, verr
		}
	}
	return &Map{
		data:       data,
		fd:         fd,
		path:       opts.Path,
		created:    false,
		named:      named,
		regionType: opts.RegionType,
	}, nil
}

// Bytes returns the full mapped extent.
func (m *Map) Bytes() []byte { return m.data }

// Size returns len(Bytes()).
func (m *Map) Size() int { return len(m.data) }

// Type reports which region kind this mapping holds.
func (m *Map) Type() api.RegionType { return m.regionType }

// FD returns the underlying OS descriptor, for handing to fdexchange.
func (m *Map) FD() uintptr { return uintptr(m.fd) }

// Close unmaps the region without unlinking a named backing file; use
// CloseWithCleanup(true) for that.
func (m *Map) Close() error {
	return m.CloseWithCleanup(false)
}

// CloseWithCleanup is Close with explicit control over named-resource
// unlink, for the refcounted teardown path in the context package.
func (m *Map) CloseWithCleanup(cleanupOnClose bool) error {
	if err := munmapBytes(m.data); err != nil {
		log.Printf("region: munmap %s: %v", m.path, err)
	}
	if err := closeFD(m.fd); err != nil {
		log.Printf("region: close fd for %s: %v", m.path, err)
	}
	if cleanupOnClose && m.created && m.named {
		if err := unlinkPath(m.path); err != nil {
			log.Printf("region: unlink %s: %v", m.path, err)
		}
	}
	return nil
}

func wrapOSError(msg string, err error) error {
	return api.NewError(api.ErrCodeOsError, msg).WithContext("os_error", err.Error())
}
