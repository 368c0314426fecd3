//go:build !linux && !windows
// +build !linux,!windows

// File: internal/region/region_stub.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Stub backing for platforms without a wired mmap primitive.

package region

import "errors"

var errUnsupported = errors.New("region: not supported on this platform")

func createNamedFile(path string, size int) (int, error)   { return 0, errUnsupported }
func createAnonymousFile(size int) (int, error)            { return 0, errUnsupported }
func openNamedFile(path string) (int, error)                { return 0, errUnsupported }
func mmapFD(fd int, size int) ([]byte, error)                { return nil, errUnsupported }
func munmapBytes(data []byte) error                          { return nil }
func closeFD(fd int) error                                    { return nil }
func unlinkPath(path string) error                            { return nil }
func checkOwnerUID(fd int) error                               { return nil }

func dirOf(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '/' {
		i--
	}
	if i <= 0 {
		return "."
	}
	return path[:i]
}
