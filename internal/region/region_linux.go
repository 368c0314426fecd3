//go:build linux
// +build linux

// File: internal/region/region_linux.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux backing for named (shm_open-equivalent) and anonymous
// (memfd_create) region mappings, grounded on the mmap usage in the
// teacher's transport layer and on golang.org/x/sys/unix throughout.

package region

import (
	"os"

	"github.com/momentics/mlos-sub000/api"
	"golang.org/x/sys/unix"
)

func createNamedFile(path string, size int) (int, error) {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return 0, err
	}
	fd, err := unix.Open(path, unix.O_CREAT|unix.O_RDWR|unix.O_TRUNC, 0o600)
	if err != nil {
		return 0, err
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return 0, err
	}
	return fd, nil
}

func createAnonymousFile(size int) (int, error) {
	fd, err := unix.MemfdCreate("mlos-region", 0)
	if err != nil {
		return 0, err
	}
	if err := unix.Ftruncate(fd, int64(size)); err != nil {
		unix.Close(fd)
		return 0, err
	}
	return fd, nil
}

func openNamedFile(path string) (int, error) {
	return unix.Open(path, unix.O_RDWR, 0)
}

func mmapFD(fd int, size int) ([]byte, error) {
	return unix.Mmap(fd, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
}

func munmapBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	return unix.Munmap(data)
}

func closeFD(fd int) error {
	return unix.Close(fd)
}

func unlinkPath(path string) error {
	err := unix.Unlink(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// checkOwnerUID verifies the mapping's owning uid matches the current
// process, the only authorization check this core performs.
func checkOwnerUID(fd int) error {
	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		return wrapOSError("region: fstat", err)
	}
	if st.Uid != uint32(os.Getuid()) {
		return api.NewError(api.ErrCodeAccessDenied, "region: mapping owned by a different user").
			WithContext("owner_uid", st.Uid).WithContext("our_uid", os.Getuid())
	}
	return nil
}

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
