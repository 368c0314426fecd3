//go:build windows
// +build windows

// File: internal/region/region_windows.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows backing for region mappings via CreateFileMapping/MapViewOfFile,
// following the direct kernel32 syscall style affinity_windows.go uses
// rather than pulling in golang.org/x/sys/windows.

package region

import (
	"fmt"
	"os"
	"syscall"
	"unsafe"
)

var (
	kernel32             = syscall.NewLazyDLL("kernel32.dll")
	procCreateFileW       = kernel32.NewProc("CreateFileW")
	procCreateFileMapping = kernel32.NewProc("CreateFileMappingW")
	procMapViewOfFile     = kernel32.NewProc("MapViewOfFile")
	procUnmapViewOfFile   = kernel32.NewProc("UnmapViewOfFile")
	procCloseHandle       = kernel32.NewProc("CloseHandle")
)

const (
	genericRead        = 0x80000000
	genericWrite       = 0x40000000
	fileShareRead       = 0x00000001
	fileShareWrite      = 0x00000002
	createAlways        = 2
	openExisting        = 3
	fileAttributeNormal = 0x80
	pageReadWrite       = 0x04
	fileMapAllAccess    = 0xF001F
	invalidHandleValue  = ^uintptr(0)
)

// mapHandle remembers the CreateFileMapping handle alongside the backing
// file handle (fd), since Windows needs both to tear a mapping down.
type mapHandle struct {
	file    syscall.Handle
	mapping syscall.Handle
}

var liveHandles = map[int]*mapHandle{}
var nextFakeFD = 1

func createNamedFile(path string, size int) (int, error) {
	if err := os.MkdirAll(dirOf(path), 0o755); err != nil {
		return 0, err
	}
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	h, _, callErr := procCreateFileW.Call(
		uintptr(unsafe.Pointer(p)),
		uintptr(genericRead|genericWrite),
		uintptr(fileShareRead|fileShareWrite),
		0,
		uintptr(createAlways),
		uintptr(fileAttributeNormal),
		0,
	)
	if h == 0 || h == invalidHandleValue {
		return 0, fmt.Errorf("CreateFileW: %w", callErr)
	}
	return registerMapping(syscall.Handle(h), size)
}

func createAnonymousFile(size int) (int, error) {
	return registerMapping(syscall.Handle(invalidHandleValue), size)
}

func openNamedFile(path string) (int, error) {
	p, err := syscall.UTF16PtrFromString(path)
	if err != nil {
		return 0, err
	}
	h, _, callErr := procCreateFileW.Call(
		uintptr(unsafe.Pointer(p)),
		uintptr(genericRead|genericWrite),
		uintptr(fileShareRead|fileShareWrite),
		0,
		uintptr(openExisting),
		uintptr(fileAttributeNormal),
		0,
	)
	if h == 0 || h == invalidHandleValue {
		return 0, fmt.Errorf("CreateFileW: %w", callErr)
	}
	return registerMapping(syscall.Handle(h), 0)
}

func registerMapping(file syscall.Handle, size int) (int, error) {
	hi := uint32(uint64(size) >> 32)
	lo := uint32(uint64(size))
	h, _, callErr := procCreateFileMapping.Call(
		uintptr(file), 0, uintptr(pageReadWrite), uintptr(hi), uintptr(lo), 0,
	)
	if h == 0 {
		return 0, fmt.Errorf("CreateFileMappingW: %w", callErr)
	}
	fd := nextFakeFD
	nextFakeFD++
	liveHandles[fd] = &mapHandle{file: file, mapping: syscall.Handle(h)}
	return fd, nil
}

func mmapFD(fd int, size int) ([]byte, error) {
	hm, ok := liveHandles[fd]
	if !ok {
		return nil, fmt.Errorf("region: unknown handle %d", fd)
	}
	addr, _, callErr := procMapViewOfFile.Call(uintptr(hm.mapping), uintptr(fileMapAllAccess), 0, 0, uintptr(size))
	if addr == 0 {
		return nil, fmt.Errorf("MapViewOfFile: %w", callErr)
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), size), nil
}

func munmapBytes(data []byte) error {
	if len(data) == 0 {
		return nil
	}
	procUnmapViewOfFile.Call(uintptr(unsafe.Pointer(&data[0])))
	return nil
}

func closeFD(fd int) error {
	hm, ok := liveHandles[fd]
	if !ok {
		return nil
	}
	procCloseHandle.Call(uintptr(hm.mapping))
	if hm.file != syscall.Handle(invalidHandleValue) {
		procCloseHandle.Call(uintptr(hm.file))
	}
	delete(liveHandles, fd)
	return nil
}

func unlinkPath(path string) error {
	err := os.Remove(path)
	if err != nil && os.IsNotExist(err) {
		return nil
	}
	return err
}

// checkOwnerUID is a no-op on Windows: the core's AccessDenied check is
// defined in terms of POSIX uid ownership, which has no
// direct Windows analogue without pulling in the security-descriptor API.
func checkOwnerUID(fd int) error {
	return nil
}

func dirOf(path string) string {
	i := len(path) - 1
	for i >= 0 && path[i] != '\\' && path[i] != '/' {
		i--
	}
	if i <= 0 {
		return "."
	}
	return path[:i]
}
