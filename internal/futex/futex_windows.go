// File: internal/futex/futex_windows.go
//go:build windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package futex

import (
	"context"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	modsync2                = windows.NewLazySystemDLL("api-ms-win-core-synch-l1-2-0.dll")
	procWaitOnAddress       = modsync2.NewProc("WaitOnAddress")
	procWakeByAddressSingle = modsync2.NewProc("WakeByAddressSingle")
	procWakeByAddressAll    = modsync2.NewProc("WakeByAddressAll")
)

const pollIntervalMillis = 200

// Wait blocks while *addr == expected, using WaitOnAddress with a bounded
// timeout so ctx cancellation is still observed promptly.
func Wait(ctx context.Context, addr *uint32, expected uint32) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	exp := expected
	ret, _, _ := procWaitOnAddress.Call(
		uintptr(unsafe.Pointer(addr)),
		uintptr(unsafe.Pointer(&exp)),
		4,
		pollIntervalMillis,
	)
	_ = ret // timeouts and spurious wakes both retry in the caller's loop
	return nil
}

// Wake wakes up to n waiters blocked on addr.
func Wake(addr *uint32, n int) error {
	if n == 1 {
		procWakeByAddressSingle.Call(uintptr(unsafe.Pointer(addr)))
		return nil
	}
	procWakeByAddressAll.Call(uintptr(unsafe.Pointer(addr)))
	return nil
}
