// File: internal/futex/futex_stub.go
//go:build !linux && !windows

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package futex

import (
	"context"
	"errors"
)

var errUnsupported = errors.New("futex: not supported on this platform")

func Wait(ctx context.Context, addr *uint32, expected uint32) error {
	return errUnsupported
}

func Wake(addr *uint32, n int) error {
	return errUnsupported
}
