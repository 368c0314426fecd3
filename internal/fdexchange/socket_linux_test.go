// File: internal/fdexchange/socket_linux_test.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package fdexchange

import (
	"net"
	"os"
	"testing"

	"golang.org/x/sys/unix"

	"github.com/momentics/mlos-sub000/api"
)

func unixConnPair(t *testing.T) (*net.UnixConn, *net.UnixConn) {
	t.Helper()
	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair: %v", err)
	}
	connFromFD := func(fd int) *net.UnixConn {
		f := os.NewFile(uintptr(fd), "sock")
		c, err := net.FileConn(f)
		f.Close()
		if err != nil {
			t.Fatalf("FileConn: %v", err)
		}
		uc, ok := c.(*net.UnixConn)
		if !ok {
			t.Fatalf("not a UnixConn")
		}
		return uc
	}
	return connFromFD(fds[0]), connFromFD(fds[1])
}

func TestSendRecvDescriptorsCarriesFD(t *testing.T) {
	a, b := unixConnPair(t)
	defer a.Close()
	defer b.Close()

	tmp, err := os.CreateTemp(t.TempDir(), "region")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	defer tmp.Close()

	records := []Record{{RegionType: api.RegionGlobal, RegionIndex: 0, RegionSize: 65536, ContainsFD: true}}
	done := make(chan error, 1)
	go func() {
		done <- SendDescriptors(a, records, []int{int(tmp.Fd())})
	}()

	got, fds, err := RecvDescriptors(b, 1)
	if err != nil {
		t.Fatalf("RecvDescriptors: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("SendDescriptors: %v", err)
	}

	if got[0].RegionType != api.RegionGlobal || got[0].RegionSize != 65536 || !got[0].ContainsFD {
		t.Fatalf("unexpected record: %+v", got[0])
	}
	if fds[0] < 0 {
		t.Fatalf("expected a received descriptor")
	}
	unix.Close(fds[0])
}
