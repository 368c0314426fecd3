// File: internal/fdexchange/socket_linux.go
//go:build linux

// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// SCM_RIGHTS descriptor exchange over a Unix-domain socket: the anonymous
// region fds a target creates are handed to the attaching agent this way
// instead of by a named path, using unix.Sendmsg/Recvmsg ancillary data.

package fdexchange

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// SendDescriptors writes records (in order) to conn, carrying fds[i] as
// ancillary data whenever records[i].ContainsFD is true. len(fds) must
// equal the number of true-ContainsFD records, in order.
func SendDescriptors(conn *net.UnixConn, records []Record, fds []int) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("fdexchange: raw conn: %w", err)
	}

	fdIdx := 0
	var sendErr error
	for _, rec := range records {
		payload := rec.Encode()
		var oob []byte
		if rec.ContainsFD {
			if fdIdx >= len(fds) {
				return fmt.Errorf("fdexchange: record claims a descriptor but none remain")
			}
			oob = unix.UnixRights(fds[fdIdx])
			fdIdx++
		}
		ctrlErr := rawConn.Write(func(fd uintptr) bool {
			sendErr = unix.Sendmsg(int(fd), payload, oob, nil, 0)
			return true
		})
		if ctrlErr != nil {
			return fmt.Errorf("fdexchange: raw conn write: %w", ctrlErr)
		}
		if sendErr != nil {
			return fmt.Errorf("fdexchange: sendmsg: %w", sendErr)
		}
	}
	return nil
}

// RecvDescriptors reads count fixed-size records from conn, returning each
// record and, for ones with ContainsFD set, the received descriptor (-1
// otherwise).
func RecvDescriptors(conn *net.UnixConn, count int) ([]Record, []int, error) {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return nil, nil, fmt.Errorf("fdexchange: raw conn: %w", err)
	}

	records := make([]Record, 0, count)
	fds := make([]int, 0, count)

	for i := 0; i < count; i++ {
		buf := make([]byte, RecordSize)
		oob := make([]byte, unix.CmsgSpace(4))
		var n, oobn int
		var recvErr error

		ctrlErr := rawConn.Read(func(fd uintptr) bool {
			n, oobn, _, _, recvErr = unix.Recvmsg(int(fd), buf, oob, 0)
			return true
		})
		if ctrlErr != nil {
			return nil, nil, fmt.Errorf("fdexchange: raw conn read: %w", ctrlErr)
		}
		if recvErr != nil {
			return nil, nil, fmt.Errorf("fdexchange: recvmsg: %w", recvErr)
		}
		if n < RecordSize {
			return nil, nil, fmt.Errorf("fdexchange: short record: got %d bytes, want %d", n, RecordSize)
		}

		rec := DecodeRecord(buf)
		fd := -1
		if rec.ContainsFD && oobn > 0 {
			scms, err := unix.ParseSocketControlMessage(oob[:oobn])
			if err != nil {
				return nil, nil, fmt.Errorf("fdexchange: parse control message: %w", err)
			}
			for _, scm := range scms {
				rights, err := unix.ParseUnixRights(&scm)
				if err == nil && len(rights) > 0 {
					fd = rights[0]
					break
				}
			}
		}
		records = append(records, rec)
		fds = append(fds, fd)
	}
	return records, fds, nil
}
