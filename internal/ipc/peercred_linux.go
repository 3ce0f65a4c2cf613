//go:build linux

package ipc

import (
	"net"

	"golang.org/x/sys/unix"
)

type peerCred struct {
	PID int32
	UID uint32
}

func peerCredentials(conn *net.UnixConn) (peerCred, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return peerCred{}, err
	}
	var ucred *unix.Ucred
	var serr error
	err = raw.Control(func(fd uintptr) {
		ucred, serr = unix.GetsockoptUcred(int(fd), unix.SOL_SOCKET, unix.SO_PEERCRED)
	})
	if err != nil {
		return peerCred{}, err
	}
	if serr != nil {
		return peerCred{}, serr
	}
	return peerCred{PID: ucred.Pid, UID: ucred.Uid}, nil
}
