//go:build linux

package flagsync

import (
	"encoding/binary"

	"golang.org/x/sys/unix"
)

func createEventFD() (int, error) {
	return unix.Eventfd(0, unix.EFD_CLOEXEC|unix.EFD_NONBLOCK)
}

func postOne(fd int) error {
	var buf [8]byte
	binary.NativeEndian.PutUint64(buf[:], 1)
	_, err := unix.Write(fd, buf[:])
	return err
}

func drain(fd int) (uint64, error) {
	var buf [8]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return 0, nil
		}
		return 0, err
	}
	if n != 8 {
		return 0, nil
	}
	return binary.NativeEndian.Uint64(buf[:]), nil
}
