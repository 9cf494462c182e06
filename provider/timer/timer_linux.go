//go:build linux

package timer

import (
	"encoding/binary"
	"time"

	"golang.org/x/sys/unix"
)

func createTimerFD() (int, error) {
	return unix.TimerfdCreate(unix.CLOCK_MONOTONIC, unix.TFD_CLOEXEC|unix.TFD_NONBLOCK)
}

func closeTimerFD(fd int) error {
	return unix.Close(fd)
}

func armTimerFD(fd int, begin, interval time.Duration, absolute bool) error {
	spec := unix.ItimerSpec{
		Value:    unix.NsecToTimespec(begin.Nanoseconds()),
		Interval: unix.NsecToTimespec(interval.Nanoseconds()),
	}
	var flags int
	if absolute {
		flags = unix.TFD_TIMER_ABSTIME
	}
	return unix.TimerfdSettime(fd, flags, &spec, nil)
}

// readExpirations returns the expiration counter, or 0/err on EAGAIN or a
// real read error.
func readExpirations(fd int) (uint64, error) {
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
