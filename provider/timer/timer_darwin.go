//go:build darwin

package timer

import (
	"time"

	"golang.org/x/sys/unix"
)

// Darwin has no timerfd. We fall back to a background goroutine that sleeps
// and writes a byte to a self-pipe, giving the timer provider the same
// "readable fd" shape the Linux backend exposes.
type darwinTimer struct {
	readFd, writeFd int
	stop            chan struct{}
}

var registry = map[int]*darwinTimer{}

func createTimerFD() (int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, err
	}
	_ = unix.SetNonblock(fds[0], true)
	_ = unix.SetNonblock(fds[1], true)
	registry[fds[0]] = &darwinTimer{readFd: fds[0], writeFd: fds[1]}
	return fds[0], nil
}

func armTimerFD(fd int, begin, interval time.Duration, absolute bool) error {
	t, ok := registry[fd]
	if !ok {
		return unix.EBADF
	}
	if t.stop != nil {
		close(t.stop)
	}
	stop := make(chan struct{})
	t.stop = stop

	go func() {
		timer := time.NewTimer(begin)
		for {
			select {
			case <-stop:
				timer.Stop()
				return
			case <-timer.C:
				_, _ = unix.Write(t.writeFd, []byte{1})
				if interval <= 0 {
					return
				}
				timer.Reset(interval)
			}
		}
	}()
	return nil
}

func closeTimerFD(fd int) error {
	t, ok := registry[fd]
	if !ok {
		return unix.EBADF
	}
	if t.stop != nil {
		close(t.stop)
	}
	delete(registry, fd)
	_ = unix.Close(t.readFd)
	_ = unix.Close(t.writeFd)
	return nil
}

func readExpirations(fd int) (uint64, error) {
	var buf [256]byte
	var total uint64
	for {
		n, err := unix.Read(fd, buf[:])
		if err != nil {
			if err == unix.EAGAIN {
				return total, nil
			}
			return total, err
		}
		if n <= 0 {
			return total, nil
		}
		total += uint64(n)
	}
}
