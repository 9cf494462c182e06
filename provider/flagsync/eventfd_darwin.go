//go:build darwin

package flagsync

import "golang.org/x/sys/unix"

// Darwin has no eventfd; a self-pipe stands in for it, same trick as
// provider/submit's Darwin backend.
var writeEnds = map[int]int{}

func createEventFD() (int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, err
	}
	_ = unix.SetNonblock(fds[0], true)
	_ = unix.SetNonblock(fds[1], true)
	writeEnds[fds[0]] = fds[1]
	return fds[0], nil
}

func postOne(readFd int) error {
	w, ok := writeEnds[readFd]
	if !ok {
		return unix.EBADF
	}
	_, err := unix.Write(w, []byte{1})
	return err
}

func drain(fd int) (uint64, error) {
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
