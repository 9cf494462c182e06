//go:build darwin

package submit

import "golang.org/x/sys/unix"

// Darwin has no eventfd; a self-pipe of one byte per post stands in for it.
// createEventFD returns the read end; postOne/drain operate on it via a
// package-level write-end table since reactor.Provider only exposes one fd.
var writeEnds = map[int]int{}

func createEventFD() (int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, err
	}
	if err := unix.SetNonblock(fds[0], true); err != nil {
		return 0, err
	}
	if err := unix.SetNonblock(fds[1], true); err != nil {
		return 0, err
	}
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

// drain reads and discards all pending wake-up bytes, returning how many
// were seen.
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
