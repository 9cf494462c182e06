//go:build darwin

package inotify

import (
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// Darwin has no inotify syscall family; this backend polls watched paths'
// mtime on a short interval and synthesises Modified/Deleted events,
// trading precision (no Created/MovedFrom/MovedTo distinction, coarse
// latency) for the same readable-fd shape the Linux backend exposes. Mask
// bits below are the subset this backend can plausibly emit.
const (
	Accessed  = 0
	Modified  = 1 << 0
	AttribMod = 0
	Created   = 0
	Deleted   = 1 << 1
	MovedFrom = 0
	MovedTo   = 0
	SelfDel   = 1 << 1
)

const pollInterval = 200 * time.Millisecond

type watch struct {
	path    string
	mask    uint32
	modTime time.Time
	exists  bool
}

type darwinState struct {
	readFd, writeFd int

	mu      sync.Mutex
	nextWD  int32
	watches map[WatchDescriptor]*watch
	stop    chan struct{}
}

var (
	registryMu sync.Mutex
	registry   = map[int]*darwinState{}
)

func initInotify() (int, error) {
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		return 0, err
	}
	_ = unix.SetNonblock(fds[0], true)
	_ = unix.SetNonblock(fds[1], true)

	st := &darwinState{
		readFd:  fds[0],
		writeFd: fds[1],
		watches: make(map[WatchDescriptor]*watch),
		stop:    make(chan struct{}),
	}
	registryMu.Lock()
	registry[fds[0]] = st
	registryMu.Unlock()
	go st.poll()
	return fds[0], nil
}

func (st *darwinState) poll() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			st.scan()
		}
	}
}

func (st *darwinState) scan() {
	st.mu.Lock()
	fired := false
	for _, w := range st.watches {
		info, err := os.Stat(w.path)
		switch {
		case err != nil:
			if w.exists {
				w.exists = false
				fired = true
			}
		case !w.exists || info.ModTime().After(w.modTime):
			w.exists = true
			w.modTime = info.ModTime()
			fired = true
		}
	}
	st.mu.Unlock()
	if fired {
		_, _ = unix.Write(st.writeFd, []byte{1})
	}
}

func addWatch(fd int, path string, mask uint32) (WatchDescriptor, error) {
	registryMu.Lock()
	st, ok := registry[fd]
	registryMu.Unlock()
	if !ok {
		return 0, unix.EBADF
	}
	info, _ := os.Stat(path)
	w := &watch{path: path, mask: mask}
	if info != nil {
		w.exists = true
		w.modTime = info.ModTime()
	}
	st.mu.Lock()
	st.nextWD++
	wd := WatchDescriptor(st.nextWD)
	st.watches[wd] = w
	st.mu.Unlock()
	return wd, nil
}

func rmWatch(fd int, wd WatchDescriptor) error {
	registryMu.Lock()
	st, ok := registry[fd]
	registryMu.Unlock()
	if !ok {
		return unix.EBADF
	}
	st.mu.Lock()
	delete(st.watches, wd)
	st.mu.Unlock()
	return nil
}

func readEvents(fd int) ([]Event, error) {
	var buf [256]byte
	n, err := unix.Read(fd, buf[:])
	if err != nil {
		if err == unix.EAGAIN {
			return nil, nil
		}
		return nil, err
	}
	if n <= 0 {
		return nil, nil
	}

	registryMu.Lock()
	st, ok := registry[fd]
	registryMu.Unlock()
	if !ok {
		return nil, nil
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	var out []Event
	for wd, w := range st.watches {
		if !w.exists {
			out = append(out, Event{WD: wd, Mask: Deleted})
			continue
		}
		out = append(out, Event{WD: wd, Mask: Modified})
	}
	return out, nil
}
