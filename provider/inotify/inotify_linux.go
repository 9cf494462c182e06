//go:build linux

package inotify

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// Mask bits mirror the kernel's IN_* constants, re-exported under these
// names so callers don't need to import golang.org/x/sys/unix themselves.
const (
	Accessed  = unix.IN_ACCESS
	Modified  = unix.IN_MODIFY
	AttribMod = unix.IN_ATTRIB
	Created   = unix.IN_CREATE
	Deleted   = unix.IN_DELETE
	MovedFrom = unix.IN_MOVED_FROM
	MovedTo   = unix.IN_MOVED_TO
	SelfDel   = unix.IN_DELETE_SELF
)

func initInotify() (int, error) {
	return unix.InotifyInit1(unix.IN_CLOEXEC | unix.IN_NONBLOCK)
}

func addWatch(fd int, path string, mask uint32) (WatchDescriptor, error) {
	wd, err := unix.InotifyAddWatch(fd, path, mask)
	if err != nil {
		return 0, err
	}
	return WatchDescriptor(wd), nil
}

func rmWatch(fd int, wd WatchDescriptor) error {
	_, err := unix.InotifyRmWatch(fd, uint32(wd))
	return err
}

// eventHeaderSize is sizeof(struct inotify_event) sans the trailing name.
const eventHeaderSize = unsafe.Sizeof(unix.InotifyEvent{})

func readEvents(fd int) ([]Event, error) {
	var buf [8192]byte
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

	var out []Event
	off := 0
	for off+int(eventHeaderSize) <= n {
		raw := (*unix.InotifyEvent)(unsafe.Pointer(&buf[off]))
		var name string
		if raw.Len > 0 {
			nameBytes := buf[off+int(eventHeaderSize) : off+int(eventHeaderSize)+int(raw.Len)]
			if idx := indexByte(nameBytes, 0); idx >= 0 {
				nameBytes = nameBytes[:idx]
			}
			name = string(nameBytes)
		}
		out = append(out, Event{
			WD:     WatchDescriptor(raw.Wd),
			Mask:   raw.Mask,
			Cookie: raw.Cookie,
			Name:   name,
		})
		off += int(eventHeaderSize) + int(raw.Len)
	}
	return out, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}
