package port

import (
	"net"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"

	"github.com/lattice-io/reactorcore/xerrors"
)

// NewTCPSocket creates an unconnected, close-on-exec AF_INET stream socket,
// the "make_port()" step the connector performs before issuing a
// non-blocking connect (spec.md §4.D: "On on_manage... issues connect").
func NewTCPSocket() (*Port, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, xerrors.Errno(err, "socket AF_INET")
	}
	return FromFD(fd), nil
}

// NewUnixSocket creates an unconnected, close-on-exec AF_UNIX stream socket.
func NewUnixSocket() (*Port, error) {
	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		return nil, xerrors.Errno(err, "socket AF_UNIX")
	}
	return FromFD(fd), nil
}

// Connect issues a (possibly non-blocking) connect(2) to addr, a "host:port"
// string for TCP sockets or a filesystem path for Unix sockets. If the
// socket is non-blocking and the kernel has not finished the handshake, a
// xerrors.InProgress error is returned (mirrors spec.md's EINPROGRESS case,
// which the connector provider treats as "keep waiting").
func (p *Port) Connect(network, addr string) error {
	sa, err := sockaddr(network, addr)
	if err != nil {
		return err
	}
	if err := unix.Connect(p.Fd(), sa); err != nil {
		if err == unix.EINPROGRESS {
			return xerrors.New(xerrors.InProgress, "connect in progress")
		}
		return xerrors.Errno(err, "connect")
	}
	return nil
}

func sockaddr(network, addr string) (unix.Sockaddr, error) {
	switch network {
	case "tcp", "tcp4", "tcp6":
		host, portStr, err := net.SplitHostPort(addr)
		if err != nil {
			return nil, xerrors.Errno(err, "split host port")
		}
		portNum, err := strconv.Atoi(portStr)
		if err != nil {
			return nil, xerrors.New(xerrors.Invalid, "bad port in address")
		}
		ip := net.ParseIP(host)
		if ip == nil {
			ips, err := net.LookupIP(host)
			if err != nil || len(ips) == 0 {
				return nil, xerrors.Errno(err, "resolve host")
			}
			ip = ips[0]
		}
		if v4 := ip.To4(); v4 != nil {
			var sa unix.SockaddrInet4
			sa.Port = portNum
			copy(sa.Addr[:], v4)
			return &sa, nil
		}
		var sa unix.SockaddrInet6
		sa.Port = portNum
		copy(sa.Addr[:], ip.To16())
		return &sa, nil
	case "unix", "unixgram", "unixpacket":
		if strings.TrimSpace(addr) == "" {
			return nil, xerrors.New(xerrors.Invalid, "empty unix socket path")
		}
		return &unix.SockaddrUnix{Name: addr}, nil
	default:
		return nil, xerrors.New(xerrors.Invalid, "unsupported network: "+network)
	}
}
