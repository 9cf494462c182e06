package port

import (
	"encoding/binary"

	"github.com/lattice-io/reactorcore/xerrors"
)

// endianMarker is written in native byte order by the sender; a reader that
// decodes it as anything else knows the peer is the opposite endianness.
const endianMarker uint32 = 0x01020304

// headerSize is the fixed on-wire header: a 4-byte endian marker followed by
// a 2-byte slot count.
const headerSize = 6

// MsgBuf is the multipart message buffer of spec.md §4.C: N payload slots,
// framed as header + per-slot byte counts + payloads and moved over the
// wire via read_n/write_v. The header holds only the endian marker and the
// slot count; MsgBuf carries no user-defined typed header.
type MsgBuf struct {
	NumSlots int
	Slots    [][]byte
}

// NewMsgBuf allocates a buffer with n empty slots.
func NewMsgBuf(n int) *MsgBuf {
	return &MsgBuf{NumSlots: n, Slots: make([][]byte, n)}
}

// Recv reads one message off sock: the fixed header, then for each slot the
// header announces (NumSlots and Slots are replaced to match that count) a
// 4-byte length prefix followed by that many payload bytes. Fields are
// decoded in this host's native byte order; if the header's endian marker
// is byte-reversed relative to ours,
// the port's reverse-endian flag is set and 32-bit fields (slot lengths)
// are swapped as they're read.
func (m *MsgBuf) Recv(sock Socket) IoResult {
	hdr := make([]byte, headerSize)
	if res := readFull(sock, hdr); res.Status != IoOk {
		return res
	}

	marker := binary.NativeEndian.Uint32(hdr[0:4])
	swap := false
	switch marker {
	case endianMarker:
		swap = false
	case swapUint32(endianMarker):
		swap = true
	default:
		return IoResult{Status: IoError, Err: xerrors.New(xerrors.Invalid, "bad endian marker in message header")}
	}
	sock.SetDifferentEndian(swap)

	slotCount := binary.NativeEndian.Uint16(hdr[4:6])
	if swap {
		slotCount = swapUint16(slotCount)
	}
	m.NumSlots = int(slotCount)
	m.Slots = make([][]byte, m.NumSlots)

	for i := 0; i < m.NumSlots; i++ {
		lenBuf := make([]byte, 4)
		if res := readFull(sock, lenBuf); res.Status != IoOk {
			return res
		}
		n := binary.NativeEndian.Uint32(lenBuf)
		if swap {
			n = swapUint32(n)
		}
		payload := make([]byte, n)
		if n > 0 {
			if res := readFull(sock, payload); res.Status != IoOk {
				return res
			}
		}
		m.Slots[i] = payload
	}
	return IoResult{Status: IoOk, N: headerSize}
}

// Send concatenates header + slot-sizes + payloads and writes them via a
// single writev call. Every multi-byte field is written in this host's
// native byte order; a receiver on the opposite-endian host decodes the
// marker as swapUint32(endianMarker) and knows to un-swap every other
// field that follows.
func (m *MsgBuf) Send(sock Socket) IoResult {
	hdr := make([]byte, headerSize)
	binary.NativeEndian.PutUint32(hdr[0:4], endianMarker)
	binary.NativeEndian.PutUint16(hdr[4:6], uint16(len(m.Slots)))

	iovs := make([][]byte, 0, 1+2*len(m.Slots))
	iovs = append(iovs, hdr)
	lenBufs := make([][]byte, len(m.Slots))
	for i, slot := range m.Slots {
		lb := make([]byte, 4)
		binary.NativeEndian.PutUint32(lb, uint32(len(slot)))
		lenBufs[i] = lb
		iovs = append(iovs, lb, slot)
	}
	return sock.WriteV(iovs)
}

// DeepCopy returns a MsgBuf with independently-owned slot storage.
func (m *MsgBuf) DeepCopy() *MsgBuf {
	out := NewMsgBuf(m.NumSlots)
	for i, s := range m.Slots {
		c := make([]byte, len(s))
		copy(c, s)
		out.Slots[i] = c
	}
	return out
}

// MoveIov transfers slot i's storage out of m into the return value, leaving
// m's slot nil. Mirrors the spec's move_iov, avoiding a copy when forwarding
// a payload into another buffer.
func (m *MsgBuf) MoveIov(i int) []byte {
	s := m.Slots[i]
	m.Slots[i] = nil
	return s
}

// BorrowIovFrom installs src's slot i directly as this buffer's slot j,
// without copying, for cheap forwarding between buffers.
func (m *MsgBuf) BorrowIovFrom(j int, src *MsgBuf, i int) {
	m.Slots[j] = src.Slots[i]
}

func readFull(sock Socket, buf []byte) IoResult {
	off := 0
	for off < len(buf) {
		res := sock.ReadN(buf[off:])
		switch res.Status {
		case IoOk:
			off += res.N
		default:
			return res
		}
	}
	return IoResult{Status: IoOk, N: off}
}

func swapUint32(v uint32) uint32 {
	return (v&0x000000FF)<<24 | (v&0x0000FF00)<<8 | (v&0x00FF0000)>>8 | (v&0xFF000000)>>24
}

func swapUint16(v uint16) uint16 {
	return v<<8 | v>>8
}
