package port

import (
	"unsafe"

	"github.com/lattice-io/reactorcore/xerrors"
)

// StrictPtr reinterprets buf as a *T, requiring len(buf) == sizeof(T)
// exactly. Used by slot accessors where a message field always carries one
// fixed-size value.
func StrictPtr[T any](buf []byte) (*T, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if len(buf) != size {
		return nil, xerrors.New(xerrors.Invalid, "iovec size does not match sizeof(T)")
	}
	return (*T)(unsafe.Pointer(&buf[0])), nil
}

// RelaxedPtr reinterprets buf as a []T, requiring len(buf) be a multiple of
// sizeof(T). Returns the element count alongside the pointer to the first
// element, mirroring the spec's strict_ptr<T>(out p, out n) overload.
func RelaxedPtr[T any](buf []byte) (*T, int, error) {
	var zero T
	size := int(unsafe.Sizeof(zero))
	if size == 0 || len(buf)%size != 0 {
		return nil, 0, xerrors.New(xerrors.Invalid, "iovec size is not a multiple of sizeof(T)")
	}
	n := len(buf) / size
	if n == 0 {
		return nil, 0, nil
	}
	return (*T)(unsafe.Pointer(&buf[0])), n, nil
}
