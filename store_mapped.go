//go:build !windows

package hyperband

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// mappedStore backs an Image with a single mmap'd region covering
// [offset, offset+length) of file. Reads and writes are plain slice copies;
// the kernel's page cache does the actual I/O, which is the "mapped"
// backend's whole reason for existing (spec.md §4.2).
type mappedStore struct {
	file   *os.File
	data   []byte
	length int64
}

func newMappedStore(file *os.File, offset, length int64, writable bool) (BackingStore, error) {
	prot := unix.PROT_READ
	if writable {
		prot |= unix.PROT_WRITE
	}
	data, err := unix.Mmap(int(file.Fd()), offset, int(length), prot, unix.MAP_SHARED)
	if err != nil {
		return nil, newError(KindIO, "mmap backing file", err)
	}
	return &mappedStore{file: file, data: data, length: length}, nil
}

func (m *mappedStore) Len() int64 { return m.length }

func (m *mappedStore) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off > m.length {
		return 0, newError(KindIO, "read offset out of range", nil)
	}
	n := copy(p, m.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

func (m *mappedStore) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off > m.length {
		return 0, newError(KindIO, "write offset out of range", nil)
	}
	n := copy(m.data[off:], p)
	if n < len(p) {
		return n, newError(KindIO, "short write: destination region too small", nil)
	}
	return n, nil
}

// Bytes exposes the whole mapped region for read access. The pixel iterator
// model does not use it; iterators read through Image.At.
func (m *mappedStore) Bytes() []byte { return m.data }

// BytesMut exposes the whole mapped region for in-place writes.
func (m *mappedStore) BytesMut() []byte { return m.data }

func (m *mappedStore) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if err != nil {
		return newError(KindIO, "munmap backing file", err)
	}
	return nil
}
