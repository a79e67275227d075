package hyperband

import "os"

// BackingStore provides an addressable byte region for an image, whether
// the bytes live in a memory-mapped page-cache view or are streamed through
// a buffer supplied by the caller. Every read/write path in the core — the
// pixel iterator model and the streaming reducer alike — goes through this
// interface, so picking a backend is a configuration choice, never an
// algorithmic one (spec.md §9).
type BackingStore interface {
	// Len returns the store's byte length: Dims.ByteSize(elemWidth).
	Len() int64
	// ReadAt copies len(p) bytes starting at byte offset off into p. It
	// never reads past Len(); callers that request a read crossing Len()
	// get a short read and io.EOF, mirroring io.ReaderAt.
	ReadAt(p []byte, off int64) (int, error)
	// WriteAt writes len(p) bytes from p into the store at byte offset
	// off. Valid only on a store opened with OpenWrite.
	WriteAt(p []byte, off int64) (int, error)
	// Close releases the store. For a mapped store this unmaps the
	// region; for a streamed store it is a no-op, since every WriteAt
	// already went straight to the file.
	Close() error
}

// Backend selects a BackingStore implementation. Never an environment
// variable: always a CLI flag or caller-supplied configuration (spec.md
// §6).
type Backend int

const (
	// BackendMapped memory-maps the whole region via the OS page cache.
	BackendMapped Backend = iota
	// BackendStreamed reads/writes through a caller-sized buffer, seeking
	// as directed by the streaming reducer.
	BackendStreamed
)

// OpenRead opens a read-shared BackingStore over file at the given
// header-declared byte offset and length, verifying that the file holds
// exactly length bytes after offset.
func OpenRead(backend Backend, file *os.File, offset, length int64) (BackingStore, error) {
	if err := verifyLength(file, offset, length); err != nil {
		return nil, err
	}
	switch backend {
	case BackendMapped:
		return newMappedStore(file, offset, length, false)
	case BackendStreamed:
		return newStreamedStore(file, offset, length, false), nil
	default:
		return nil, newError(KindUnsupported, "unknown backend", nil)
	}
}

// OpenWrite pre-sizes file to offset+length bytes and opens a read-write
// BackingStore over it. Existing contents beyond what the caller writes are
// not guaranteed to be preserved.
func OpenWrite(backend Backend, file *os.File, offset, length int64) (BackingStore, error) {
	if err := file.Truncate(offset + length); err != nil {
		return nil, newError(KindIO, "pre-sizing output file", err)
	}
	switch backend {
	case BackendMapped:
		return newMappedStore(file, offset, length, true)
	case BackendStreamed:
		return newStreamedStore(file, offset, length, true), nil
	default:
		return nil, newError(KindUnsupported, "unknown backend", nil)
	}
}

func verifyLength(file *os.File, offset, length int64) error {
	info, err := file.Stat()
	if err != nil {
		return newError(KindIO, "stat input file", err)
	}
	if info.Size()-offset != length {
		return newError(KindHeaderMismatch, "file length disagrees with header-declared size", nil)
	}
	return nil
}
