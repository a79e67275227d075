//go:build windows

package hyperband

import "os"

// newMappedStore on Windows is unimplemented: the core's mmap path relies on
// golang.org/x/sys/unix, and cross-host support is outside spec.md's scope
// (§1 Non-goals). Use BackendStreamed instead.
func newMappedStore(file *os.File, offset, length int64, writable bool) (BackingStore, error) {
	return nil, newError(KindUnsupported, "mapped backend is not available on this platform; use the streamed backend", nil)
}
