package hyperband

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBackingStoreRoundTrip(t *testing.T) {
	for _, backend := range []Backend{BackendMapped, BackendStreamed} {
		backend := backend
		t.Run(backendName(backend), func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "data.bin")
			wf, err := os.Create(path)
			require.NoError(t, err)

			store, err := OpenWrite(backend, wf, 0, 16)
			require.NoError(t, err)
			payload := []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
			n, err := store.WriteAt(payload, 0)
			require.NoError(t, err)
			require.Equal(t, 16, n)
			require.NoError(t, store.Close())
			require.NoError(t, wf.Close())

			rf, err := os.Open(path)
			require.NoError(t, err)
			defer rf.Close()
			rstore, err := OpenRead(backend, rf, 0, 16)
			require.NoError(t, err)
			defer rstore.Close()

			got := make([]byte, 16)
			n, err = rstore.ReadAt(got, 0)
			require.NoError(t, err)
			require.Equal(t, 16, n)
			require.Equal(t, payload, got)
			require.Equal(t, int64(16), rstore.Len())
		})
	}
}

func TestOpenReadRejectsLengthMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.bin")
	require.NoError(t, os.WriteFile(path, []byte{1, 2, 3, 4}, 0o644))
	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	_, err = OpenRead(BackendStreamed, f, 0, 8)
	require.Error(t, err)
	var herr *Error
	require.ErrorAs(t, err, &herr)
	require.Equal(t, KindHeaderMismatch, herr.Kind)
}

func TestOpenWriteRespectsHeaderOffset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "offset.bin")
	f, err := os.Create(path)
	require.NoError(t, err)
	store, err := OpenWrite(BackendStreamed, f, 8, 4)
	require.NoError(t, err)
	_, err = store.WriteAt([]byte{9, 9, 9, 9}, 0)
	require.NoError(t, err)
	require.NoError(t, store.Close())
	require.NoError(t, f.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, int64(12), info.Size())
}

func backendName(b Backend) string {
	if b == BackendMapped {
		return "mapped"
	}
	return "streamed"
}
