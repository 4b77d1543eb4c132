package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteReadSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "worlds", "w1.snap.zst")
	in := WorldV1{
		Header: Header{WorldID: "w1", Seed: 42},
		MinY:   -16,
		Height: 32,
		Spawn:  [3]int{1, 2, 3},
		Chunks: []ChunkV1{{CX: 0, CZ: -1, Blocks: []uint16{1, 0, 8}}},
	}
	require.NoError(t, WriteSnapshot(path, in))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, Version, got.Header.Version)
	require.Equal(t, "w1", got.Header.WorldID)
	require.Equal(t, -16, got.MinY)
	require.Equal(t, [3]int{1, 2, 3}, got.Spawn)
	require.Len(t, got.Chunks, 1)
	require.Equal(t, []uint16{1, 0, 8}, got.Chunks[0].Blocks)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp file left behind")
}

func TestReadHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.snap.zst")
	require.NoError(t, WriteSnapshot(path, WorldV1{
		Header: Header{WorldID: "w", Seed: 7},
		MinY:   0,
		Height: 64,
		Chunks: []ChunkV1{{CX: 0, CZ: 0}, {CX: 1, CZ: 0}},
	}))

	h, err := ReadHeader(path)
	require.NoError(t, err)
	require.Equal(t, Header{Version: Version, WorldID: "w", Seed: 7, MinY: 0, Height: 64, Chunks: 2}, h)
}

func TestWriteSnapshotReplaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.snap.zst")
	require.NoError(t, WriteSnapshot(path, WorldV1{Header: Header{WorldID: "old"}, Height: 16}))
	require.NoError(t, WriteSnapshot(path, WorldV1{Header: Header{WorldID: "new"}, Height: 16}))

	got, err := ReadSnapshot(path)
	require.NoError(t, err)
	require.Equal(t, "new", got.Header.WorldID)
}

func TestReadSnapshotMissingFile(t *testing.T) {
	_, err := ReadSnapshot(filepath.Join(t.TempDir(), "nope.snap.zst"))
	require.Error(t, err)
}
