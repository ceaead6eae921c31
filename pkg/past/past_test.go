package past

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, blockSize int) *Store {
	t.Helper()
	s, err := New(make([]byte, blockSize), make([]byte, blockSize))
	require.NoError(t, err)
	require.NoError(t, s.Format())
	require.NoError(t, s.Init())
	return s
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t, 256)

	_, ok := s.ReadUnit(5)
	require.False(t, ok)

	require.NoError(t, s.WriteUnit(5, []byte("hello\x00")))
	data, ok := s.ReadUnit(5)
	require.True(t, ok)
	require.Equal(t, []byte("hello\x00"), data)

	// rewrite replaces, not duplicates
	require.NoError(t, s.WriteUnit(5, []byte("bye\x00")))
	data, ok = s.ReadUnit(5)
	require.True(t, ok)
	require.Equal(t, []byte("bye\x00"), data)

	require.NoError(t, s.EraseUnit(5))
	_, ok = s.ReadUnit(5)
	require.False(t, ok)
	require.Equal(t, ErrNotFound, s.EraseUnit(5))
}

func TestStoreSurvivesReopen(t *testing.T) {
	b0, b1 := make([]byte, 256), make([]byte, 256)
	s, err := New(b0, b1)
	require.NoError(t, err)
	require.NoError(t, s.Format())
	require.NoError(t, s.Init())
	require.NoError(t, s.WriteUnit(1, []byte{7, 0, 0, 0}))

	reopened, err := New(b0, b1)
	require.NoError(t, err)
	require.NoError(t, reopened.Init())
	data, ok := reopened.ReadUnit(1)
	require.True(t, ok)
	require.Equal(t, []byte{7, 0, 0, 0}, data)
}

func TestStoreInitUnformatted(t *testing.T) {
	s, err := New(make([]byte, 256), make([]byte, 256))
	require.NoError(t, err)
	require.Equal(t, ErrCorrupt, s.Init())
}

func TestStoreCompaction(t *testing.T) {
	s := newTestStore(t, 128)

	// rewrite the same units until the active block must be compacted
	for round := 0; round < 50; round++ {
		require.NoError(t, s.WriteUnit(1, []byte{byte(round), 0, 0, 0}))
		require.NoError(t, s.WriteUnit(2, []byte("abcdefgh")))
	}
	data, ok := s.ReadUnit(1)
	require.True(t, ok)
	require.Equal(t, []byte{49, 0, 0, 0}, data)
	data, ok = s.ReadUnit(2)
	require.True(t, ok)
	require.Equal(t, []byte("abcdefgh"), data)
}

func TestStoreNoSpace(t *testing.T) {
	s := newTestStore(t, 64)
	require.Equal(t, ErrUnitSize, s.WriteUnit(1, make([]byte, 100)))

	require.NoError(t, s.WriteUnit(1, make([]byte, 40)))
	// a second large unit cannot fit even after compaction
	err := s.WriteUnit(2, make([]byte, 40))
	require.Equal(t, ErrNoSpace, err)
}

func TestStoreBadBlocks(t *testing.T) {
	_, err := New(make([]byte, 64), make([]byte, 65))
	require.Equal(t, ErrBlockSize, err)
	_, err = New(make([]byte, 4), make([]byte, 4))
	require.Equal(t, ErrBlockSize, err)
}

func TestStoreOnSync(t *testing.T) {
	s := newTestStore(t, 256)
	var syncs int
	s.OnSync = func() { syncs++ }
	require.NoError(t, s.WriteUnit(1, []byte{1}))
	require.NoError(t, s.EraseUnit(1))
	require.Equal(t, 2, syncs)
}

func TestStoreBlocksExposedForDumping(t *testing.T) {
	s := newTestStore(t, 128)
	blocks := s.Blocks()
	require.Len(t, blocks[0], 128)
	require.Len(t, blocks[1], 128)
	require.Equal(t, 128, s.BlockSize())
	// spare block stays erased until compaction
	require.Equal(t, byte(0xff), blocks[1][0])
}
