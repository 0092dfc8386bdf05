package writer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFileWriterCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")

	w, err := NewFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, uint64(0), w.EndOfFile())
	_, err = os.Stat(path)
	assert.NoError(t, err)
}

func TestNewFileWriterTruncatesExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")
	require.NoError(t, os.WriteFile(path, []byte("existing content"), 0o644))

	w, err := NewFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, uint64(0), w.EndOfFile())
}

func TestAppendIsSequentialAndReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")
	w, err := NewFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	block1 := []byte("Block 1 data")
	rng1, err := w.Append(block1)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rng1.Offset)
	assert.Equal(t, uint64(len(block1)), rng1.Len)

	block2 := []byte("Block 2 data with more content")
	rng2, err := w.Append(block2)
	require.NoError(t, err)
	assert.Equal(t, rng1.Offset+rng1.Len, rng2.Offset)

	assert.Equal(t, rng2.Offset+rng2.Len, w.EndOfFile())

	require.NoError(t, w.Flush())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	buf1 := make([]byte, rng1.Len)
	_, err = f.ReadAt(buf1, int64(rng1.Offset))
	require.NoError(t, err)
	assert.Equal(t, block1, buf1)

	buf2 := make([]byte, rng2.Len)
	_, err = f.ReadAt(buf2, int64(rng2.Offset))
	require.NoError(t, err)
	assert.Equal(t, block2, buf2)
}

func TestAppendEmptyDataSucceedsWithoutAllocating(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")
	w, err := NewFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	rng, err := w.Append(nil)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), rng.Len)
	assert.Equal(t, uint64(0), w.EndOfFile())
}

func TestFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")
	w, err := NewFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	data := []byte("Test flush")
	rng, err := w.Append(data)
	require.NoError(t, err)
	require.NoError(t, w.Flush())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	buf := make([]byte, rng.Len)
	_, err = f.ReadAt(buf, int64(rng.Offset))
	require.NoError(t, err)
	assert.Equal(t, data, buf)
}

func TestCloseIsIdempotentAndDisablesFurtherUse(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")
	w, err := NewFileWriter(path)
	require.NoError(t, err)

	require.NoError(t, w.Close())
	assert.NoError(t, w.Close())

	_, err = w.Append([]byte("test"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closed")

	err = w.Flush()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "closed")
}

func TestEndOfFileTracksCumulativeAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.zup")
	w, err := NewFileWriter(path)
	require.NoError(t, err)
	defer w.Close()

	assert.Equal(t, uint64(0), w.EndOfFile())

	for _, size := range []int{100, 200, 50} {
		_, err := w.Append(make([]byte, size))
		require.NoError(t, err)
	}

	assert.Equal(t, uint64(350), w.EndOfFile())
}
