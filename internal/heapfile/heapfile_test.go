package heapfile

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkernel/internal/storage"
)

func newTestFile(t *testing.T) *HeapFile {
	t.Helper()
	dir := t.TempDir()
	return New("foo", storage.NewBoltRecordStore(filepath.Join(dir, "foo.db")), 256)
}

func newTestFileAt(path string) *HeapFile {
	return New("foo", storage.NewBoltRecordStore(path), 256)
}

func TestHeapFileCreateAllocatesBlockOne(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.Create())
	defer f.Drop()

	assert.True(t, f.IsOpen())
	assert.EqualValues(t, 1, f.GetLastBlockID())
	assert.Equal(t, []storage.BlockID{1}, f.BlockIDs())
}

func TestHeapFileGetNewAndPutRoundTrip(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.Create())
	defer f.Drop()

	page, err := f.Get(1)
	require.NoError(t, err)
	id, err := page.Add([]byte("payload"))
	require.NoError(t, err)
	require.NoError(t, f.Put(page))

	reread, err := f.Get(1)
	require.NoError(t, err)
	assert.Equal(t, []byte("payload"), reread.Get(id))

	page2, err := f.GetNew()
	require.NoError(t, err)
	assert.EqualValues(t, 2, page2.BlockID())
	assert.EqualValues(t, 2, f.GetLastBlockID())
	assert.Equal(t, []storage.BlockID{1, 2}, f.BlockIDs())
}

func TestHeapFileCloseThenOpenRecoversLast(t *testing.T) {
	f := newTestFile(t)
	require.NoError(t, f.Create())
	_, err := f.GetNew()
	require.NoError(t, err)
	require.NoError(t, f.Close())
	assert.False(t, f.IsOpen())

	require.NoError(t, f.Open())
	defer f.Drop()
	assert.EqualValues(t, 2, f.GetLastBlockID())
}

func TestHeapFileClosedFileErrors(t *testing.T) {
	f := newTestFile(t)
	_, err := f.Get(1)
	var closed *storage.ClosedFileError
	assert.ErrorAs(t, err, &closed)
}

func TestHeapFileDrop(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "foo.db")
	f := newTestFileAt(path)
	require.NoError(t, f.Create())
	require.NoError(t, f.Drop())
	assert.False(t, f.IsOpen())

	// recreating after drop must succeed since the backing file is gone.
	f2 := newTestFileAt(path)
	require.NoError(t, f2.Create())
	defer f2.Drop()
}
