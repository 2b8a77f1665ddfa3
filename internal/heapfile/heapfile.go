// Package heapfile implements the durable sequence of numbered blocks that
// backs a heap table (SPEC_FULL.md §4.2), keyed through a
// storage.RecordStore.
package heapfile

import (
	"dbkernel/internal/storage"
)

// HeapFile is a sequence of 1-based blocks backed by a RecordStore. It is
// either closed (no operations permitted except Drop/Create) or open.
type HeapFile struct {
	name      string
	store     storage.RecordStore
	blockSize int
	last      storage.BlockID
	isOpen    bool
}

// New returns a HeapFile named name, backed by store, using blockSize-byte
// pages. The file is not opened yet.
func New(name string, store storage.RecordStore, blockSize int) *HeapFile {
	if blockSize <= 0 {
		blockSize = storage.DefaultBlockSize
	}
	return &HeapFile{name: name, store: store, blockSize: blockSize}
}

// Name returns the table name this file was constructed for.
func (f *HeapFile) Name() string { return f.name }

// BlockSize returns the byte size of each page this file allocates.
func (f *HeapFile) BlockSize() int { return f.blockSize }

// IsOpen reports whether the file currently accepts reads/writes.
func (f *HeapFile) IsOpen() bool { return f.isOpen }

// Create creates the backing store exclusively and allocates block 1.
// Leaves the file open.
func (f *HeapFile) Create() error {
	if err := f.store.Create(); err != nil {
		return err
	}
	f.isOpen = true
	f.last = 0
	if _, err := f.GetNew(); err != nil {
		return err
	}
	return nil
}

// Drop closes (if open) and removes the backing store.
func (f *HeapFile) Drop() error {
	if f.isOpen {
		if err := f.Close(); err != nil {
			return err
		}
	}
	return f.store.Remove()
}

// Open opens an existing backing store, setting last from its record count.
func (f *HeapFile) Open() error {
	if f.isOpen {
		return nil
	}
	if err := f.store.Open(); err != nil {
		return err
	}
	count, err := f.store.Count()
	if err != nil {
		return err
	}
	f.last = storage.BlockID(count)
	f.isOpen = true
	return nil
}

// Close releases the store handle.
func (f *HeapFile) Close() error {
	if !f.isOpen {
		return nil
	}
	if err := f.store.Close(); err != nil {
		return err
	}
	f.isOpen = false
	return nil
}

// GetNew allocates block last+1, writes a freshly-headered SlottedPage for
// it, reads it back, and returns it.
func (f *HeapFile) GetNew() (*storage.SlottedPage, error) {
	if !f.isOpen {
		return nil, &storage.ClosedFileError{Name: f.name}
	}
	blank := make([]byte, f.blockSize)
	f.last++
	page := storage.NewSlottedPage(blank, f.last, true)
	if err := f.store.Put(uint32(f.last), page.Bytes()); err != nil {
		return nil, err
	}
	raw, err := f.store.Get(uint32(f.last))
	if err != nil {
		return nil, err
	}
	return storage.NewSlottedPage(raw, f.last, false), nil
}

// Get reads block_id from the store and returns it as a non-new SlottedPage.
func (f *HeapFile) Get(blockID storage.BlockID) (*storage.SlottedPage, error) {
	if !f.isOpen {
		return nil, &storage.ClosedFileError{Name: f.name}
	}
	raw, err := f.store.Get(uint32(blockID))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, &storage.StorageError{Op: "get", Err: errBlockNotFound(blockID)}
	}
	return storage.NewSlottedPage(raw, blockID, false), nil
}

// Put writes block back to the store, keyed by its own block id.
func (f *HeapFile) Put(block *storage.SlottedPage) error {
	if !f.isOpen {
		return &storage.ClosedFileError{Name: f.name}
	}
	return f.store.Put(uint32(block.BlockID()), block.Bytes())
}

// BlockIDs returns 1..last.
func (f *HeapFile) BlockIDs() []storage.BlockID {
	ids := make([]storage.BlockID, 0, f.last)
	for i := storage.BlockID(1); i <= f.last; i++ {
		ids = append(ids, i)
	}
	return ids
}

// GetLastBlockID returns last.
func (f *HeapFile) GetLastBlockID() storage.BlockID { return f.last }
