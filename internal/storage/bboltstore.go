package storage

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	bolt "go.etcd.io/bbolt"
)

var blocksBucket = []byte("blocks")

// BoltRecordStore is the RecordStore implementation backing a HeapFile: one
// bbolt database file per table, holding a single "blocks" bucket keyed by
// the big-endian encoding of the block number (SPEC_FULL.md §6.2).
type BoltRecordStore struct {
	path string
	db   *bolt.DB
}

// NewBoltRecordStore returns a store rooted at path. Create or Open must be
// called before any other method.
func NewBoltRecordStore(path string) *BoltRecordStore {
	return &BoltRecordStore{path: path}
}

func (s *BoltRecordStore) Create() error {
	if _, err := os.Stat(s.path); err == nil {
		return &StorageError{Op: "create", Err: fmt.Errorf("%s already exists", s.path)}
	} else if !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "create", Err: err}
	}
	db, err := bolt.Open(s.path, 0o644, nil)
	if err != nil {
		return &StorageError{Op: "create", Err: err}
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(blocksBucket)
		return err
	}); err != nil {
		_ = db.Close()
		return &StorageError{Op: "create", Err: err}
	}
	s.db = db
	return nil
}

func (s *BoltRecordStore) Open() error {
	if _, err := os.Stat(s.path); err != nil {
		return &StorageError{Op: "open", Err: err}
	}
	db, err := bolt.Open(s.path, 0o644, nil)
	if err != nil {
		return &StorageError{Op: "open", Err: err}
	}
	s.db = db
	return nil
}

func (s *BoltRecordStore) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	if err != nil {
		return &StorageError{Op: "close", Err: err}
	}
	return nil
}

func (s *BoltRecordStore) Remove() error {
	if err := s.Close(); err != nil {
		return err
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &StorageError{Op: "remove", Err: err}
	}
	return nil
}

func (s *BoltRecordStore) Put(key uint32, data []byte) error {
	if s.db == nil {
		return &ClosedFileError{Name: s.path}
	}
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, key)
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(blocksBucket).Put(k, data)
	})
	if err != nil {
		return &StorageError{Op: "put", Err: err}
	}
	return nil
}

func (s *BoltRecordStore) Get(key uint32) ([]byte, error) {
	if s.db == nil {
		return nil, &ClosedFileError{Name: s.path}
	}
	k := make([]byte, 4)
	binary.BigEndian.PutUint32(k, key)
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(blocksBucket).Get(k)
		if v != nil {
			out = append([]byte(nil), v...)
		}
		return nil
	})
	if err != nil {
		return nil, &StorageError{Op: "get", Err: err}
	}
	return out, nil
}

func (s *BoltRecordStore) Count() (uint32, error) {
	if s.db == nil {
		return 0, &ClosedFileError{Name: s.path}
	}
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(blocksBucket).Stats().KeyN
		return nil
	})
	if err != nil {
		return 0, &StorageError{Op: "count", Err: err}
	}
	return uint32(n), nil
}
