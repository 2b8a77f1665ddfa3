package storage

// DefaultBlockSize is the page size used when no engine configuration
// overrides it (SPEC_FULL.md §6.3).
const DefaultBlockSize = 4096

// BlockID is a 1-based block number within a HeapFile. 0 is invalid.
type BlockID uint32

// RecordID is a 1-based slot number within a SlottedPage. Never reused.
type RecordID uint16
