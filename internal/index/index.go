// Package index specifies the DbIndex capability set without implementing
// any physical index structure (SPEC_FULL.md §1: "Index implementations
// beyond the catalog metadata describing them remain unspecified
// mechanics"). The catalog maintains _indices rows and calls through this
// interface; nothing here touches disk.
package index

// DbIndex is the capability set CREATE INDEX/DROP INDEX/INSERT/DELETE drive.
// A real B-tree or hash index would implement this against its own storage;
// StubIndex is the only implementation this engine ships.
type DbIndex interface {
	Create() error
	Drop() error
	Insert(handle any) error
	Delete(handle any) error
}

// StubIndex satisfies DbIndex without maintaining any physical structure.
// The catalog still records _indices metadata faithfully; only the
// secondary structure itself is absent.
type StubIndex struct {
	Table string
	Name  string
}

func (s *StubIndex) Create() error          { return nil }
func (s *StubIndex) Drop() error            { return nil }
func (s *StubIndex) Insert(handle any) error { return nil }
func (s *StubIndex) Delete(handle any) error { return nil }

var _ DbIndex = (*StubIndex)(nil)
