package heaptable

import (
	"sort"

	"dbkernel/internal/heapfile"
)

// Relation is the relation capability set (SPEC_FULL.md §9: "a Relation
// exposes {Open, Close, Insert, Select, Project, Del, Columns, Attributes}");
// it is satisfied by HeapTable. The executor and planner use *HeapTable
// directly rather than this interface.
type Relation interface {
	Name() string
	Columns() []string
	Attributes() map[string]ColumnAttribute
	Open() error
	Close() error
	Insert(row Row) (Handle, error)
	Select(where Row) ([]Handle, error)
	Project(h Handle, cols ...string) (Row, error)
	Del(h Handle) error
}

// HeapTable is a DbRelation: row marshalling plus open/create/drop over a
// HeapFile (SPEC_FULL.md §4.3).
type HeapTable struct {
	name    string
	columns []string
	attrs   map[string]ColumnAttribute
	file    *heapfile.HeapFile
}

// New returns a HeapTable named name with the given declared column order
// and types, backed by file. The table is not opened yet.
func New(name string, columns []string, attrs map[string]ColumnAttribute, file *heapfile.HeapFile) *HeapTable {
	return &HeapTable{name: name, columns: columns, attrs: attrs, file: file}
}

func (t *HeapTable) Name() string                           { return t.name }
func (t *HeapTable) Columns() []string                      { return t.columns }
func (t *HeapTable) Attributes() map[string]ColumnAttribute { return t.attrs }

func (t *HeapTable) Create() error { return t.file.Create() }

func (t *HeapTable) CreateIfNotExists() error {
	if err := t.file.Open(); err != nil {
		return t.file.Create()
	}
	return nil
}

func (t *HeapTable) Drop() error { return t.file.Drop() }
func (t *HeapTable) Open() error { return t.file.Open() }
func (t *HeapTable) Close() error { return t.file.Close() }

// Insert validates row against the declared columns, marshals it, and
// appends it to the last block, allocating a new block on NoRoom and
// retrying exactly once.
func (t *HeapTable) Insert(row Row) (Handle, error) {
	if !t.file.IsOpen() {
		if err := t.file.Open(); err != nil {
			return Handle{}, err
		}
	}
	data, err := marshal(t.name, t.columns, t.attrs, row, t.file.BlockSize())
	if err != nil {
		return Handle{}, err
	}

	blockID := t.file.GetLastBlockID()
	page, err := t.file.Get(blockID)
	if err != nil {
		return Handle{}, err
	}
	recID, err := page.Add(data)
	if err != nil {
		newPage, gerr := t.file.GetNew()
		if gerr != nil {
			return Handle{}, gerr
		}
		recID, err = newPage.Add(data)
		if err != nil {
			return Handle{}, &SchemaError{Table: t.name, Message: "row too big"}
		}
		page = newPage
	}
	if err := t.file.Put(page); err != nil {
		return Handle{}, err
	}
	return Handle{BlockID: page.BlockID(), RecordID: recID}, nil
}

// Select returns handles for all live records across all blocks in
// ascending (block_id, record_id) order. where is reserved for predicate
// push-down and is ignored here; filtering happens in the planner.
func (t *HeapTable) Select(where Row) ([]Handle, error) {
	if !t.file.IsOpen() {
		if err := t.file.Open(); err != nil {
			return nil, err
		}
	}
	var handles []Handle
	blockIDs := t.file.BlockIDs()
	sort.Slice(blockIDs, func(i, j int) bool { return blockIDs[i] < blockIDs[j] })
	for _, bid := range blockIDs {
		page, err := t.file.Get(bid)
		if err != nil {
			return nil, err
		}
		for _, rid := range page.Ids() {
			handles = append(handles, Handle{BlockID: bid, RecordID: rid})
		}
	}
	return handles, nil
}

// Project reads and unmarshals the row at h, optionally restricted to cols.
func (t *HeapTable) Project(h Handle, cols ...string) (Row, error) {
	if !t.file.IsOpen() {
		if err := t.file.Open(); err != nil {
			return nil, err
		}
	}
	page, err := t.file.Get(h.BlockID)
	if err != nil {
		return nil, err
	}
	data := page.Get(h.RecordID)
	if data == nil {
		return nil, &SchemaError{Table: t.name, Message: "record has been deleted"}
	}
	row := unmarshal(t.columns, t.attrs, data)
	if len(cols) == 0 {
		return row, nil
	}
	out := make(Row, len(cols))
	for _, c := range cols {
		v, ok := row[c]
		if !ok {
			return nil, &SchemaError{Table: t.name, Column: c, Message: "invalid column name"}
		}
		out[c] = v
	}
	return out, nil
}

// Del tombstones the record at h.
func (t *HeapTable) Del(h Handle) error {
	if !t.file.IsOpen() {
		if err := t.file.Open(); err != nil {
			return err
		}
	}
	page, err := t.file.Get(h.BlockID)
	if err != nil {
		return err
	}
	page.Del(h.RecordID)
	return t.file.Put(page)
}

// Update is not implemented.
func (t *HeapTable) Update(Handle, Row) error {
	return &UnsupportedError{Op: "UPDATE"}
}

var _ Relation = (*HeapTable)(nil)
