// Package catalog implements the bootstrapped schema meta-relations
// (_tables, _columns, _indices) and the rules that keep them consistent
// with the physical HeapFiles they describe (SPEC_FULL.md §4.4).
package catalog

import (
	"path/filepath"

	"go.uber.org/zap"

	"dbkernel/internal/heapfile"
	"dbkernel/internal/heaptable"
	"dbkernel/internal/index"
	"dbkernel/internal/storage"
)

const (
	tablesTable  = "_tables"
	columnsTable = "_columns"
	indicesTable = "_indices"
)

func isMeta(name string) bool {
	return name == tablesTable || name == columnsTable || name == indicesTable
}

type tableDef struct {
	name    string
	columns []string
	types   []string
}

var (
	tablesDef  = tableDef{tablesTable, []string{"table_name"}, []string{"TEXT"}}
	columnsDef = tableDef{columnsTable, []string{"table_name", "column_name", "data_type"}, []string{"TEXT", "TEXT", "TEXT"}}
	indicesDef = tableDef{indicesTable, []string{"table_name", "index_name", "seq_in_index", "column_name", "index_type", "is_unique"},
		[]string{"TEXT", "TEXT", "INT", "TEXT", "TEXT", "BOOLEAN"}}
)

func attrFromType(t string) heaptable.ColumnAttribute {
	switch t {
	case "TEXT":
		return heaptable.AttrText
	case "BOOLEAN":
		return heaptable.AttrBoolean
	default:
		return heaptable.AttrInt
	}
}

// Catalog owns the three schema meta-relations and caches opened
// HeapTables for the process lifetime (SPEC_FULL.md §4.4).
type Catalog struct {
	dataDir   string
	blockSize int
	log       *zap.Logger
	tables    map[string]*heaptable.HeapTable
}

// New returns a Catalog rooted at dataDir. logger may be nil.
func New(dataDir string, blockSize int, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		dataDir:   dataDir,
		blockSize: blockSize,
		log:       logger,
		tables:    make(map[string]*heaptable.HeapTable),
	}
}

func (c *Catalog) newFile(name string) *heapfile.HeapFile {
	store := storage.NewBoltRecordStore(filepath.Join(c.dataDir, name+".db"))
	return heapfile.New(name, store, c.blockSize)
}

func (c *Catalog) ensureTable(def tableDef) (*heaptable.HeapTable, error) {
	attrs := make(map[string]heaptable.ColumnAttribute, len(def.columns))
	for i, col := range def.columns {
		attrs[col] = attrFromType(def.types[i])
	}
	t := heaptable.New(def.name, def.columns, attrs, c.newFile(def.name))
	if err := t.CreateIfNotExists(); err != nil {
		return nil, &CatalogError{Op: "bootstrap " + def.name, Err: err}
	}
	return t, nil
}

// Bootstrap creates _tables, _columns and _indices if they do not already
// exist on disk, and registers each of them as a row of its own in
// _tables/_columns. Construction is idempotent: a second Bootstrap call on
// an already-initialized environment just opens and trusts on-disk
// contents (SPEC_FULL.md §9, resolving the source's double-init gap).
func (c *Catalog) Bootstrap() error {
	tables, err := c.ensureTable(tablesDef)
	if err != nil {
		return err
	}
	columns, err := c.ensureTable(columnsDef)
	if err != nil {
		return err
	}
	indices, err := c.ensureTable(indicesDef)
	if err != nil {
		return err
	}
	c.tables[tablesTable] = tables
	c.tables[columnsTable] = columns
	c.tables[indicesTable] = indices

	handles, err := tables.Select(nil)
	if err != nil {
		return &CatalogError{Op: "bootstrap", Err: err}
	}
	if len(handles) > 0 {
		c.log.Debug("catalog already bootstrapped", zap.String("data_dir", c.dataDir))
		return nil
	}

	c.log.Info("bootstrapping catalog", zap.String("data_dir", c.dataDir))
	for _, def := range []tableDef{tablesDef, columnsDef, indicesDef} {
		if _, err := tables.Insert(heaptable.Row{"table_name": heaptable.NewText(def.name)}); err != nil {
			return &CatalogError{Op: "bootstrap", Err: err}
		}
		for _, col := range def.columns {
			row := heaptable.Row{
				"table_name":  heaptable.NewText(def.name),
				"column_name": heaptable.NewText(col),
				"data_type":   heaptable.NewText(def.types[indexOf(def.columns, col)]),
			}
			if _, err := columns.Insert(row); err != nil {
				return &CatalogError{Op: "bootstrap", Err: err}
			}
		}
	}
	return nil
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}

func (c *Catalog) scanWhere(tableName string, pred func(heaptable.Row) bool) ([]heaptable.Row, error) {
	t, ok := c.tables[tableName]
	if !ok {
		return nil, &CatalogError{Op: "scan", Err: &heaptable.SchemaError{Table: tableName, Message: "catalog not bootstrapped"}}
	}
	handles, err := t.Select(nil)
	if err != nil {
		return nil, err
	}
	var rows []heaptable.Row
	for _, h := range handles {
		row, err := t.Project(h)
		if err != nil {
			return nil, err
		}
		if pred == nil || pred(row) {
			rows = append(rows, row)
		}
	}
	return rows, nil
}

func (c *Catalog) handlesWhere(tableName string, pred func(heaptable.Row) bool) ([]heaptable.Handle, error) {
	t := c.tables[tableName]
	handles, err := t.Select(nil)
	if err != nil {
		return nil, err
	}
	var matched []heaptable.Handle
	for _, h := range handles {
		row, err := t.Project(h)
		if err != nil {
			return nil, err
		}
		if pred(row) {
			matched = append(matched, h)
		}
	}
	return matched, nil
}

func (c *Catalog) deleteWhere(tableName string, pred func(heaptable.Row) bool) error {
	handles, err := c.handlesWhere(tableName, pred)
	if err != nil {
		return err
	}
	t := c.tables[tableName]
	for _, h := range handles {
		if err := t.Del(h); err != nil {
			return err
		}
	}
	return nil
}

func byTable(name string) func(heaptable.Row) bool {
	return func(r heaptable.Row) bool { return r["table_name"].S == name }
}

// GetTable returns a cached, open HeapTable for name, opening it from its
// declared columns in _columns on first access.
func (c *Catalog) GetTable(name string) (*heaptable.HeapTable, error) {
	if t, ok := c.tables[name]; ok {
		return t, nil
	}
	colRows, err := c.scanWhere(columnsTable, byTable(name))
	if err != nil {
		return nil, err
	}
	if len(colRows) == 0 {
		return nil, &heaptable.SchemaError{Table: name, Message: "table does not exist"}
	}
	columns := make([]string, len(colRows))
	attrs := make(map[string]heaptable.ColumnAttribute, len(colRows))
	for i, row := range colRows {
		col := row["column_name"].S
		columns[i] = col
		attrs[col] = attrFromType(row["data_type"].S)
	}
	t := heaptable.New(name, columns, attrs, c.newFile(name))
	if err := t.Open(); err != nil {
		return nil, &CatalogError{Op: "get_table " + name, Err: err}
	}
	c.tables[name] = t
	return t, nil
}

// CreateTable registers name/columns/types in _tables and _columns, then
// creates the backing HeapFile. A failure at any step rolls back the rows
// already inserted (SPEC_FULL.md §4.6, CREATE TABLE).
func (c *Catalog) CreateTable(name string, columns []string, types []string) error {
	if isMeta(name) {
		return &heaptable.SchemaError{Table: name, Message: "cannot create a schema table"}
	}
	c.log.Info("create table", zap.String("table", name))

	tablesT := c.tables[tablesTable]
	columnsT := c.tables[columnsTable]

	tablesHandle, err := tablesT.Insert(heaptable.Row{"table_name": heaptable.NewText(name)})
	if err != nil {
		return &CatalogError{Op: "create_table " + name, Err: err}
	}

	var colHandles []heaptable.Handle
	rollback := func() {
		for _, h := range colHandles {
			_ = columnsT.Del(h)
		}
		_ = tablesT.Del(tablesHandle)
	}

	for i, col := range columns {
		row := heaptable.Row{
			"table_name":  heaptable.NewText(name),
			"column_name": heaptable.NewText(col),
			"data_type":   heaptable.NewText(types[i]),
		}
		h, err := columnsT.Insert(row)
		if err != nil {
			rollback()
			return &CatalogError{Op: "create_table " + name, Err: err}
		}
		colHandles = append(colHandles, h)
	}

	attrs := make(map[string]heaptable.ColumnAttribute, len(columns))
	for i, col := range columns {
		attrs[col] = attrFromType(types[i])
	}
	t := heaptable.New(name, columns, attrs, c.newFile(name))
	if err := t.Create(); err != nil {
		rollback()
		return &CatalogError{Op: "create_table " + name, Err: err}
	}
	c.tables[name] = t
	return nil
}

// CreateTableIfNotExists behaves like CreateTable, except an already
// existing table is left untouched and reported as success.
func (c *Catalog) CreateTableIfNotExists(name string, columns []string, types []string) error {
	rows, err := c.scanWhere(tablesTable, byTable(name))
	if err != nil {
		return err
	}
	if len(rows) > 0 {
		_, err := c.GetTable(name)
		return err
	}
	return c.CreateTable(name, columns, types)
}

// DropTable drops every index on name, then its _columns rows, then the
// backing file, then its _tables row (SPEC_FULL.md §4.6, DROP TABLE).
func (c *Catalog) DropTable(name string) error {
	if isMeta(name) {
		return &heaptable.SchemaError{Table: name, Message: "cannot drop a schema table"}
	}
	c.log.Info("drop table", zap.String("table", name))

	names, err := c.GetIndexNames(name)
	if err != nil {
		return err
	}
	for _, idxName := range names {
		if err := c.DropIndex(name, idxName); err != nil {
			return err
		}
	}

	t, err := c.GetTable(name)
	if err != nil {
		return err
	}

	if err := c.deleteWhere(columnsTable, byTable(name)); err != nil {
		return &CatalogError{Op: "drop_table " + name, Err: err}
	}

	if err := t.Drop(); err != nil {
		return &CatalogError{Op: "drop_table " + name, Err: err}
	}
	delete(c.tables, name)

	if err := c.deleteWhere(tablesTable, byTable(name)); err != nil {
		return &CatalogError{Op: "drop_table " + name, Err: err}
	}
	return nil
}

// CreateIndex validates the named columns against table's schema, inserts
// one dense-sequenced _indices row per column, then creates the stub
// index (SPEC_FULL.md §4.6, CREATE INDEX).
func (c *Catalog) CreateIndex(table, indexName string, columns []string, indexType string) error {
	t, err := c.GetTable(table)
	if err != nil {
		return err
	}
	known := make(map[string]bool, len(t.Columns()))
	for _, col := range t.Columns() {
		known[col] = true
	}
	for _, col := range columns {
		if !known[col] {
			return &heaptable.SchemaError{Table: table, Column: col, Message: "invalid column name"}
		}
	}

	isUnique := indexType == "BTREE"
	indicesT := c.tables[indicesTable]
	var inserted []heaptable.Handle
	rollback := func() {
		for _, h := range inserted {
			_ = indicesT.Del(h)
		}
	}

	for i, col := range columns {
		row := heaptable.Row{
			"table_name":   heaptable.NewText(table),
			"index_name":   heaptable.NewText(indexName),
			"seq_in_index": heaptable.NewInt(int32(i + 1)),
			"column_name":  heaptable.NewText(col),
			"index_type":   heaptable.NewText(indexType),
			"is_unique":    heaptable.NewBool(isUnique),
		}
		h, err := indicesT.Insert(row)
		if err != nil {
			rollback()
			return &CatalogError{Op: "create_index " + indexName, Err: err}
		}
		inserted = append(inserted, h)
	}

	idx := &index.StubIndex{Table: table, Name: indexName}
	if err := idx.Create(); err != nil {
		rollback()
		return &CatalogError{Op: "create_index " + indexName, Err: err}
	}
	return nil
}

// DropIndex drops the stub index, then deletes its _indices rows
// (SPEC_FULL.md §4.6, DROP INDEX).
func (c *Catalog) DropIndex(table, indexName string) error {
	idx := &index.StubIndex{Table: table, Name: indexName}
	if err := idx.Drop(); err != nil {
		return &CatalogError{Op: "drop_index " + indexName, Err: err}
	}
	pred := func(r heaptable.Row) bool {
		return r["table_name"].S == table && r["index_name"].S == indexName
	}
	if err := c.deleteWhere(indicesTable, pred); err != nil {
		return &CatalogError{Op: "drop_index " + indexName, Err: err}
	}
	return nil
}

// GetIndexNames returns the distinct index names on table, in first-seen
// order.
func (c *Catalog) GetIndexNames(table string) ([]string, error) {
	rows, err := c.scanWhere(indicesTable, byTable(table))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var names []string
	for _, r := range rows {
		n := r["index_name"].S
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names, nil
}

// GetIndex returns the _indices rows describing table/indexName, in
// seq_in_index order.
func (c *Catalog) GetIndex(table, indexName string) ([]heaptable.Row, error) {
	return c.scanWhere(indicesTable, func(r heaptable.Row) bool {
		return r["table_name"].S == table && r["index_name"].S == indexName
	})
}

// ShowTables returns every user table name, excluding the meta-relations
// themselves.
func (c *Catalog) ShowTables() ([]heaptable.Row, error) {
	return c.scanWhere(tablesTable, func(r heaptable.Row) bool { return !isMeta(r["table_name"].S) })
}

// ShowColumns returns the _columns rows for table.
func (c *Catalog) ShowColumns(table string) ([]heaptable.Row, error) {
	return c.scanWhere(columnsTable, byTable(table))
}

// ShowIndex returns the _indices rows for table.
func (c *Catalog) ShowIndex(table string) ([]heaptable.Row, error) {
	return c.scanWhere(indicesTable, byTable(table))
}
