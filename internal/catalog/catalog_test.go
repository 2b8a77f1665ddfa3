package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkernel/internal/heaptable"
)

func newTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	dir := t.TempDir()
	c := New(dir, 256, nil)
	require.NoError(t, c.Bootstrap())
	return c
}

func TestBootstrapRegistersMetaRelations(t *testing.T) {
	c := newTestCatalog(t)

	rows, err := c.scanWhere(tablesTable, nil)
	require.NoError(t, err)
	var names []string
	for _, r := range rows {
		names = append(names, r["table_name"].S)
	}
	assert.ElementsMatch(t, []string{"_tables", "_columns", "_indices"}, names)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	c1 := New(dir, 256, nil)
	require.NoError(t, c1.Bootstrap())

	c2 := New(dir, 256, nil)
	require.NoError(t, c2.Bootstrap())

	rows, err := c2.scanWhere(tablesTable, nil)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestCreateTableThenGetTable(t *testing.T) {
	c := newTestCatalog(t)

	require.NoError(t, c.CreateTable("foo", []string{"id", "name"}, []string{"INT", "TEXT"}))

	tbl, err := c.GetTable("foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, tbl.Columns())

	cols, err := c.ShowColumns("foo")
	require.NoError(t, err)
	assert.Len(t, cols, 2)

	tables, err := c.ShowTables()
	require.NoError(t, err)
	require.Len(t, tables, 1)
	assert.Equal(t, "foo", tables[0]["table_name"].S)
}

func TestCreateTableRejectsSchemaTableNames(t *testing.T) {
	c := newTestCatalog(t)
	err := c.CreateTable("_tables", []string{"x"}, []string{"INT"})
	var schemaErr *heaptable.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestDropTableRemovesColumnsAndTablesRows(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.CreateTable("foo", []string{"id"}, []string{"INT"}))

	require.NoError(t, c.DropTable("foo"))

	tables, err := c.ShowTables()
	require.NoError(t, err)
	assert.Empty(t, tables)

	cols, err := c.ShowColumns("foo")
	require.NoError(t, err)
	assert.Empty(t, cols)

	_, err = c.GetTable("foo")
	assert.Error(t, err)
}

func TestDropTableRejectsSchemaTableNames(t *testing.T) {
	c := newTestCatalog(t)
	err := c.DropTable("_columns")
	var schemaErr *heaptable.SchemaError
	assert.ErrorAs(t, err, &schemaErr)
}

func TestCreateIndexThenShowIndexThenDropIndex(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.CreateTable("foo", []string{"id", "name"}, []string{"INT", "TEXT"}))

	require.NoError(t, c.CreateIndex("foo", "fx_id", []string{"id"}, "BTREE"))

	rows, err := c.ShowIndex("foo")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "fx_id", rows[0]["index_name"].S)
	assert.True(t, rows[0]["is_unique"].Bool())

	names, err := c.GetIndexNames("foo")
	require.NoError(t, err)
	assert.Equal(t, []string{"fx_id"}, names)

	require.NoError(t, c.DropIndex("foo", "fx_id"))
	rows, err = c.ShowIndex("foo")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestCreateIndexRejectsUnknownColumn(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.CreateTable("foo", []string{"id"}, []string{"INT"}))

	err := c.CreateIndex("foo", "fx_bad", []string{"nope"}, "BTREE")
	var schemaErr *heaptable.SchemaError
	assert.ErrorAs(t, err, &schemaErr)

	rows, rerr := c.ShowIndex("foo")
	require.NoError(t, rerr)
	assert.Empty(t, rows)
}

func TestDropTableDropsItsIndicesToo(t *testing.T) {
	c := newTestCatalog(t)
	require.NoError(t, c.CreateTable("foo", []string{"id"}, []string{"INT"}))
	require.NoError(t, c.CreateIndex("foo", "fx_id", []string{"id"}, "BTREE"))

	require.NoError(t, c.DropTable("foo"))

	rows, err := c.ShowIndex("foo")
	require.NoError(t, err)
	assert.Empty(t, rows)
}
