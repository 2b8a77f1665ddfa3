package planner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkernel/internal/heapfile"
	"dbkernel/internal/heaptable"
	"dbkernel/internal/storage"
)

func newTestTable(t *testing.T) *heaptable.HeapTable {
	t.Helper()
	dir := t.TempDir()
	store := storage.NewBoltRecordStore(filepath.Join(dir, "foo.db"))
	file := heapfile.New("foo", store, 256)
	columns := []string{"id", "name"}
	attrs := map[string]heaptable.ColumnAttribute{"id": heaptable.AttrInt, "name": heaptable.AttrText}
	tbl := heaptable.New("foo", columns, attrs, file)
	require.NoError(t, tbl.Create())
	t.Cleanup(func() { tbl.Drop() })
	return tbl
}

func TestEvaluateTableScanProjectAll(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(heaptable.Row{"id": heaptable.NewInt(1), "name": heaptable.NewText("a")})
	require.NoError(t, err)
	_, err = tbl.Insert(heaptable.Row{"id": heaptable.NewInt(2), "name": heaptable.NewText("b")})
	require.NoError(t, err)

	plan := ProjectAllNode{Child: TableScan{Table: tbl}}
	rows, cols, err := Evaluate(plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name"}, cols)
	assert.Len(t, rows, 2)
}

func TestEvaluateSelectFiltersRows(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(heaptable.Row{"id": heaptable.NewInt(1), "name": heaptable.NewText("a")})
	require.NoError(t, err)
	_, err = tbl.Insert(heaptable.Row{"id": heaptable.NewInt(2), "name": heaptable.NewText("b")})
	require.NoError(t, err)

	plan := ProjectAllNode{Child: SelectNode{
		Predicate: Predicate{"id": heaptable.NewInt(2)},
		Child:     TableScan{Table: tbl},
	}}
	rows, _, err := Evaluate(plan)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, heaptable.NewText("b"), rows[0]["name"])
}

func TestEvaluateProjectRestrictsColumns(t *testing.T) {
	tbl := newTestTable(t)
	_, err := tbl.Insert(heaptable.Row{"id": heaptable.NewInt(1), "name": heaptable.NewText("a")})
	require.NoError(t, err)

	plan := ProjectNode{Columns: []string{"name"}, Child: TableScan{Table: tbl}}
	rows, cols, err := Evaluate(plan)
	require.NoError(t, err)
	assert.Equal(t, []string{"name"}, cols)
	require.Len(t, rows, 1)
	assert.Equal(t, heaptable.Row{"name": heaptable.NewText("a")}, rows[0])
}

func TestOptimizeFusesSelectOverTableScan(t *testing.T) {
	tbl := newTestTable(t)
	plan := SelectNode{Predicate: Predicate{"id": heaptable.NewInt(1)}, Child: TableScan{Table: tbl}}
	optimized := Optimize(plan)
	fused, ok := optimized.(SelectFromTable)
	require.True(t, ok)
	assert.Equal(t, tbl, fused.Table)
}

func TestPipelineReturnsFilteredHandles(t *testing.T) {
	tbl := newTestTable(t)
	h1, err := tbl.Insert(heaptable.Row{"id": heaptable.NewInt(1), "name": heaptable.NewText("a")})
	require.NoError(t, err)
	_, err = tbl.Insert(heaptable.Row{"id": heaptable.NewInt(2), "name": heaptable.NewText("b")})
	require.NoError(t, err)

	plan := ProjectAllNode{Child: SelectNode{
		Predicate: Predicate{"id": heaptable.NewInt(1)},
		Child:     TableScan{Table: tbl},
	}}
	table, handles, err := Pipeline(plan)
	require.NoError(t, err)
	assert.Same(t, tbl, table)
	assert.Equal(t, []heaptable.Handle{h1}, handles)
}
