// Package executor dispatches parsed statements against the catalog and
// planner, implementing the restricted SQL dialect of SPEC_FULL.md §4.6.
package executor

import (
	"fmt"

	"github.com/pingcap/tidb/pkg/parser/ast"
	"go.uber.org/zap"

	"dbkernel/internal/catalog"
	"dbkernel/internal/heaptable"
	"dbkernel/internal/index"
	"dbkernel/internal/planner"
)

// Result is the uniform shape every statement kind produces: either a
// row set with its column list (SELECT, SHOW) or a plain status message
// (everything else).
type Result struct {
	Columns []string
	Rows    []heaptable.Row
	Message string
}

// Executor is a stateless dispatcher keyed by statement kind; all state
// lives in the Catalog it was constructed with.
type Executor struct {
	cat *catalog.Catalog
	log *zap.Logger
}

// New returns an Executor over cat. logger may be nil.
func New(cat *catalog.Catalog, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{cat: cat, log: logger}
}

// Execute runs a single parsed statement to completion.
func (e *Executor) Execute(stmt ast.StmtNode) (*Result, error) {
	switch n := stmt.(type) {
	case *ast.CreateTableStmt:
		return e.createTable(n)
	case *ast.DropTableStmt:
		return e.dropTable(n)
	case *ast.CreateIndexStmt:
		return e.createIndex(n)
	case *ast.DropIndexStmt:
		return e.dropIndex(n)
	case *ast.InsertStmt:
		return e.insert(n)
	case *ast.DeleteStmt:
		return e.delete(n)
	case *ast.SelectStmt:
		return e.selectRows(n)
	case *ast.ShowStmt:
		return e.show(n)
	default:
		return nil, &UnsupportedError{Detail: fmt.Sprintf("statement type %T", stmt)}
	}
}

func (e *Executor) createTable(n *ast.CreateTableStmt) (*Result, error) {
	name := n.Table.Name.O
	columns := make([]string, 0, len(n.Cols))
	dataTypes := make([]string, 0, len(n.Cols))
	for _, col := range n.Cols {
		dt := dataTypeName(col.Tp)
		if dt == "" {
			return nil, &heaptable.SchemaError{Table: name, Column: col.Name.Name.O, Message: "unrecognized data type"}
		}
		columns = append(columns, col.Name.Name.O)
		dataTypes = append(dataTypes, dt)
	}

	var err error
	if n.IfNotExists {
		err = e.cat.CreateTableIfNotExists(name, columns, dataTypes)
	} else {
		err = e.cat.CreateTable(name, columns, dataTypes)
	}
	if err != nil {
		return nil, err
	}
	e.log.Info("create table", zap.String("table", name))
	return &Result{Message: fmt.Sprintf("table %s created", name)}, nil
}

func (e *Executor) dropTable(n *ast.DropTableStmt) (*Result, error) {
	dropped := 0
	for _, tn := range n.Tables {
		if err := e.cat.DropTable(tn.Name.O); err != nil {
			return nil, err
		}
		dropped++
	}
	return &Result{Message: fmt.Sprintf("dropped %d table(s)", dropped)}, nil
}

func (e *Executor) createIndex(n *ast.CreateIndexStmt) (*Result, error) {
	table := n.Table.Name.O
	columns := make([]string, 0, len(n.IndexPartSpecifications))
	for _, spec := range n.IndexPartSpecifications {
		if spec.Column == nil {
			return nil, &UnsupportedError{Detail: "expression indexes are not supported"}
		}
		columns = append(columns, spec.Column.Name.O)
	}

	indexType := "BTREE"
	if n.IndexOption != nil && n.IndexOption.Tp == ast.IndexTypeHash {
		indexType = "HASH"
	}

	if err := e.cat.CreateIndex(table, n.IndexName, columns, indexType); err != nil {
		return nil, err
	}
	e.log.Info("create index", zap.String("table", table), zap.String("index", n.IndexName))
	return &Result{Message: fmt.Sprintf("index %s created on %s", n.IndexName, table)}, nil
}

func (e *Executor) dropIndex(n *ast.DropIndexStmt) (*Result, error) {
	table := n.Table.Name.O
	if err := e.cat.DropIndex(table, n.IndexName); err != nil {
		return nil, err
	}
	return &Result{Message: fmt.Sprintf("index %s dropped", n.IndexName)}, nil
}

func attrMatches(want, got heaptable.ColumnAttribute) bool {
	if want == got {
		return true
	}
	return want == heaptable.AttrBoolean && got == heaptable.AttrInt
}

func (e *Executor) insert(n *ast.InsertStmt) (*Result, error) {
	table, err := tableNameFromRefs(n.Table)
	if err != nil {
		return nil, err
	}
	t, err := e.cat.GetTable(table)
	if err != nil {
		return nil, err
	}

	targetCols := t.Columns()
	if len(n.Columns) > 0 {
		targetCols = make([]string, len(n.Columns))
		for i, c := range n.Columns {
			if !containsStr(t.Columns(), c.Name.O) {
				return nil, &heaptable.SchemaError{Table: table, Column: c.Name.O, Message: "invalid column name"}
			}
			targetCols[i] = c.Name.O
		}
	}

	if len(n.Lists) != 1 {
		return nil, &UnsupportedError{Detail: "multi-row INSERT is not supported"}
	}
	values := n.Lists[0]
	if len(values) != len(targetCols) {
		return nil, &heaptable.SchemaError{Table: table, Message: "unsupported NULL/default"}
	}

	attrs := t.Attributes()
	row := make(heaptable.Row, len(targetCols))
	for i, col := range targetCols {
		val, ok := literalValue(values[i])
		if !ok {
			return nil, &heaptable.SchemaError{Table: table, Column: col, Message: "invalid column name"}
		}
		want := attrs[col]
		if !attrMatches(want, val.Attr) {
			return nil, &heaptable.SchemaError{Table: table, Column: col, Message: "value type does not match column type"}
		}
		if want == heaptable.AttrBoolean && val.Attr == heaptable.AttrInt {
			val = heaptable.NewBool(val.N != 0)
		}
		row[col] = val
	}

	handle, err := t.Insert(row)
	if err != nil {
		return nil, err
	}
	names, err := e.cat.GetIndexNames(table)
	if err != nil {
		return nil, err
	}
	for _, idxName := range names {
		idx := &index.StubIndex{Table: table, Name: idxName}
		if err := idx.Insert(handle); err != nil {
			return nil, &UnsupportedError{Detail: fmt.Sprintf("index %s insert: %v", idxName, err)}
		}
	}
	return &Result{Message: fmt.Sprintf("1 row inserted, %d index(es) updated", len(names))}, nil
}

func (e *Executor) delete(n *ast.DeleteStmt) (*Result, error) {
	table, err := tableNameFromRefs(n.TableRefs)
	if err != nil {
		return nil, err
	}
	t, err := e.cat.GetTable(table)
	if err != nil {
		return nil, err
	}

	var plan planner.Plan = planner.TableScan{Table: t}
	if n.Where != nil {
		pred, err := whereConjunction(n.Where, t.Columns())
		if err != nil {
			return nil, err
		}
		plan = planner.SelectNode{Predicate: pred, Child: plan}
	}

	_, handles, err := planner.Pipeline(plan)
	if err != nil {
		return nil, err
	}
	names, err := e.cat.GetIndexNames(table)
	if err != nil {
		return nil, err
	}
	for _, h := range handles {
		for _, idxName := range names {
			idx := &index.StubIndex{Table: table, Name: idxName}
			if err := idx.Delete(h); err != nil {
				return nil, &UnsupportedError{Detail: fmt.Sprintf("index %s delete: %v", idxName, err)}
			}
		}
		if err := t.Del(h); err != nil {
			return nil, err
		}
	}
	return &Result{Message: fmt.Sprintf("successfully deleted %d rows from %s and %d indices", len(handles), table, len(names))}, nil
}

func (e *Executor) selectRows(n *ast.SelectStmt) (*Result, error) {
	table, err := tableNameFromRefs(n.From)
	if err != nil {
		return nil, err
	}
	t, err := e.cat.GetTable(table)
	if err != nil {
		return nil, err
	}

	var plan planner.Plan = planner.TableScan{Table: t}
	if n.Where != nil {
		pred, err := whereConjunction(n.Where, t.Columns())
		if err != nil {
			return nil, err
		}
		plan = planner.SelectNode{Predicate: pred, Child: plan}
	}

	isStar := false
	var cols []string
	for _, f := range n.Fields.Fields {
		if f.WildCard != nil {
			isStar = true
			break
		}
		name, ok := columnNameOf(f.Expr)
		if !ok {
			return nil, &UnsupportedError{Detail: "only column references are supported in the select list"}
		}
		cols = append(cols, name)
	}
	if isStar {
		plan = planner.ProjectAllNode{Child: plan}
	} else {
		plan = planner.ProjectNode{Columns: cols, Child: plan}
	}

	rows, resultCols, err := planner.Evaluate(plan)
	if err != nil {
		return nil, err
	}
	return &Result{Columns: resultCols, Rows: rows}, nil
}

func (e *Executor) show(n *ast.ShowStmt) (*Result, error) {
	switch n.Tp {
	case ast.ShowTables:
		rows, err := e.cat.ShowTables()
		return &Result{Columns: []string{"table_name"}, Rows: rows}, err
	case ast.ShowColumns:
		rows, err := e.cat.ShowColumns(n.Table.Name.O)
		return &Result{Columns: []string{"table_name", "column_name", "data_type"}, Rows: rows}, err
	case ast.ShowIndex:
		rows, err := e.cat.ShowIndex(n.Table.Name.O)
		return &Result{
			Columns: []string{"table_name", "index_name", "seq_in_index", "column_name", "index_type", "is_unique"},
			Rows:    rows,
		}, err
	default:
		return nil, &UnsupportedError{Detail: "unsupported SHOW statement"}
	}
}
