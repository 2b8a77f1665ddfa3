// Package planner implements EvalPlan, the small algebraic tree that
// sits between the executor and a HeapTable (SPEC_FULL.md §4.5).
package planner

import (
	"fmt"

	"dbkernel/internal/heaptable"
)

// Predicate is a column-name to Value equality conjunction.
type Predicate map[string]heaptable.Value

// Plan is any node in the EvalPlan tree.
type Plan interface{ isPlan() }

// TableScan reads every live handle of a table, in table order.
type TableScan struct {
	Table *heaptable.HeapTable
}

func (TableScan) isPlan() {}

// SelectNode filters its child's handles by Predicate.
type SelectNode struct {
	Predicate Predicate
	Child     Plan
}

func (SelectNode) isPlan() {}

// SelectFromTable is the fused form Optimize produces from
// SelectNode{Predicate, TableScan{Table}}.
type SelectFromTable struct {
	Table     *heaptable.HeapTable
	Predicate Predicate
}

func (SelectFromTable) isPlan() {}

// ProjectNode restricts evaluated rows to Columns.
type ProjectNode struct {
	Columns []string
	Child   Plan
}

func (ProjectNode) isPlan() {}

// ProjectAllNode evaluates every declared column of its child's table.
type ProjectAllNode struct {
	Child Plan
}

func (ProjectAllNode) isPlan() {}

// Optimize applies the one rewrite this planner knows: fusing a
// Select directly over a TableScan into a single SelectFromTable node.
// It is total (every Plan has a defined result) and preserves the
// multiset of rows the unoptimized plan would produce.
func Optimize(p Plan) Plan {
	switch n := p.(type) {
	case ProjectAllNode:
		return ProjectAllNode{Child: Optimize(n.Child)}
	case ProjectNode:
		return ProjectNode{Columns: n.Columns, Child: Optimize(n.Child)}
	case SelectNode:
		if ts, ok := n.Child.(TableScan); ok {
			return SelectFromTable{Table: ts.Table, Predicate: n.Predicate}
		}
		return SelectNode{Predicate: n.Predicate, Child: Optimize(n.Child)}
	default:
		return p
	}
}

// Pipeline evaluates p down to its handle set without materializing rows.
// p must be Project{All}(Select?(TableScan(t)))-shaped after Optimize.
func Pipeline(p Plan) (*heaptable.HeapTable, []heaptable.Handle, error) {
	switch n := Optimize(p).(type) {
	case ProjectAllNode:
		return pipelineChild(n.Child)
	case ProjectNode:
		return pipelineChild(n.Child)
	default:
		return pipelineChild(n)
	}
}

func pipelineChild(p Plan) (*heaptable.HeapTable, []heaptable.Handle, error) {
	switch n := p.(type) {
	case TableScan:
		handles, err := n.Table.Select(nil)
		return n.Table, handles, err
	case SelectFromTable:
		handles, err := n.Table.Select(nil)
		if err != nil {
			return nil, nil, err
		}
		filtered, err := filterHandles(n.Table, handles, n.Predicate)
		return n.Table, filtered, err
	case SelectNode:
		table, handles, err := pipelineChild(n.Child)
		if err != nil {
			return nil, nil, err
		}
		filtered, err := filterHandles(table, handles, n.Predicate)
		return table, filtered, err
	default:
		return nil, nil, fmt.Errorf("planner: plan is not pipeline-shaped")
	}
}

func filterHandles(table *heaptable.HeapTable, handles []heaptable.Handle, pred Predicate) ([]heaptable.Handle, error) {
	if len(pred) == 0 {
		return handles, nil
	}
	out := make([]heaptable.Handle, 0, len(handles))
	for _, h := range handles {
		row, err := table.Project(h)
		if err != nil {
			return nil, err
		}
		if rowMatches(row, pred) {
			out = append(out, h)
		}
	}
	return out, nil
}

func rowMatches(row heaptable.Row, pred Predicate) bool {
	for col, want := range pred {
		got, ok := row[col]
		if !ok || got != want {
			return false
		}
	}
	return true
}

// Evaluate materializes rows by projecting each handle through its table.
// It returns the rows alongside the column list they were projected to.
func Evaluate(p Plan) ([]heaptable.Row, []string, error) {
	switch n := Optimize(p).(type) {
	case ProjectAllNode:
		table, handles, err := pipelineChild(n.Child)
		if err != nil {
			return nil, nil, err
		}
		rows := make([]heaptable.Row, 0, len(handles))
		for _, h := range handles {
			row, err := table.Project(h)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, row)
		}
		return rows, table.Columns(), nil
	case ProjectNode:
		table, handles, err := pipelineChild(n.Child)
		if err != nil {
			return nil, nil, err
		}
		rows := make([]heaptable.Row, 0, len(handles))
		for _, h := range handles {
			row, err := table.Project(h, n.Columns...)
			if err != nil {
				return nil, nil, err
			}
			rows = append(rows, row)
		}
		return rows, n.Columns, nil
	default:
		return nil, nil, fmt.Errorf("planner: plan is not evaluate-shaped")
	}
}
