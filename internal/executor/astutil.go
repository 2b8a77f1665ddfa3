package executor

import (
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/mysql"
	"github.com/pingcap/tidb/pkg/parser/opcode"
	driver "github.com/pingcap/tidb/pkg/parser/test_driver"
	"github.com/pingcap/tidb/pkg/parser/types"

	"dbkernel/internal/heaptable"
)

// tableNameFromRefs extracts the single table name out of a FROM clause of
// the restricted single-table dialect this engine accepts.
func tableNameFromRefs(refs *ast.TableRefsClause) (string, error) {
	if refs == nil || refs.TableRefs == nil {
		return "", &UnsupportedError{Detail: "missing table reference"}
	}
	join := refs.TableRefs
	if join.Right != nil {
		return "", &UnsupportedError{Detail: "joins are not supported"}
	}
	src, ok := join.Left.(*ast.TableSource)
	if !ok {
		return "", &UnsupportedError{Detail: "unsupported table reference"}
	}
	name, ok := src.Source.(*ast.TableName)
	if !ok {
		return "", &UnsupportedError{Detail: "subqueries are not supported"}
	}
	return name.Name.O, nil
}

// literalValue converts a parsed literal expression into a heaptable.Value.
// Only INT and TEXT literals are supported; anything else reports ok=false.
func literalValue(expr ast.ExprNode) (heaptable.Value, bool) {
	ve, ok := expr.(*driver.ValueExpr)
	if !ok {
		return heaptable.Value{}, false
	}
	switch ve.Datum.Kind() {
	case types.KindInt64:
		return heaptable.NewInt(int32(ve.Datum.GetInt64())), true
	case types.KindUint64:
		return heaptable.NewInt(int32(ve.Datum.GetUint64())), true
	case types.KindString, types.KindBytes:
		return heaptable.NewText(ve.Datum.GetString()), true
	default:
		return heaptable.Value{}, false
	}
}

// dataTypeName maps a column's declared parser field type to this engine's
// restricted type vocabulary. Anything outside {INT, TEXT} is reported as
// an empty string so the caller can reject it with SchemaError.
func dataTypeName(tp *types.FieldType) string {
	switch tp.GetType() {
	case mysql.TypeTiny, mysql.TypeShort, mysql.TypeInt24, mysql.TypeLong, mysql.TypeLonglong:
		return "INT"
	case mysql.TypeVarchar, mysql.TypeString, mysql.TypeVarString,
		mysql.TypeBlob, mysql.TypeTinyBlob, mysql.TypeMediumBlob, mysql.TypeLongBlob:
		return "TEXT"
	default:
		return ""
	}
}

// columnNameOf returns the unqualified column name of a ColumnNameExpr, or
// "" if expr is not a column reference.
func columnNameOf(expr ast.ExprNode) (string, bool) {
	ref, ok := expr.(*ast.ColumnNameExpr)
	if !ok {
		return "", false
	}
	return ref.Name.Name.O, true
}

// isEquals reports whether op is tidb's equality operator.
func isEquals(op opcode.Op) bool { return op == opcode.EQ }

// isAnd reports whether op is tidb's logical AND operator.
func isAnd(op opcode.Op) bool { return op == opcode.LogicAnd }
