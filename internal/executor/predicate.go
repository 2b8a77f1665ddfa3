package executor

import (
	"github.com/pingcap/tidb/pkg/parser/ast"

	"dbkernel/internal/planner"
)

// whereConjunction implements get_where_conjunction: a recursive descent
// over the WHERE expression that accepts only AND of column = literal
// comparisons (SPEC_FULL.md §4.6).
func whereConjunction(expr ast.ExprNode, cols []string) (planner.Predicate, error) {
	pred := planner.Predicate{}
	if err := collectConjunction(expr, cols, pred); err != nil {
		return nil, err
	}
	return pred, nil
}

func collectConjunction(expr ast.ExprNode, cols []string, pred planner.Predicate) error {
	bin, ok := expr.(*ast.BinaryOperationExpr)
	if !ok {
		return &planner.UnsupportedPredicateError{Detail: "expected a comparison or AND"}
	}
	if isAnd(bin.Op) {
		if err := collectConjunction(bin.L, cols, pred); err != nil {
			return err
		}
		return collectConjunction(bin.R, cols, pred)
	}
	if !isEquals(bin.Op) {
		return &planner.UnsupportedPredicateError{Detail: "only = and AND are supported"}
	}

	colName, ok := columnNameOf(bin.L)
	litExpr := bin.R
	if !ok {
		colName, ok = columnNameOf(bin.R)
		litExpr = bin.L
	}
	if !ok {
		return &planner.UnsupportedPredicateError{Detail: "expected column = literal"}
	}
	if !containsStr(cols, colName) {
		return &planner.UnsupportedPredicateError{Detail: "unknown column " + colName}
	}
	val, ok := literalValue(litExpr)
	if !ok {
		return &planner.UnsupportedPredicateError{Detail: "literal must be INT or TEXT"}
	}
	if _, exists := pred[colName]; exists {
		return &planner.UnsupportedPredicateError{Detail: "repeated predicate column " + colName}
	}
	pred[colName] = val
	return nil
}

func containsStr(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
