// Package sqlfront adapts github.com/pingcap/tidb/pkg/parser into a single
// parse/unparse entry point for the executor: one SQL statement in, one
// typed ast.StmtNode out, with a matching restore-to-string for CLI echo
// (SPEC_FULL.md §6.1).
package sqlfront

import (
	"errors"
	"strings"

	"github.com/pingcap/tidb/pkg/parser"
	"github.com/pingcap/tidb/pkg/parser/ast"
	"github.com/pingcap/tidb/pkg/parser/format"
	_ "github.com/pingcap/tidb/pkg/parser/test_driver"
)

var errEmptyStatement = errors.New("no statement found")

// Parser parses single SQL statements into tidb's typed AST.
type Parser struct {
	p *parser.Parser
}

// New returns a ready-to-use Parser.
func New() *Parser {
	return &Parser{p: parser.New()}
}

// Parse parses sql, which must contain exactly one statement (a trailing
// semicolon is fine), and returns its AST root.
func (p *Parser) Parse(sql string) (ast.StmtNode, error) {
	stmtNodes, _, err := p.p.Parse(sql, "", "")
	if err != nil {
		return nil, &ParseError{SQL: sql, Err: err}
	}
	if len(stmtNodes) == 0 {
		return nil, &ParseError{SQL: sql, Err: errEmptyStatement}
	}
	return stmtNodes[0], nil
}

// Restore unparses stmt back to SQL text, for echoing a parsed statement in
// the REPL.
func Restore(stmt ast.StmtNode) (string, error) {
	var sb strings.Builder
	ctx := format.NewRestoreCtx(format.DefaultRestoreFlags, &sb)
	if err := stmt.Restore(ctx); err != nil {
		return "", err
	}
	return sb.String(), nil
}
