// Package resultfmt renders an executor Result to the exact textual form
// of SPEC_FULL.md §6.7/§6.10, mirroring the teacher's Formatter
// interface/Format-enum/NewFormatter factory shape but with a single
// concrete implementation: the engine has one query surface to render,
// not a schema diff with several output targets.
package resultfmt

import (
	"fmt"
	"strings"

	"dbkernel/internal/executor"
	"dbkernel/internal/heaptable"
)

// Format names the rendering target. Only "table" exists today; the type
// stays an enum so a future machine-readable format has somewhere to go.
type Format string

const FormatTable Format = "table"

// Formatter renders a finished statement Result to text.
type Formatter interface {
	Format(*executor.Result) (string, error)
}

// NewFormatter returns the Formatter for name. An empty name defaults to
// "table".
func NewFormatter(name string) (Formatter, error) {
	format := Format(strings.ToLower(strings.TrimSpace(name)))
	switch format {
	case "", FormatTable:
		return tableFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported result format: %s; use 'table'", name)
	}
}

type tableFormatter struct{}

func (tableFormatter) Format(res *executor.Result) (string, error) {
	var sb strings.Builder
	if len(res.Columns) > 0 {
		sb.WriteString(strings.Join(res.Columns, " "))
		sb.WriteByte('\n')
		sb.WriteString(separator(res.Columns))
		sb.WriteByte('\n')
		for _, row := range res.Rows {
			sb.WriteString(formatRow(res.Columns, row))
			sb.WriteByte('\n')
		}
	}
	if res.Message != "" {
		sb.WriteString(res.Message)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

func separator(columns []string) string {
	var sb strings.Builder
	for _, col := range columns {
		sb.WriteByte('+')
		sb.WriteString(strings.Repeat("-", len(col)))
	}
	sb.WriteByte('+')
	return sb.String()
}

func formatRow(columns []string, row heaptable.Row) string {
	parts := make([]string, len(columns))
	for i, col := range columns {
		parts[i] = formatValue(row[col])
	}
	return strings.Join(parts, " ")
}

func formatValue(v heaptable.Value) string {
	switch v.Attr {
	case heaptable.AttrInt:
		return fmt.Sprintf("%d", v.N)
	case heaptable.AttrText:
		return `"` + v.S + `"`
	case heaptable.AttrBoolean:
		if v.Bool() {
			return "true"
		}
		return "false"
	default:
		return "???"
	}
}

// FormatError renders err as the single-line, user-visible failure text
// required by SPEC_FULL.md §7.
func FormatError(err error) string {
	return fmt.Sprintf("Error: %s", err)
}
