package executor

import "fmt"

// UnsupportedError reports a statement form the executor does not handle
// (UPDATE, multi-table statements, anything outside the restricted
// dialect).
type UnsupportedError struct {
	Detail string
}

func (e *UnsupportedError) Error() string {
	return fmt.Sprintf("unsupported: %s", e.Detail)
}
