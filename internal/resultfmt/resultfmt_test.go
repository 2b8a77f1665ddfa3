package resultfmt

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkernel/internal/executor"
	"dbkernel/internal/heaptable"
)

func TestFormatTableRendersHeaderSeparatorAndRows(t *testing.T) {
	f, err := NewFormatter("")
	require.NoError(t, err)

	res := &executor.Result{
		Columns: []string{"id", "name"},
		Rows: []heaptable.Row{
			{"id": heaptable.NewInt(1), "name": heaptable.NewText("alice")},
		},
	}
	out, err := f.Format(res)
	require.NoError(t, err)
	assert.Contains(t, out, "id name\n")
	assert.Contains(t, out, "+--+----")
	assert.Contains(t, out, `1 "alice"`)
}

func TestFormatValueBoolean(t *testing.T) {
	assert.Equal(t, "true", formatValue(heaptable.NewBool(true)))
	assert.Equal(t, "false", formatValue(heaptable.NewBool(false)))
}

func TestFormatMessageOnly(t *testing.T) {
	f, err := NewFormatter("table")
	require.NoError(t, err)
	out, err := f.Format(&executor.Result{Message: "1 row inserted, 0 index(es) updated"})
	require.NoError(t, err)
	assert.Equal(t, "1 row inserted, 0 index(es) updated\n", out)
}

func TestNewFormatterRejectsUnknown(t *testing.T) {
	_, err := NewFormatter("json")
	assert.Error(t, err)
}

func TestFormatErrorIsSingleLine(t *testing.T) {
	out := FormatError(errors.New("boom"))
	assert.Equal(t, "Error: boom", out)
}
