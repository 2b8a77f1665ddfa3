package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dbkernel/internal/config"
	"dbkernel/internal/sqlfront"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	dir := t.TempDir()
	e, err := Open(dir, config.Default())
	require.NoError(t, err)
	t.Cleanup(func() { e.Close() })
	return e
}

func TestEngineEndToEndScenario(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	_, restored, err := e.Execute(ctx, "CREATE TABLE foo (id INT, name TEXT)")
	require.NoError(t, err)
	assert.Contains(t, restored, "CREATE TABLE")

	_, _, err = e.Execute(ctx, "INSERT INTO foo (id, name) VALUES (1, 'alice')")
	require.NoError(t, err)
	_, _, err = e.Execute(ctx, "INSERT INTO foo (id, name) VALUES (2, 'bob')")
	require.NoError(t, err)

	res, _, err := e.Execute(ctx, "SELECT * FROM foo")
	require.NoError(t, err)
	assert.Len(t, res.Rows, 2)

	res, _, err = e.Execute(ctx, "SHOW TABLES")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "foo", res.Rows[0]["table_name"].S)
}

func TestEngineParseErrorDoesNotTouchExecutor(t *testing.T) {
	e := newTestEngine(t)
	_, _, err := e.Execute(context.Background(), "SELEKT bogus")
	var parseErr *sqlfront.ParseError
	assert.ErrorAs(t, err, &parseErr)
}

func TestEngineReopenRecoversState(t *testing.T) {
	dir := t.TempDir()
	e1, err := Open(dir, config.Default())
	require.NoError(t, err)
	_, _, err = e1.Execute(context.Background(), "CREATE TABLE foo (id INT)")
	require.NoError(t, err)
	require.NoError(t, e1.Close())

	e2, err := Open(dir, config.Default())
	require.NoError(t, err)
	defer e2.Close()

	res, _, err := e2.Execute(context.Background(), "SHOW TABLES")
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "foo", res.Rows[0]["table_name"].S)
}
