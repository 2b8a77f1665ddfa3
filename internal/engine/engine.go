// Package engine wires storage, catalog, planner, executor, the SQL
// front end, and configuration into the single entry point the CLI
// drives (SPEC_FULL.md §2 C9).
package engine

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"dbkernel/internal/catalog"
	"dbkernel/internal/config"
	"dbkernel/internal/executor"
	"dbkernel/internal/sqlfront"
)

// Engine is the process-wide state the executor assumes exists for its
// lifetime: the storage environment directory and the catalog singletons
// (SPEC_FULL.md §5).
type Engine struct {
	cfg    config.Config
	cat    *catalog.Catalog
	exec   *executor.Executor
	parser *sqlfront.Parser
	log    *zap.Logger
}

// Open creates dataDir if absent, bootstraps the catalog there, and
// returns a ready-to-use Engine. dataDir, when non-empty, overrides
// cfg.DataDir.
func Open(dataDir string, cfg config.Config) (*Engine, error) {
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if dataDir == "" {
		return nil, fmt.Errorf("engine: no data directory given")
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	cat := catalog.New(dataDir, cfg.BlockSize, logger)
	if err := cat.Bootstrap(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		cat:    cat,
		exec:   executor.New(cat, logger),
		parser: sqlfront.New(),
		log:    logger,
	}, nil
}

// Close flushes the logger. Storage handles close lazily per-table; there
// is no single process-wide file handle to release.
func (e *Engine) Close() error {
	_ = e.log.Sync()
	return nil
}

// Execute parses and runs one SQL statement. It returns the statement's
// restored (re-unparsed) form alongside the result, for REPL echoing,
// even when execution itself fails. ctx is accepted for plumbing per the
// ambient stack's convention (SPEC_FULL.md §5); cancellation is not
// honored mid-statement.
func (e *Engine) Execute(ctx context.Context, sql string) (*executor.Result, string, error) {
	stmt, err := e.parser.Parse(sql)
	if err != nil {
		return nil, "", err
	}
	restored, _ := sqlfront.Restore(stmt)

	select {
	case <-ctx.Done():
		return nil, restored, ctx.Err()
	default:
	}

	res, err := e.exec.Execute(stmt)
	if err != nil {
		return nil, restored, err
	}
	return res, restored, nil
}
