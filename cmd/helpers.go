package main

import (
	"context"

	"github.com/sells-group/ir-cli/internal/history"
	"github.com/sells-group/ir-cli/internal/scorer"
	"github.com/sells-group/ir-cli/internal/source"
)

// openCaseSource opens the configured case database as a tabular source.
// The returned cleanup function must be called when the command finishes.
func openCaseSource(ctx context.Context) (source.TabularSource, func(), error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	if cfg.Case.Driver == "postgres" {
		src, err := source.NewPostgres(ctx, cfg.Case.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return src, src.Close, nil
	}

	src, err := source.NewSQLite(cfg.Case.Path)
	if err != nil {
		return nil, nil, err
	}
	return src, func() { _ = src.Close() }, nil
}

// openHistory opens the history store, or returns nil when none is
// configured; scoring then treats the historical dimension as neutral.
func openHistory() (*history.Store, func(), error) {
	if cfg.History.Path == "" {
		return nil, func() {}, nil
	}
	st, err := history.Open(cfg.History.Path)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}

// historyReader converts a possibly-nil store into the reader the scorer
// accepts. A nil *Store inside a non-nil interface would defeat the
// scorer's nil check.
func historyReader(st *history.Store) scorer.HistoryReader {
	if st == nil {
		return nil
	}
	return st
}
