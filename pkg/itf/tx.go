package itf

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// stubTx satisfies repo.Tx so InTx treats the context as already
// transactional. In-memory repositories never touch it; any call means a
// test wired a real repository by mistake.
type stubTx struct {
	tb testing.TB
}

func (s *stubTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	s.tb.Fatal("unexpected database access in in-memory test")
	return pgconn.CommandTag{}, nil
}

func (s *stubTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	s.tb.Fatal("unexpected database access in in-memory test")
	return nil, nil
}

func (s *stubTx) QueryRow(context.Context, string, ...any) pgx.Row {
	s.tb.Fatal("unexpected database access in in-memory test")
	return nil
}
