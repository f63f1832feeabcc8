package repositories

import (
	"context"
	"database/sql"
	"fmt"
)

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NextSequence returns the next sequence number for table, i.e. one past its current maximum.
//
// Run it inside the transaction that inserts the row so concurrent writers cannot draw the same
// number; the UNIQUE constraint on sequence rejects any that slip through.
func NextSequence(ctx context.Context, q querier, table string) (int64, error) {
	var current sql.NullInt64
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(sequence) FROM %s", table)).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}
	return current.Int64 + 1, nil
}
