package source

import (
	"context"
	"database/sql"
	"fmt"
)

// Querier is the subset of *sql.DB the inspectors read through.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// QueryRows runs q and decodes every row with decode. Query and
// iteration failures wrap ErrQuery, decode failures wrap ErrRowDecode.
// The first failure aborts the whole read.
func QueryRows[T any](ctx context.Context, db Querier, decode func(*sql.Rows) (T, error), q string, args ...any) ([]T, error) {
	rows, err := db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	defer rows.Close()

	var out []T
	for rows.Next() {
		v, err := decode(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrRowDecode, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrQuery, err)
	}
	return out, nil
}

// ScanString decodes a single-column string row.
func ScanString(rows *sql.Rows) (string, error) {
	var s string
	err := rows.Scan(&s)
	return s, err
}
