package store

import "database/sql"

// RowStream is a lazily-produced, forward-only sequence of query results. It
// wraps the underlying cursor, so rows are decoded one at a time and the
// database connection stays held until Close. A stream is not restartable;
// a second pass requires re-issuing the query.
type RowStream[T any] struct {
	rows *sql.Rows
	scan func(*sql.Rows) (T, error)
	err  error
}

// Next returns the next row. It returns ok=false when the stream is
// exhausted or a scan error occurred; check Err to tell the two apart.
func (s *RowStream[T]) Next() (item T, ok bool) {
	if s.err != nil || !s.rows.Next() {
		var zero T
		return zero, false
	}
	item, err := s.scan(s.rows)
	if err != nil {
		s.err = err
		var zero T
		return zero, false
	}
	return item, true
}

// Err returns the first error encountered while iterating, if any.
func (s *RowStream[T]) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.rows.Err()
}

// Close releases the cursor and its connection. Safe to call more than once.
func (s *RowStream[T]) Close() error {
	return s.rows.Close()
}

// Collect drains the stream into a slice and closes it. Queries stream by
// default; this is for callers (mostly tests) that want everything at once.
func (s *RowStream[T]) Collect() ([]T, error) {
	defer s.Close()

	var items []T
	for {
		item, ok := s.Next()
		if !ok {
			break
		}
		items = append(items, item)
	}
	return items, s.Err()
}

// queryStream is the single read primitive all queries build on: it issues
// sqlText and exposes the result set as a RowStream without materializing it.
func queryStream[T any](db *sql.DB, sqlText string, scan func(*sql.Rows) (T, error)) (*RowStream[T], error) {
	rows, err := db.Query(sqlText)
	if err != nil {
		return nil, err
	}
	return &RowStream[T]{rows: rows, scan: scan}, nil
}
