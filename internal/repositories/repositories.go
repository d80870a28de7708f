// package repositories provides the SQLite implementations of the models repository interfaces.
package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// NextSequence returns the next insertion sequence number for the rows of table owned by key.
//
// It must run inside the transaction that inserts the rows so the value is not handed out twice.
func NextSequence(ctx context.Context, tx *sql.Tx, table, ownerColumn, key string) (int, error) {
	var seq int
	query := fmt.Sprintf("SELECT COALESCE(MAX(seq), 0) + 1 FROM %s WHERE %s = ?", table, ownerColumn)
	if err := tx.QueryRowContext(ctx, query, key).Scan(&seq); err != nil {
		return 0, fmt.Errorf("failed to get sequence value: %w", err)
	}
	return seq, nil
}

// nullTime stores zero times as NULL and everything else as UTC.
func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

func nullTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return nullTime(*t)
}

func timeOrZero(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}

// queryIDs collects a single string column. The rows are closed before returning.
func queryIDs(ctx context.Context, db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return ids, nil
}

// requireAffected turns a zero row count into err.
func requireAffected(result sql.Result, err error) error {
	rows, rerr := result.RowsAffected()
	if rerr != nil {
		return fmt.Errorf("failed to get affected rows: %w", rerr)
	}
	if rows == 0 {
		return err
	}
	return nil
}
