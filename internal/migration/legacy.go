package migration

import (
	"context"
	"database/sql"
	"fmt"

	"broker-crm/internal/features/record"

	_ "github.com/lib/pq"
)

// RowSource reads rows of the legacy backend as records keyed by column.
type RowSource interface {
	Query(ctx context.Context, query string, args ...any) ([]record.Record, error)
}

// LegacyDB is the hosted Postgres backend the CRM used before.
type LegacyDB struct {
	db *sql.DB
}

func OpenLegacyDB(ctx context.Context, dsn string) (*LegacyDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("LEGACY_DATABASE_URL is not set")
	}
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open legacy database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping legacy database: %w", err)
	}
	db.SetMaxOpenConns(5)
	return &LegacyDB{db: db}, nil
}

func (l *LegacyDB) Close() error {
	return l.db.Close()
}

func (l *LegacyDB) Query(ctx context.Context, query string, args ...any) ([]record.Record, error) {
	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]record.Record, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	out := []record.Record{}
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		rec := make(record.Record, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				rec[col] = string(b)
			} else {
				rec[col] = values[i]
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
