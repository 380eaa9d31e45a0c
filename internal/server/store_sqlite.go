package server

import (
	"context"
	"database/sql"
	"time"
)

type SQLiteStore struct {
	DB *sql.DB
}

func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{DB: db}
}

func (s *SQLiteStore) Record(ctx context.Context, rec DecodeRecord) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO decode_history (id, request_id, make, field, status, message, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RequestID, rec.Make, rec.Field, rec.Status, rec.Message, rec.CreatedAt.UnixNano(),
	)
	return err
}

func (s *SQLiteStore) Recent(ctx context.Context, limit int) ([]DecodeRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, request_id, make, field, status, message, created_at
		 FROM decode_history
		 ORDER BY created_at DESC, rowid DESC
		 LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DecodeRecord
	for rows.Next() {
		var rec DecodeRecord
		var created int64
		if err := rows.Scan(&rec.ID, &rec.RequestID, &rec.Make, &rec.Field, &rec.Status, &rec.Message, &created); err != nil {
			return nil, err
		}
		rec.CreatedAt = time.Unix(0, created).UTC()
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM decode_history`).Scan(&n)
	return n, err
}
