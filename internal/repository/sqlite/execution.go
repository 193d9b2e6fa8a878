package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"
	"github.com/sakif/codecraft/internal/model"
	"github.com/sakif/codecraft/internal/repository"
)

var _ repository.ExecutionRepository = (*DB)(nil)

// CreateExecution stores a saved run. nil Output/Error become SQL NULL.
func (db *DB) CreateExecution(ctx context.Context, rec *model.ExecutionRecord) error {
	rec.ID = xid.New().String()
	rec.CreatedAt = time.Now()

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO code_executions (id, user_id, language, code, output, error, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.UserID, rec.Language, rec.Code,
		nullString(rec.Output), nullString(rec.Error),
		rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating execution: %w", err)
	}
	return nil
}

// ListByUser returns a user's saved runs, newest first.
func (db *DB) ListByUser(ctx context.Context, userID string) ([]model.ExecutionRecord, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, user_id, language, code, output, error, created_at
		 FROM code_executions
		 WHERE user_id = ?
		 ORDER BY created_at DESC, id DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing executions: %w", err)
	}
	defer rows.Close()

	records := make([]model.ExecutionRecord, 0)
	for rows.Next() {
		var (
			rec         model.ExecutionRecord
			output, msg sql.NullString
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.Language, &rec.Code, &output, &msg, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning execution row: %w", err)
		}
		rec.Output = stringPtr(output)
		rec.Error = stringPtr(msg)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating executions: %w", err)
	}

	return records, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
