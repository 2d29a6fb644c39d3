package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/k3ss-official/total-recall/internal/platform/logger"
	"github.com/k3ss-official/total-recall/internal/store"
	"github.com/k3ss-official/total-recall/internal/task"
)

// TaskStore implements task.Store on PostgreSQL. Updates run inside a
// transaction with SELECT ... FOR UPDATE so the read-mutate-write cycle is
// atomic across processes, matching the contract the in-memory store gives
// within one process.
type TaskStore struct {
	db *sql.DB
}

// NewTaskStore creates a TaskStore over the given database handle.
func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

// Put inserts a new task record.
func (s *TaskStore) Put(ctx context.Context, record task.Record) error {
	results, err := json.Marshal(record.Results)
	if err != nil {
		return fmt.Errorf("failed to encode task results: %w", err)
	}

	query := `
		INSERT INTO tasks (id, kind, status, progress, processed_count, total_count, message, results, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.Kind, record.Status, record.Progress,
		record.ProcessedCount, record.TotalCount, record.Message,
		results, record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		logger.FromContext(ctx).Error("failed to save task record",
			"task_id", record.ID, "error", err)
		return fmt.Errorf("failed to save task record: %w", mapError(err, task.ErrNotFound))
	}
	return nil
}

// Get returns a snapshot of the record, or task.ErrNotFound.
func (s *TaskStore) Get(ctx context.Context, id string) (task.Record, error) {
	return scanRecord(s.db.QueryRowContext(ctx, selectTaskQuery+` WHERE id = $1`, id))
}

// Update applies the mutator within a transaction holding a row lock.
func (s *TaskStore) Update(ctx context.Context, id string, mutate func(*task.Record) error) (task.Record, error) {
	var updated task.Record

	err := store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		record, err := scanRecord(tx.QueryRowContext(ctx, selectTaskQuery+` WHERE id = $1 FOR UPDATE`, id))
		if err != nil {
			return err
		}

		if err := mutate(&record); err != nil {
			return err
		}

		results, err := json.Marshal(record.Results)
		if err != nil {
			return fmt.Errorf("failed to encode task results: %w", err)
		}

		query := `
			UPDATE tasks
			SET status = $1, progress = $2, processed_count = $3, message = $4, results = $5, updated_at = now()
			WHERE id = $6
			RETURNING updated_at
		`
		if err := tx.QueryRowContext(ctx, query,
			record.Status, record.Progress, record.ProcessedCount,
			record.Message, results, id,
		).Scan(&record.UpdatedAt); err != nil {
			return fmt.Errorf("failed to update task record: %w", mapError(err, task.ErrNotFound))
		}

		updated = record
		return nil
	})
	if err != nil {
		return task.Record{}, err
	}
	return updated, nil
}

// Delete removes the record. Deleting an unknown ID is a no-op.
func (s *TaskStore) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete task record: %w", err)
	}
	return nil
}

// List returns snapshots of all records, newest first.
func (s *TaskStore) List(ctx context.Context) ([]task.Record, error) {
	rows, err := s.db.QueryContext(ctx, selectTaskQuery+` ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query task records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []task.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating task rows: %w", err)
	}
	return records, nil
}

const selectTaskQuery = `
	SELECT id, kind, status, progress, processed_count, total_count, message, results, created_at, updated_at
	FROM tasks`

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one task row, decoding the results JSONB column.
func scanRecord(row rowScanner) (task.Record, error) {
	var record task.Record
	var results []byte

	err := row.Scan(
		&record.ID, &record.Kind, &record.Status, &record.Progress,
		&record.ProcessedCount, &record.TotalCount, &record.Message,
		&results, &record.CreatedAt, &record.UpdatedAt,
	)
	if err != nil {
		return task.Record{}, mapError(err, task.ErrNotFound)
	}

	if len(results) > 0 {
		if err := json.Unmarshal(results, &record.Results); err != nil {
			return task.Record{}, fmt.Errorf("failed to decode task results: %w", err)
		}
	}
	return record, nil
}

// Ensure TaskStore implements task.Store.
var _ task.Store = (*TaskStore)(nil)
