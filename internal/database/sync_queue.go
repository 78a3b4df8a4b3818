package database

import (
	"context"
	"fmt"
	"time"

	"nestflow/internal/models"
)

const syncTaskColumns = `id, task_type, reservation_id, payload, status, retry_count, last_error, created_at, processed_at, next_retry_at`

func (db *DB) CreateSyncTask(ctx context.Context, task *models.SyncTask) error {
	query := db.Rebind(`INSERT INTO sync_queue (task_type, reservation_id, payload, status, retry_count, last_error, created_at, next_retry_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if task.Status == "" {
		task.Status = models.SyncStatusPending
	}
	createdAt := utcNow()
	id, err := insertReturningID(ctx, db, query,
		task.TaskType,
		task.ReservationID,
		task.Payload,
		task.Status,
		task.RetryCount,
		task.LastError,
		createdAt,
		task.NextRetryAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync task: %w", err)
	}
	task.ID = id
	task.CreatedAt = createdAt
	return nil
}

func (db *DB) GetSyncTask(ctx context.Context, id int64) (*models.SyncTask, error) {
	var task models.SyncTask
	query := db.Rebind(`SELECT ` + syncTaskColumns + ` FROM sync_queue WHERE id = ?`)
	if err := db.GetContext(ctx, &task, query, id); err != nil {
		return nil, fmt.Errorf("failed to get sync task: %w", err)
	}
	return &task, nil
}

// GetPendingSyncTasks returns tasks due for a (re)try, oldest first.
func (db *DB) GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error) {
	query := db.Rebind(`SELECT ` + syncTaskColumns + `
              FROM sync_queue
              WHERE status IN (?, ?) AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC, id ASC LIMIT ?`)
	var tasks []models.SyncTask
	err := db.SelectContext(ctx, &tasks, query, models.SyncStatusPending, models.SyncStatusRetry, utcNow(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending sync tasks: %w", err)
	}
	return tasks, nil
}

func (db *DB) UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error {
	var query string
	var args []interface{}
	processedAt := utcNow()

	var lastError *string
	if errMsg != "" {
		lastError = &errMsg
	}

	switch status {
	case models.SyncStatusRetry:
		query = `UPDATE sync_queue SET status = ?, last_error = ?, next_retry_at = ?, retry_count = retry_count + 1 WHERE id = ?`
		args = []interface{}{status, lastError, nextRetryAt, id}
	case models.SyncStatusCompleted, models.SyncStatusFailed:
		query = `UPDATE sync_queue SET status = ?, last_error = ?, next_retry_at = ?, processed_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, nextRetryAt, processedAt, id}
	default:
		query = `UPDATE sync_queue SET status = ?, last_error = ?, next_retry_at = ? WHERE id = ?`
		args = []interface{}{status, lastError, nextRetryAt, id}
	}

	if _, err := db.ExecContext(ctx, db.Rebind(query), args...); err != nil {
		return fmt.Errorf("failed to update sync task status: %w", err)
	}
	return nil
}

func (db *DB) GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error) {
	query := db.Rebind(`SELECT ` + syncTaskColumns + ` FROM sync_queue WHERE status = ? ORDER BY created_at DESC`)
	var tasks []models.SyncTask
	if err := db.SelectContext(ctx, &tasks, query, models.SyncStatusFailed); err != nil {
		return nil, fmt.Errorf("failed to get failed sync tasks: %w", err)
	}
	return tasks, nil
}
