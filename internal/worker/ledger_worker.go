package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nestflow/internal/domain"
	"nestflow/internal/metrics"
	"nestflow/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	TaskUpsert       = "upsert"
	TaskUpdateStatus = "update_status"
)

// TaskStore persists ledger tasks between restarts.
type TaskStore interface {
	CreateSyncTask(ctx context.Context, task *models.SyncTask) error
	GetSyncTask(ctx context.Context, id int64) (*models.SyncTask, error)
	GetPendingSyncTasks(ctx context.Context, limit int) ([]models.SyncTask, error)
	UpdateSyncTaskStatus(ctx context.Context, id int64, status, errMsg string, nextRetryAt *time.Time) error
	GetFailedSyncTasks(ctx context.Context) ([]models.SyncTask, error)
}

// ledgerTaskPayload is persisted in SyncTask.Payload as JSON.
type ledgerTaskPayload struct {
	ReservationID int64               `json:"reservation_id"`
	Reservation   *models.Reservation `json:"reservation,omitempty"`
	Status        string              `json:"status,omitempty"`
}

// LedgerWorker consumes sync_queue tasks and applies them to the ledger.
type LedgerWorker struct {
	store         TaskStore
	ledger        domain.LedgerClient
	redis         *redis.Client
	retryPolicy   RetryPolicy
	queue         chan int64
	redisQueueKey string
	deadLetterKey string
	pollInterval  time.Duration
	batchSize     int
	logger        *zerolog.Logger
}

// NewLedgerWorker builds a worker; redisClient may be nil.
func NewLedgerWorker(store TaskStore, ledger domain.LedgerClient, redisClient *redis.Client, retry RetryPolicy, logger *zerolog.Logger) *LedgerWorker {
	retry = retry.withDefaults()
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &LedgerWorker{
		store:         store,
		ledger:        ledger,
		redis:         redisClient,
		retryPolicy:   retry,
		queue:         make(chan int64, models.WorkerQueueSize),
		redisQueueKey: "nestflow:ledger:queue",
		deadLetterKey: "nestflow:ledger:deadletter",
		pollInterval:  2 * time.Second,
		batchSize:     20,
		logger:        logger,
	}
}

// EnqueueTask persists the task and schedules it via redis or the in-memory queue.
func (w *LedgerWorker) EnqueueTask(ctx context.Context, taskType string, reservationID int64, reservation *models.Reservation, status string) error {
	if taskType == "" {
		return errors.New("task type is required")
	}
	if reservationID == 0 && reservation != nil {
		reservationID = reservation.ID
	}
	if reservationID == 0 {
		return errors.New("reservation id is required")
	}

	payloadBytes, err := json.Marshal(ledgerTaskPayload{
		ReservationID: reservationID,
		Reservation:   reservation,
		Status:        status,
	})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	task := models.SyncTask{
		TaskType:      taskType,
		ReservationID: reservationID,
		Payload:       string(payloadBytes),
		Status:        models.SyncStatusPending,
	}
	if err := w.store.CreateSyncTask(ctx, &task); err != nil {
		return fmt.Errorf("persist sync task: %w", err)
	}

	if w.redis != nil {
		err := w.redis.LPush(ctx, w.redisQueueKey, task.ID).Err()
		if err == nil {
			return nil
		}
		w.logger.Warn().Err(err).Int64("task_id", task.ID).Msg("Redis push failed, using memory queue")
	}

	select {
	case w.queue <- task.ID:
	default:
		w.logger.Warn().Int64("task_id", task.ID).Msg("Memory queue full, task left to polling")
	}
	return nil
}

// Start runs the main loop until ctx is done.
func (w *LedgerWorker) Start(ctx context.Context) {
	w.logger.Info().Msg("Ledger worker started")
	defer w.logger.Info().Msg("Ledger worker stopped")

	w.reportFailed(ctx)

	for {
		if ctx.Err() != nil {
			return
		}
		if !w.step(ctx) {
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.pollInterval):
			}
		}
	}
}

// reportFailed surfaces tasks that exhausted their retries in earlier runs.
func (w *LedgerWorker) reportFailed(ctx context.Context) int {
	failed, err := w.store.GetFailedSyncTasks(ctx)
	if err != nil {
		w.logger.Error().Err(err).Msg("Load failed ledger tasks")
		return 0
	}
	if len(failed) > 0 {
		w.logger.Warn().
			Int("count", len(failed)).
			Int64("latest_task_id", failed[0].ID).
			Int64("latest_reservation_id", failed[0].ReservationID).
			Msg("Ledger has failed tasks that need manual attention")
	}
	return len(failed)
}

// step handles at most one source and reports whether it found work.
func (w *LedgerWorker) step(ctx context.Context) bool {
	if id, ok := w.tryLocalQueue(); ok {
		w.processTask(ctx, id)
		return true
	}

	if id, ok := w.tryRedis(ctx); ok {
		w.processTask(ctx, id)
		return true
	}

	tasks, err := w.store.GetPendingSyncTasks(ctx, w.batchSize)
	if err != nil {
		if ctx.Err() == nil {
			w.logger.Error().Err(err).Msg("Fetch pending ledger tasks failed")
		}
		return false
	}
	for i := range tasks {
		w.processTask(ctx, tasks[i].ID)
	}
	return len(tasks) > 0
}

func (w *LedgerWorker) tryLocalQueue() (int64, bool) {
	select {
	case id := <-w.queue:
		return id, true
	default:
		return 0, false
	}
}

func (w *LedgerWorker) tryRedis(ctx context.Context) (int64, bool) {
	if w.redis == nil {
		return 0, false
	}
	res, err := w.redis.BRPop(ctx, time.Second, w.redisQueueKey).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.logger.Warn().Err(err).Msg("Redis BRPOP failed")
		}
		return 0, false
	}
	if len(res) != 2 {
		return 0, false
	}
	var id int64
	if _, err := fmt.Sscan(res[1], &id); err != nil {
		w.logger.Warn().Err(err).Str("raw", res[1]).Msg("Bad task id in redis queue")
		return 0, false
	}
	return id, true
}

// processTask reloads the task so a stale queue entry never reruns finished work.
func (w *LedgerWorker) processTask(ctx context.Context, id int64) {
	task, err := w.store.GetSyncTask(ctx, id)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", id).Msg("Load ledger task failed")
		return
	}
	if task.Status == models.SyncStatusCompleted || task.Status == models.SyncStatusFailed {
		return
	}

	var payload ledgerTaskPayload
	if err := json.Unmarshal([]byte(task.Payload), &payload); err != nil {
		w.failTask(ctx, task, fmt.Errorf("decode payload: %w", err))
		return
	}

	if err := w.apply(ctx, task.TaskType, payload); err != nil {
		w.retryOrFail(ctx, task, err)
		return
	}

	if err := w.store.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusCompleted, "", nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Mark ledger task completed failed")
	}
	metrics.IncLedgerTask(task.TaskType, models.SyncStatusCompleted)
}

func (w *LedgerWorker) apply(ctx context.Context, taskType string, payload ledgerTaskPayload) error {
	switch taskType {
	case TaskUpsert:
		if payload.Reservation == nil {
			return errors.New("reservation payload missing")
		}
		return w.ledger.UpsertReservation(ctx, payload.Reservation)
	case TaskUpdateStatus:
		if payload.ReservationID == 0 || payload.Status == "" {
			return errors.New("reservation id or status missing")
		}
		return w.ledger.UpdateReservationStatus(ctx, payload.ReservationID, payload.Status)
	default:
		return fmt.Errorf("unknown task type: %s", taskType)
	}
}

func (w *LedgerWorker) retryOrFail(ctx context.Context, task *models.SyncTask, cause error) {
	attempt := task.RetryCount + 1
	if w.retryPolicy.Exhausted(attempt) {
		w.failTask(ctx, task, cause)
		return
	}

	nextTime := time.Now().UTC().Add(w.retryPolicy.Backoff(attempt))
	if err := w.store.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusRetry, cause.Error(), &nextTime); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Mark ledger task retry failed")
	}
	w.logger.Warn().Err(cause).Int64("task_id", task.ID).Int("attempt", attempt).Time("next_retry_at", nextTime).Msg("Ledger task will be retried")
	metrics.IncLedgerTask(task.TaskType, models.SyncStatusRetry)
}

func (w *LedgerWorker) failTask(ctx context.Context, task *models.SyncTask, cause error) {
	if err := w.store.UpdateSyncTaskStatus(ctx, task.ID, models.SyncStatusFailed, cause.Error(), nil); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Mark ledger task failed failed")
	}
	w.logger.Error().Err(cause).Int64("task_id", task.ID).Msg("Ledger task failed")
	metrics.IncLedgerTask(task.TaskType, models.SyncStatusFailed)
	w.pushDeadLetter(ctx, task)
}

func (w *LedgerWorker) pushDeadLetter(ctx context.Context, task *models.SyncTask) {
	if w.redis == nil {
		return
	}
	data, err := json.Marshal(task)
	if err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Encode dead letter failed")
		return
	}
	if err := w.redis.LPush(ctx, w.deadLetterKey, data).Err(); err != nil {
		w.logger.Error().Err(err).Int64("task_id", task.ID).Msg("Dead letter push failed")
	}
}
