package models

const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
)

const (
	RoleGuest = "guest"
	RoleHost  = "host"
)

const (
	SyncStatusPending   = "pending"
	SyncStatusRetry     = "retry"
	SyncStatusCompleted = "completed"
	SyncStatusFailed    = "failed"
)

const (
	// DefaultCacheTTL время жизни карточки объекта в кэше
	DefaultCacheTTL = 10 * 60 // 10 минут в секундах

	// WorkerQueueSize размер очереди воркера
	WorkerQueueSize = 128

	// RateLimitMessages количество сообщений в окне
	RateLimitMessages = 20

	// RateLimitWindow окно ограничения частоты сообщений
	RateLimitWindow = 60 // 1 минута в секундах

	// MaxImagesPerUpload максимум изображений за один запрос
	MaxImagesPerUpload = 5

	// DefaultTokenTTLHours срок жизни токена
	DefaultTokenTTLHours = 7 * 24
)
