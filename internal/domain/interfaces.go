package domain

import (
	"context"
	"time"

	"nestflow/internal/models"
)

type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUserProfile(ctx context.Context, id int64, username, email string, bio *string) (*models.User, error)
	UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) (*models.User, error)
}

type PropertyRepository interface {
	CreateProperty(ctx context.Context, property *models.Property) error
	GetProperty(ctx context.Context, id int64) (*models.Property, error)
	GetPropertyDetails(ctx context.Context, id int64) (*models.PropertyDetails, error)
	ListProperties(ctx context.Context) ([]*models.PropertySummary, error)
	UpdateProperty(ctx context.Context, property *models.Property) error
	DeleteProperty(ctx context.Context, id int64) error
	CountActiveReservations(ctx context.Context, propertyID int64, today models.Date) (int, error)
	AddPropertyImages(ctx context.Context, propertyID int64, urls []string) ([]*models.PropertyImage, error)
	GetPropertyImage(ctx context.Context, id int64) (*models.PropertyImage, error)
	DeletePropertyImage(ctx context.Context, id int64) error
	GetHostStats(ctx context.Context, hostID int64, today models.Date) (*models.HostStats, error)
}

type ReservationRepository interface {
	// CreateReservationChecked runs the overlap check and the insert in one
	// transaction and returns ErrDateRangeUnavailable on conflict.
	CreateReservationChecked(ctx context.Context, reservation *models.Reservation) error
	HasConflict(ctx context.Context, propertyID int64, start, end models.Date) (bool, error)
	GetReservation(ctx context.Context, id int64) (*models.Reservation, error)
	UpdateReservationStatus(ctx context.Context, id int64, from, to string) error
	ListGuestTrips(ctx context.Context, guestID int64) ([]*models.Trip, error)
	ListHostReservations(ctx context.Context, hostID int64) ([]*models.HostReservation, error)
}

type ReviewRepository interface {
	HasConfirmedStay(ctx context.Context, guestID, propertyID int64) (bool, error)
	CreateReview(ctx context.Context, review *models.Review) error
	ListReviews(ctx context.Context, propertyID int64) ([]*models.ReviewDetails, error)
}

type MessageRepository interface {
	CreateMessage(ctx context.Context, msg *models.Message) error
	ListInbox(ctx context.Context, userID int64) ([]*models.Conversation, error)
	ListChat(ctx context.Context, userID, contactID, propertyID int64) ([]*models.Message, error)
	MarkConversationRead(ctx context.Context, userID, contactID, propertyID int64) (int64, error)
}

// CacheStore holds short-lived blobs and rate-limit counters.
type CacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

type EventPublisher interface {
	PublishJSON(eventType string, payload interface{}) error
}

// LedgerClient mirrors reservations into an external ledger.
type LedgerClient interface {
	UpsertReservation(ctx context.Context, reservation *models.Reservation) error
	UpdateReservationStatus(ctx context.Context, reservationID int64, status string) error
}

type SyncWorker interface {
	EnqueueTask(ctx context.Context, taskType string, reservationID int64, reservation *models.Reservation, status string) error
}

type ReservationService interface {
	CheckAvailability(ctx context.Context, propertyID int64, start, end models.Date) (*models.Availability, error)
	CreateReservation(ctx context.Context, user models.AuthenticatedUser, propertyID int64, start, end models.Date) (*models.Reservation, error)
	UpdateStatus(ctx context.Context, user models.AuthenticatedUser, reservationID int64, status string) (*models.Reservation, error)
	GetMyTrips(ctx context.Context, user models.AuthenticatedUser) ([]*models.Trip, error)
	GetHostReservations(ctx context.Context, user models.AuthenticatedUser) ([]*models.HostReservation, error)
}

type PropertyService interface {
	CreateProperty(ctx context.Context, user models.AuthenticatedUser, property *models.Property) (*models.Property, error)
	ListProperties(ctx context.Context) ([]*models.PropertySummary, error)
	GetProperty(ctx context.Context, id int64) (*models.PropertyDetails, error)
	UpdateProperty(ctx context.Context, user models.AuthenticatedUser, property *models.Property) (*models.Property, error)
	DeleteProperty(ctx context.Context, user models.AuthenticatedUser, id int64) error
	AddImages(ctx context.Context, user models.AuthenticatedUser, propertyID int64, urls []string) ([]*models.PropertyImage, error)
	DeleteImage(ctx context.Context, user models.AuthenticatedUser, imageID int64) error
	GetHostStats(ctx context.Context, user models.AuthenticatedUser) (*models.HostStats, error)
}

type ReviewService interface {
	CreateReview(ctx context.Context, user models.AuthenticatedUser, propertyID int64, rating int, comment string) (*models.Review, error)
	ListReviews(ctx context.Context, propertyID int64) ([]*models.ReviewDetails, error)
}

type MessageService interface {
	SendMessage(ctx context.Context, user models.AuthenticatedUser, receiverID, propertyID int64, content string) (*models.Message, error)
	GetInbox(ctx context.Context, user models.AuthenticatedUser) ([]*models.Conversation, error)
	GetChat(ctx context.Context, user models.AuthenticatedUser, propertyID, contactID int64) ([]*models.Message, error)
	MarkAsRead(ctx context.Context, user models.AuthenticatedUser, propertyID, contactID int64) error
}

type UserService interface {
	Register(ctx context.Context, username, email, password, role string) (*models.Session, error)
	Login(ctx context.Context, email, password string) (*models.Session, error)
	UpdateProfile(ctx context.Context, user models.AuthenticatedUser, username, email string, bio *string) (*models.User, error)
	UpdateAvatar(ctx context.Context, user models.AuthenticatedUser, avatarURL string) (*models.User, error)
	Authenticate(token string) (models.AuthenticatedUser, error)
}
