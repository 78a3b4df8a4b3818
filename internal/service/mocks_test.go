package service

import (
	"context"

	"nestflow/internal/models"

	"github.com/stretchr/testify/mock"
)

type mockReservationRepo struct {
	mock.Mock
}

func (m *mockReservationRepo) CreateReservationChecked(ctx context.Context, r *models.Reservation) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReservationRepo) HasConflict(ctx context.Context, propertyID int64, start, end models.Date) (bool, error) {
	args := m.Called(ctx, propertyID, start, end)
	return args.Bool(0), args.Error(1)
}
func (m *mockReservationRepo) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Reservation), args.Error(1)
}
func (m *mockReservationRepo) UpdateReservationStatus(ctx context.Context, id int64, from, to string) error {
	return m.Called(ctx, id, from, to).Error(0)
}
func (m *mockReservationRepo) ListGuestTrips(ctx context.Context, guestID int64) ([]*models.Trip, error) {
	args := m.Called(ctx, guestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Trip), args.Error(1)
}
func (m *mockReservationRepo) ListHostReservations(ctx context.Context, hostID int64) ([]*models.HostReservation, error) {
	args := m.Called(ctx, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.HostReservation), args.Error(1)
}

type mockPropertyRepo struct {
	mock.Mock
}

func (m *mockPropertyRepo) CreateProperty(ctx context.Context, p *models.Property) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPropertyRepo) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}
func (m *mockPropertyRepo) GetPropertyDetails(ctx context.Context, id int64) (*models.PropertyDetails, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyDetails), args.Error(1)
}
func (m *mockPropertyRepo) ListProperties(ctx context.Context) ([]*models.PropertySummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PropertySummary), args.Error(1)
}
func (m *mockPropertyRepo) UpdateProperty(ctx context.Context, p *models.Property) error {
	return m.Called(ctx, p).Error(0)
}
func (m *mockPropertyRepo) DeleteProperty(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockPropertyRepo) CountActiveReservations(ctx context.Context, propertyID int64, today models.Date) (int, error) {
	args := m.Called(ctx, propertyID, today)
	return args.Int(0), args.Error(1)
}
func (m *mockPropertyRepo) AddPropertyImages(ctx context.Context, propertyID int64, urls []string) ([]*models.PropertyImage, error) {
	args := m.Called(ctx, propertyID, urls)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.PropertyImage), args.Error(1)
}
func (m *mockPropertyRepo) GetPropertyImage(ctx context.Context, id int64) (*models.PropertyImage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PropertyImage), args.Error(1)
}
func (m *mockPropertyRepo) DeletePropertyImage(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
func (m *mockPropertyRepo) GetHostStats(ctx context.Context, hostID int64, today models.Date) (*models.HostStats, error) {
	args := m.Called(ctx, hostID, today)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HostStats), args.Error(1)
}

type mockReviewRepo struct {
	mock.Mock
}

func (m *mockReviewRepo) HasConfirmedStay(ctx context.Context, guestID, propertyID int64) (bool, error) {
	args := m.Called(ctx, guestID, propertyID)
	return args.Bool(0), args.Error(1)
}
func (m *mockReviewRepo) CreateReview(ctx context.Context, r *models.Review) error {
	return m.Called(ctx, r).Error(0)
}
func (m *mockReviewRepo) ListReviews(ctx context.Context, propertyID int64) ([]*models.ReviewDetails, error) {
	args := m.Called(ctx, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ReviewDetails), args.Error(1)
}

type mockMessageRepo struct {
	mock.Mock
}

func (m *mockMessageRepo) CreateMessage(ctx context.Context, msg *models.Message) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *mockMessageRepo) ListInbox(ctx context.Context, userID int64) ([]*models.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Conversation), args.Error(1)
}
func (m *mockMessageRepo) ListChat(ctx context.Context, userID, contactID, propertyID int64) ([]*models.Message, error) {
	args := m.Called(ctx, userID, contactID, propertyID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Message), args.Error(1)
}
func (m *mockMessageRepo) MarkConversationRead(ctx context.Context, userID, contactID, propertyID int64) (int64, error) {
	args := m.Called(ctx, userID, contactID, propertyID)
	return args.Get(0).(int64), args.Error(1)
}

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) CreateUser(ctx context.Context, u *models.User) error {
	return m.Called(ctx, u).Error(0)
}
func (m *mockUserRepo) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUserProfile(ctx context.Context, id int64, username, email string, bio *string) (*models.User, error) {
	args := m.Called(ctx, id, username, email, bio)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}
func (m *mockUserRepo) UpdateUserAvatar(ctx context.Context, id int64, avatarURL string) (*models.User, error) {
	args := m.Called(ctx, id, avatarURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishJSON(eventType string, payload interface{}) error {
	return m.Called(eventType, payload).Error(0)
}

type mockSyncWorker struct {
	mock.Mock
}

func (m *mockSyncWorker) EnqueueTask(ctx context.Context, taskType string, reservationID int64, r *models.Reservation, status string) error {
	return m.Called(ctx, taskType, reservationID, r, status).Error(0)
}
