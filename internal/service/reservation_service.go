package service

import (
	"context"
	"errors"

	"nestflow/internal/booking"
	"nestflow/internal/domain"
	"nestflow/internal/events"
	"nestflow/internal/metrics"
	"nestflow/internal/models"
	"nestflow/internal/worker"

	"github.com/rs/zerolog"
)

type ReservationService struct {
	reservations domain.ReservationRepository
	properties   domain.PropertyRepository
	eventBus     domain.EventPublisher
	ledgerWorker domain.SyncWorker
	logger       *zerolog.Logger
}

// NewReservationService wires the booking flow. eventBus and ledgerWorker may be nil.
func NewReservationService(
	reservations domain.ReservationRepository,
	properties domain.PropertyRepository,
	eventBus domain.EventPublisher,
	ledgerWorker domain.SyncWorker,
	logger *zerolog.Logger,
) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		properties:   properties,
		eventBus:     eventBus,
		ledgerWorker: ledgerWorker,
		logger:       orNop(logger),
	}
}

// CheckAvailability answers a range probe without writing anything.
func (s *ReservationService) CheckAvailability(ctx context.Context, propertyID int64, start, end models.Date) (*models.Availability, error) {
	if err := booking.ValidateRange(start, end); err != nil {
		return nil, err
	}

	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	nights, total, err := booking.Quote(start, end, property.PricePerNight)
	if err != nil {
		return nil, err
	}

	conflict, err := s.reservations.HasConflict(ctx, propertyID, start, end)
	if err != nil {
		return nil, err
	}

	return &models.Availability{Available: !conflict, Nights: nights, TotalPrice: total}, nil
}

func (s *ReservationService) CreateReservation(ctx context.Context, user models.AuthenticatedUser, propertyID int64, start, end models.Date) (*models.Reservation, error) {
	// Проверяем диапазон до обращения к базе
	if err := booking.ValidateRange(start, end); err != nil {
		return nil, err
	}

	property, err := s.properties.GetProperty(ctx, propertyID)
	if err != nil {
		return nil, err
	}

	if err := booking.EnsureNotSelfBooking(user, property); err != nil {
		return nil, err
	}

	_, total, err := booking.Quote(start, end, property.PricePerNight)
	if err != nil {
		return nil, err
	}

	reservation := &models.Reservation{
		PropertyID: propertyID,
		GuestID:    user.ID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: total,
		Status:     models.StatusPending,
	}

	// Проверка пересечений и вставка в одной транзакции
	if err := s.reservations.CreateReservationChecked(ctx, reservation); err != nil {
		if errors.Is(err, domain.ErrDateRangeUnavailable) {
			metrics.IncReservation("conflict")
		}
		return nil, err
	}
	metrics.IncReservation("created")

	s.logger.Info().
		Int64("reservation_id", reservation.ID).
		Int64("property_id", propertyID).
		Int64("guest_id", user.ID).
		Str("start_date", start.String()).
		Str("end_date", end.String()).
		Msg("Reservation created")

	s.publishEvent(events.EventReservationCreated, *reservation, user.ID)
	s.enqueueSync(ctx, *reservation, worker.TaskUpsert)

	return reservation, nil
}

// UpdateStatus lets the property's host confirm or cancel a pending reservation.
func (s *ReservationService) UpdateStatus(ctx context.Context, user models.AuthenticatedUser, reservationID int64, status string) (*models.Reservation, error) {
	target, err := booking.ParseTargetStatus(status)
	if err != nil {
		return nil, err
	}

	reservation, err := s.reservations.GetReservation(ctx, reservationID)
	if err != nil {
		return nil, err
	}

	property, err := s.properties.GetProperty(ctx, reservation.PropertyID)
	if err != nil {
		return nil, err
	}
	if err := booking.EnsureHost(user, property); err != nil {
		return nil, err
	}

	if !booking.CanTransition(reservation.Status, target) {
		return nil, domain.ErrInvalidStatus
	}

	// Обновление условно: строка должна всё ещё быть pending
	if err := s.reservations.UpdateReservationStatus(ctx, reservationID, reservation.Status, target); err != nil {
		return nil, err
	}
	reservation.Status = target
	metrics.IncReservation(target)

	eventType := events.EventReservationConfirmed
	if target == models.StatusCancelled {
		eventType = events.EventReservationCancelled
	}
	s.publishEvent(eventType, *reservation, user.ID)
	s.enqueueSync(ctx, *reservation, worker.TaskUpdateStatus)

	return reservation, nil
}

func (s *ReservationService) GetMyTrips(ctx context.Context, user models.AuthenticatedUser) ([]*models.Trip, error) {
	return s.reservations.ListGuestTrips(ctx, user.ID)
}

func (s *ReservationService) GetHostReservations(ctx context.Context, user models.AuthenticatedUser) ([]*models.HostReservation, error) {
	return s.reservations.ListHostReservations(ctx, user.ID)
}

func (s *ReservationService) publishEvent(eventType string, r models.Reservation, changedByID int64) {
	if s.eventBus == nil {
		return
	}

	payload := events.ReservationEventPayload{
		ReservationID: r.ID,
		PropertyID:    r.PropertyID,
		GuestID:       r.GuestID,
		StartDate:     r.StartDate.String(),
		EndDate:       r.EndDate.String(),
		TotalPrice:    r.TotalPrice,
		Status:        r.Status,
		ChangedByID:   changedByID,
	}

	if err := s.eventBus.PublishJSON(eventType, payload); err != nil {
		s.logger.Error().Err(err).Str("event_type", eventType).Int64("reservation_id", r.ID).Msg("publish event error")
	}
}

func (s *ReservationService) enqueueSync(ctx context.Context, r models.Reservation, taskType string) {
	if s.ledgerWorker == nil {
		return
	}

	var status string
	if taskType == worker.TaskUpdateStatus {
		status = r.Status
	}

	if err := s.ledgerWorker.EnqueueTask(ctx, taskType, r.ID, &r, status); err != nil {
		s.logger.Error().Err(err).Int64("reservation_id", r.ID).Str("task", taskType).Msg("ledger enqueue error")
	}
}

func orNop(logger *zerolog.Logger) *zerolog.Logger {
	if logger != nil {
		return logger
	}
	nop := zerolog.Nop()
	return &nop
}
