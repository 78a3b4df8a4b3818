package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nestflow/internal/domain"
	"nestflow/internal/models"

	"github.com/jmoiron/sqlx"
)

const reservationColumns = `r.id, r.property_id, r.guest_id, r.start_date, r.end_date, r.total_price, r.status, r.created_at`

// HasConflict reports whether a non-cancelled reservation overlaps [start, end).
func (db *DB) HasConflict(ctx context.Context, propertyID int64, start, end models.Date) (bool, error) {
	return db.hasConflict(ctx, db, propertyID, start, end)
}

func (db *DB) hasConflict(ctx context.Context, q sqlx.QueryerContext, propertyID int64, start, end models.Date) (bool, error) {
	query := db.Rebind(`SELECT COUNT(*) FROM reservations
              WHERE property_id = ? AND status <> ? AND start_date < ? AND end_date > ?`)
	var count int
	if err := sqlx.GetContext(ctx, q, &count, query, propertyID, models.StatusCancelled, end, start); err != nil {
		return false, fmt.Errorf("failed to check reservation overlap: %w", err)
	}
	return count > 0, nil
}

// CreateReservationChecked runs the overlap check and the insert in one
// transaction. Losing a serializable race is reported as an overlap.
func (db *DB) CreateReservationChecked(ctx context.Context, reservation *models.Reservation) error {
	tx, err := db.BeginTxx(ctx, db.txOptions())
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	conflict, err := db.hasConflict(ctx, tx, reservation.PropertyID, reservation.StartDate, reservation.EndDate)
	if err != nil {
		return db.classifyTxError(err)
	}
	if conflict {
		return domain.ErrDateRangeUnavailable
	}

	if reservation.Status == "" {
		reservation.Status = models.StatusPending
	}
	createdAt := utcNow()
	query := db.Rebind(`INSERT INTO reservations (property_id, guest_id, start_date, end_date, total_price, status, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	id, err := insertReturningID(ctx, tx, query,
		reservation.PropertyID,
		reservation.GuestID,
		reservation.StartDate,
		reservation.EndDate,
		reservation.TotalPrice,
		reservation.Status,
		createdAt,
	)
	if err != nil {
		return db.classifyTxError(fmt.Errorf("failed to create reservation: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return db.classifyTxError(fmt.Errorf("failed to commit transaction: %w", err))
	}

	reservation.ID = id
	reservation.CreatedAt = createdAt
	return nil
}

func (db *DB) classifyTxError(err error) error {
	if isSerializationFailure(err) {
		db.logger.Debug().Err(err).Msg("Reservation lost serializable race")
		return domain.ErrDateRangeUnavailable
	}
	return err
}

func (db *DB) GetReservation(ctx context.Context, id int64) (*models.Reservation, error) {
	var reservation models.Reservation
	query := db.Rebind(`SELECT ` + reservationColumns + ` FROM reservations r WHERE r.id = ?`)
	if err := db.GetContext(ctx, &reservation, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrReservationNotFound
		}
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	return &reservation, nil
}

// UpdateReservationStatus applies from -> to only if the row still holds from.
func (db *DB) UpdateReservationStatus(ctx context.Context, id int64, from, to string) error {
	query := db.Rebind(`UPDATE reservations SET status = ? WHERE id = ? AND status = ?`)
	result, err := db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return fmt.Errorf("failed to update reservation status: %w", err)
	}
	return expectAffected(result, domain.ErrInvalidStatus)
}

func (db *DB) ListGuestTrips(ctx context.Context, guestID int64) ([]*models.Trip, error) {
	query := db.Rebind(`SELECT ` + reservationColumns + `, p.title, p.location,
				(SELECT pi.image_url FROM property_images pi
				  WHERE pi.property_id = p.id ORDER BY pi.is_main DESC, pi.id ASC LIMIT 1) AS image_url
              FROM reservations r
              JOIN properties p ON p.id = r.property_id
              WHERE r.guest_id = ?
              ORDER BY r.start_date DESC, r.id DESC`)

	trips := []*models.Trip{}
	if err := db.SelectContext(ctx, &trips, query, guestID); err != nil {
		return nil, fmt.Errorf("failed to list trips: %w", err)
	}
	return trips, nil
}

func (db *DB) ListHostReservations(ctx context.Context, hostID int64) ([]*models.HostReservation, error) {
	query := db.Rebind(`SELECT ` + reservationColumns + `,
				p.title AS property_title,
				u.username AS guest_name,
				u.email AS guest_email
              FROM reservations r
              JOIN properties p ON p.id = r.property_id
              JOIN users u ON u.id = r.guest_id
              WHERE p.host_id = ?
              ORDER BY r.created_at DESC, r.id DESC`)

	list := []*models.HostReservation{}
	if err := db.SelectContext(ctx, &list, query, hostID); err != nil {
		return nil, fmt.Errorf("failed to list host reservations: %w", err)
	}
	return list, nil
}
