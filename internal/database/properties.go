package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"

	"nestflow/internal/domain"
	"nestflow/internal/models"
)

const propertyColumns = `p.id, p.host_id, p.title, p.description, p.price_per_night, p.location, p.max_guests, p.amenities, p.created_at`

func (db *DB) CreateProperty(ctx context.Context, property *models.Property) error {
	query := db.Rebind(`INSERT INTO properties (host_id, title, description, price_per_night, location, max_guests, amenities, created_at)
              VALUES (?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)
	if property.Amenities == nil {
		property.Amenities = models.Amenities{}
	}
	createdAt := utcNow()
	id, err := insertReturningID(ctx, db, query,
		property.HostID,
		property.Title,
		property.Description,
		property.PricePerNight,
		property.Location,
		property.MaxGuests,
		property.Amenities,
		createdAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create property: %w", err)
	}
	property.ID = id
	property.CreatedAt = createdAt
	return nil
}

func (db *DB) GetProperty(ctx context.Context, id int64) (*models.Property, error) {
	var property models.Property
	query := db.Rebind(`SELECT ` + propertyColumns + ` FROM properties p WHERE p.id = ?`)
	if err := db.GetContext(ctx, &property, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property: %w", err)
	}
	return &property, nil
}

// ListProperties returns the catalogue ordered by rating, then review count.
func (db *DB) ListProperties(ctx context.Context) ([]*models.PropertySummary, error) {
	query := db.Rebind(`SELECT ` + propertyColumns + `,
				(SELECT pi.image_url FROM property_images pi
				  WHERE pi.property_id = p.id AND pi.is_main = ? ORDER BY pi.id LIMIT 1) AS image_url,
				COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.property_id = p.id), 0) AS average_rating,
				(SELECT COUNT(*) FROM reviews r WHERE r.property_id = p.id) AS review_count
              FROM properties p
              ORDER BY average_rating DESC, review_count DESC, p.id DESC`)

	var list []*models.PropertySummary
	if err := db.SelectContext(ctx, &list, query, true); err != nil {
		return nil, fmt.Errorf("failed to list properties: %w", err)
	}
	for _, item := range list {
		item.AverageRating = roundRating(item.AverageRating)
	}
	return list, nil
}

func (db *DB) GetPropertyDetails(ctx context.Context, id int64) (*models.PropertyDetails, error) {
	query := db.Rebind(`SELECT ` + propertyColumns + `,
				u.username AS host_name,
				u.email AS host_email,
				COALESCE((SELECT AVG(r.rating) FROM reviews r WHERE r.property_id = p.id), 0) AS average_rating
              FROM properties p
              JOIN users u ON u.id = p.host_id
              WHERE p.id = ?`)

	var details models.PropertyDetails
	if err := db.GetContext(ctx, &details, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrPropertyNotFound
		}
		return nil, fmt.Errorf("failed to get property details: %w", err)
	}
	details.AverageRating = roundRating(details.AverageRating)

	images, err := db.ListPropertyImages(ctx, id)
	if err != nil {
		return nil, err
	}
	details.Images = images
	return &details, nil
}

func (db *DB) UpdateProperty(ctx context.Context, property *models.Property) error {
	if property.Amenities == nil {
		property.Amenities = models.Amenities{}
	}
	query := db.Rebind(`UPDATE properties
              SET title = ?, description = ?, price_per_night = ?, location = ?, max_guests = ?, amenities = ?
              WHERE id = ?`)
	result, err := db.ExecContext(ctx, query,
		property.Title,
		property.Description,
		property.PricePerNight,
		property.Location,
		property.MaxGuests,
		property.Amenities,
		property.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update property: %w", err)
	}
	return expectAffected(result, domain.ErrPropertyNotFound)
}

// DeleteProperty removes the property and everything that references it.
func (db *DB) DeleteProperty(ctx context.Context, id int64) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, table := range []string{"messages", "reviews", "reservations", "property_images"} {
		if _, err := tx.ExecContext(ctx, db.Rebind(`DELETE FROM `+table+` WHERE property_id = ?`), id); err != nil {
			return fmt.Errorf("failed to delete %s: %w", table, err)
		}
	}

	result, err := tx.ExecContext(ctx, db.Rebind(`DELETE FROM properties WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete property: %w", err)
	}
	if err := expectAffected(result, domain.ErrPropertyNotFound); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// CountActiveReservations counts pending or confirmed stays ending today or later.
func (db *DB) CountActiveReservations(ctx context.Context, propertyID int64, today models.Date) (int, error) {
	query := db.Rebind(`SELECT COUNT(*) FROM reservations
              WHERE property_id = ? AND status IN (?, ?) AND end_date >= ?`)
	var count int
	err := db.GetContext(ctx, &count, query, propertyID, models.StatusPending, models.StatusConfirmed, today)
	if err != nil {
		return 0, fmt.Errorf("failed to count active reservations: %w", err)
	}
	return count, nil
}

func (db *DB) GetHostStats(ctx context.Context, hostID int64, today models.Date) (*models.HostStats, error) {
	stats := &models.HostStats{MyProperties: []models.HostPropertyStats{}}

	summary := db.Rebind(`SELECT
				(SELECT COUNT(*) FROM properties WHERE host_id = ?) AS total_posts,
				COUNT(DISTINCT CASE WHEN r.status = ? THEN r.guest_id END) AS total_clients,
				COALESCE(SUM(CASE WHEN r.status = ? THEN r.total_price ELSE 0 END), 0) AS total_revenue,
				COUNT(CASE WHEN r.status = ? THEN 1 END) AS pending_requests
              FROM reservations r
              JOIN properties p ON p.id = r.property_id
              WHERE p.host_id = ?`)
	err := db.GetContext(ctx, &stats.Summary, summary,
		hostID,
		models.StatusConfirmed,
		models.StatusConfirmed,
		models.StatusPending,
		hostID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get host summary: %w", err)
	}

	properties := db.Rebind(`SELECT ` + propertyColumns + `,
				(SELECT COUNT(*) FROM reservations r
				  WHERE r.property_id = p.id AND r.status IN (?, ?) AND r.end_date >= ?) AS active_bookings
              FROM properties p
              WHERE p.host_id = ?
              ORDER BY p.created_at DESC, p.id DESC`)
	err = db.SelectContext(ctx, &stats.MyProperties, properties,
		models.StatusPending,
		models.StatusConfirmed,
		today,
		hostID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get host properties: %w", err)
	}
	return stats, nil
}

func roundRating(v float64) float64 {
	return math.Round(v*10) / 10
}
