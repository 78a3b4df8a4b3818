package database

import (
	"context"
	"fmt"

	"nestflow/internal/domain"
	"nestflow/internal/models"
)

func (db *DB) HasConfirmedStay(ctx context.Context, guestID, propertyID int64) (bool, error) {
	query := db.Rebind(`SELECT COUNT(*) FROM reservations WHERE guest_id = ? AND property_id = ? AND status = ?`)
	var count int
	if err := db.GetContext(ctx, &count, query, guestID, propertyID, models.StatusConfirmed); err != nil {
		return false, fmt.Errorf("failed to check stay: %w", err)
	}
	return count > 0, nil
}

func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	query := db.Rebind(`INSERT INTO reviews (property_id, guest_id, rating, comment, created_at)
              VALUES (?, ?, ?, ?, ?) RETURNING id`)
	createdAt := utcNow()
	id, err := insertReturningID(ctx, db, query,
		review.PropertyID,
		review.GuestID,
		review.Rating,
		review.Comment,
		createdAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	review.ID = id
	review.CreatedAt = createdAt
	return nil
}

// ListReviews returns newest first with the reviewer's name and avatar.
func (db *DB) ListReviews(ctx context.Context, propertyID int64) ([]*models.ReviewDetails, error) {
	query := db.Rebind(`SELECT r.id, r.property_id, r.guest_id, r.rating, r.comment, r.created_at,
				u.username, u.avatar_url
              FROM reviews r
              JOIN users u ON u.id = r.guest_id
              WHERE r.property_id = ?
              ORDER BY r.created_at DESC, r.id DESC`)

	list := []*models.ReviewDetails{}
	if err := db.SelectContext(ctx, &list, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return list, nil
}
