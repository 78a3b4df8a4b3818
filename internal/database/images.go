package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"nestflow/internal/domain"
	"nestflow/internal/models"
)

// AddPropertyImages inserts urls in order. The first one becomes the main
// image only when the property has none yet.
func (db *DB) AddPropertyImages(ctx context.Context, propertyID int64, urls []string) ([]*models.PropertyImage, error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var mains int
	err = tx.GetContext(ctx, &mains,
		db.Rebind(`SELECT COUNT(*) FROM property_images WHERE property_id = ? AND is_main = ?`), propertyID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to check main image: %w", err)
	}

	insert := db.Rebind(`INSERT INTO property_images (property_id, image_url, is_main) VALUES (?, ?, ?) RETURNING id`)
	images := make([]*models.PropertyImage, 0, len(urls))
	for i, url := range urls {
		img := &models.PropertyImage{
			PropertyID: propertyID,
			ImageURL:   url,
			IsMain:     i == 0 && mains == 0,
		}
		id, err := insertReturningID(ctx, tx, insert, img.PropertyID, img.ImageURL, img.IsMain)
		if err != nil {
			return nil, fmt.Errorf("failed to insert image: %w", err)
		}
		img.ID = id
		images = append(images, img)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return images, nil
}

// ListPropertyImages returns the main image first.
func (db *DB) ListPropertyImages(ctx context.Context, propertyID int64) ([]models.PropertyImage, error) {
	images := []models.PropertyImage{}
	query := db.Rebind(`SELECT id, property_id, image_url, is_main FROM property_images
              WHERE property_id = ? ORDER BY is_main DESC, id ASC`)
	if err := db.SelectContext(ctx, &images, query, propertyID); err != nil {
		return nil, fmt.Errorf("failed to list property images: %w", err)
	}
	return images, nil
}

func (db *DB) GetPropertyImage(ctx context.Context, id int64) (*models.PropertyImage, error) {
	var img models.PropertyImage
	query := db.Rebind(`SELECT id, property_id, image_url, is_main FROM property_images WHERE id = ?`)
	if err := db.GetContext(ctx, &img, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrImageNotFound
		}
		return nil, fmt.Errorf("failed to get image: %w", err)
	}
	return &img, nil
}

func (db *DB) DeletePropertyImage(ctx context.Context, id int64) error {
	result, err := db.ExecContext(ctx, db.Rebind(`DELETE FROM property_images WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete image: %w", err)
	}
	return expectAffected(result, domain.ErrImageNotFound)
}
