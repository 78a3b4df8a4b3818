// Package booking holds the reservation rules that do not touch storage:
// range validation, half-open overlap, pricing, status transitions and
// ownership checks.
package booking

import (
	"math"
	"time"

	"nestflow/internal/domain"
	"nestflow/internal/models"
)

const hoursPerNight = 24

// ValidateRange rejects empty and inverted ranges.
func ValidateRange(start, end models.Date) error {
	if start.IsZero() || end.IsZero() || !start.Before(end.Time) {
		return domain.ErrInvalidDateRange
	}
	return nil
}

// Overlaps reports whether [s1, e1) and [s2, e2) share at least one night.
func Overlaps(s1, e1, s2, e2 models.Date) bool {
	return s1.Before(e2.Time) && s2.Before(e1.Time)
}

// Conflicts reports whether any non-cancelled reservation overlaps [start, end).
func Conflicts(existing []*models.Reservation, start, end models.Date) bool {
	for _, r := range existing {
		if r == nil || r.Status == models.StatusCancelled {
			continue
		}
		if Overlaps(r.StartDate, r.EndDate, start, end) {
			return true
		}
	}
	return false
}

// Nights rounds a partial day up.
func Nights(start, end models.Date) int {
	hours := end.Sub(start.Time).Hours()
	return int(math.Ceil(hours / hoursPerNight))
}

// Quote returns the night count and total for a stay. The total is not rounded.
func Quote(start, end models.Date, pricePerNight float64) (int, float64, error) {
	if err := ValidateRange(start, end); err != nil {
		return 0, 0, err
	}
	nights := Nights(start, end)
	if nights <= 0 {
		return 0, 0, domain.ErrInvalidDateRange
	}
	return nights, float64(nights) * pricePerNight, nil
}

// ParseTargetStatus accepts only the statuses a host may set.
func ParseTargetStatus(status string) (string, error) {
	switch status {
	case models.StatusConfirmed, models.StatusCancelled:
		return status, nil
	default:
		return "", domain.ErrInvalidStatus
	}
}

// CanTransition reports whether from -> to is a legal move.
func CanTransition(from, to string) bool {
	if from != models.StatusPending {
		return false
	}
	return to == models.StatusConfirmed || to == models.StatusCancelled
}

// EnsureHost returns ErrForbidden unless the user hosts the property.
func EnsureHost(user models.AuthenticatedUser, property *models.Property) error {
	if property == nil || property.HostID != user.ID {
		return domain.ErrForbidden
	}
	return nil
}

// EnsureNotSelfBooking rejects a host booking their own listing.
func EnsureNotSelfBooking(user models.AuthenticatedUser, property *models.Property) error {
	if property != nil && property.HostID == user.ID {
		return domain.ErrSelfBookingForbidden
	}
	return nil
}

// Today is the current UTC calendar day.
func Today(now func() time.Time) models.Date {
	if now == nil {
		now = time.Now
	}
	return models.NewDate(now().UTC())
}
