package domain

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateRange     = errors.New("start date must be before end date")
	ErrDateRangeUnavailable = errors.New("property is already booked for these dates")
	ErrSelfBookingForbidden = errors.New("hosts cannot book their own property")
	ErrForbidden            = errors.New("forbidden")
	ErrActiveBookingsExist  = errors.New("property has active or upcoming reservations")
	ErrInvalidStatus        = errors.New("invalid reservation status")

	ErrNotFound            = errors.New("not found")
	ErrPropertyNotFound    = fmt.Errorf("property %w", ErrNotFound)
	ErrReservationNotFound = fmt.Errorf("reservation %w", ErrNotFound)
	ErrImageNotFound       = fmt.Errorf("image %w", ErrNotFound)
	ErrUserNotFound        = fmt.Errorf("user %w", ErrNotFound)

	ErrReviewNotAllowed   = errors.New("only guests with a confirmed stay can review this property")
	ErrAlreadyReviewed    = errors.New("property already reviewed")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrRateLimited        = errors.New("too many requests")
	ErrValidation         = errors.New("validation failed")
)
