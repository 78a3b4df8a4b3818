package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"nestflow/internal/domain"
	"nestflow/internal/models"

	"github.com/go-playground/validator/v10"
)

const maxBodyBytes = 1 << 20

var validate = validator.New(validator.WithRequiredStructEnabled())

type registerRequest struct {
	Username string `json:"username" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	Role     string `json:"role" validate:"omitempty,oneof=guest host"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type profileRequest struct {
	Username string  `json:"username" validate:"required,min=2,max=50"`
	Email    string  `json:"email" validate:"required,email,max=255"`
	Bio      *string `json:"bio" validate:"omitempty,max=1000"`
}

type avatarRequest struct {
	AvatarURL string `json:"avatar_url" validate:"required,url,max=2048"`
}

type propertyRequest struct {
	Title         string   `json:"title" validate:"required,max=200"`
	Description   string   `json:"description" validate:"max=5000"`
	PricePerNight float64  `json:"price_per_night" validate:"gt=0"`
	Location      string   `json:"location" validate:"required,max=200"`
	MaxGuests     int      `json:"max_guests" validate:"gte=1,lte=100"`
	Amenities     []string `json:"amenities" validate:"omitempty,dive,required,max=100"`
}

func (p propertyRequest) toModel(id int64) *models.Property {
	amenities := models.Amenities(p.Amenities)
	if amenities == nil {
		amenities = models.Amenities{}
	}
	return &models.Property{
		ID:            id,
		Title:         strings.TrimSpace(p.Title),
		Description:   p.Description,
		PricePerNight: p.PricePerNight,
		Location:      strings.TrimSpace(p.Location),
		MaxGuests:     p.MaxGuests,
		Amenities:     amenities,
	}
}

type imagesRequest struct {
	ImageURLs []string `json:"image_urls" validate:"required,min=1,max=5,dive,required,url"`
}

type reservationRequest struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	StartDate  string `json:"start_date" validate:"required"`
	EndDate    string `json:"end_date" validate:"required"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type reservationResponse struct {
	Message     string              `json:"message"`
	Reservation *models.Reservation `json:"reservation"`
}

type reviewRequest struct {
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment" validate:"max=2000"`
}

type messageRequest struct {
	ReceiverID int64  `json:"receiver_id" validate:"required,gt=0"`
	PropertyID int64  `json:"property_id" validate:"required,gt=0"`
	Content    string `json:"content" validate:"required,max=2000"`
}

// decodeBody reads a JSON body into dst and runs struct validation.
func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body", domain.ErrValidation)
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	fe := verrs[0]
	if fe.Param() != "" {
		return fmt.Errorf("%w: %s failed %s=%s", domain.ErrValidation, fe.Field(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("%w: %s failed %s", domain.ErrValidation, fe.Field(), fe.Tag())
}

// pathID parses a positive integer path wildcard.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", domain.ErrValidation, name)
	}
	return id, nil
}

// parseRange reads two civil dates; malformed input is an invalid range.
func parseRange(start, end string) (models.Date, models.Date, error) {
	s, err := models.ParseDate(start)
	if err != nil {
		return models.Date{}, models.Date{}, fmt.Errorf("%w: start_date: %v", domain.ErrInvalidDateRange, err)
	}
	e, err := models.ParseDate(end)
	if err != nil {
		return models.Date{}, models.Date{}, fmt.Errorf("%w: end_date: %v", domain.ErrInvalidDateRange, err)
	}
	return s, e, nil
}
