package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Property struct {
	ID            int64     `json:"id" db:"id"`
	HostID        int64     `json:"host_id" db:"host_id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	PricePerNight float64   `json:"price_per_night" db:"price_per_night"`
	Location      string    `json:"location" db:"location"`
	MaxGuests     int       `json:"max_guests" db:"max_guests"`
	Amenities     Amenities `json:"amenities" db:"amenities"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

type PropertyImage struct {
	ID         int64  `json:"id" db:"id"`
	PropertyID int64  `json:"property_id" db:"property_id"`
	ImageURL   string `json:"image_url" db:"image_url"`
	IsMain     bool   `json:"is_main" db:"is_main"`
}

// PropertySummary is a catalogue row.
type PropertySummary struct {
	Property
	ImageURL      *string `json:"image_url" db:"image_url"`
	AverageRating float64 `json:"average_rating" db:"average_rating"`
	ReviewCount   int     `json:"review_count" db:"review_count"`
}

type PropertyDetails struct {
	Property
	HostName      string          `json:"host_name" db:"host_name"`
	HostEmail     string          `json:"host_email" db:"host_email"`
	AverageRating float64         `json:"average_rating" db:"average_rating"`
	Images        []PropertyImage `json:"images" db:"-"`
}

type HostPropertyStats struct {
	Property
	ActiveBookings int `json:"active_bookings" db:"active_bookings"`
}

type HostSummary struct {
	TotalPosts      int     `json:"total_posts" db:"total_posts"`
	TotalClients    int     `json:"total_clients" db:"total_clients"`
	TotalRevenue    float64 `json:"total_revenue" db:"total_revenue"`
	PendingRequests int     `json:"pending_requests" db:"pending_requests"`
}

type HostStats struct {
	Summary      HostSummary         `json:"summary"`
	MyProperties []HostPropertyStats `json:"myProperties"`
}

// Amenities is stored as a JSON array in a text column.
type Amenities []string

func (a Amenities) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	raw, err := json.Marshal([]string(a))
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (a *Amenities) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*a = Amenities{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("cannot scan %T into Amenities", src)
	}
	if len(raw) == 0 {
		*a = Amenities{}
		return nil
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("failed to decode amenities: %w", err)
	}
	*a = out
	return nil
}
