package models

import "time"

type Reservation struct {
	ID         int64     `json:"id" db:"id"`
	PropertyID int64     `json:"property_id" db:"property_id"`
	GuestID    int64     `json:"guest_id" db:"guest_id"`
	StartDate  Date      `json:"start_date" db:"start_date"`
	EndDate    Date      `json:"end_date" db:"end_date"` // exclusive
	TotalPrice float64   `json:"total_price" db:"total_price"`
	Status     string    `json:"status" db:"status"` // pending, confirmed, cancelled
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Trip is a reservation as seen by its guest.
type Trip struct {
	Reservation
	Title    string  `json:"title" db:"title"`
	Location string  `json:"location" db:"location"`
	ImageURL *string `json:"image_url" db:"image_url"`
}

// HostReservation is a reservation on one of the host's properties.
type HostReservation struct {
	Reservation
	PropertyTitle string `json:"property_title" db:"property_title"`
	GuestName     string `json:"guest_name" db:"guest_name"`
	GuestEmail    string `json:"guest_email" db:"guest_email"`
}

// Availability is the answer to a read-only range probe.
type Availability struct {
	Available  bool    `json:"available"`
	Nights     int     `json:"nights"`
	TotalPrice float64 `json:"total_price"`
}
