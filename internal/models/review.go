package models

import "time"

type Review struct {
	ID         int64     `json:"id" db:"id"`
	PropertyID int64     `json:"property_id" db:"property_id"`
	GuestID    int64     `json:"guest_id" db:"guest_id"`
	Rating     int       `json:"rating" db:"rating"`
	Comment    string    `json:"comment" db:"comment"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type ReviewDetails struct {
	Review
	Username  string  `json:"username" db:"username"`
	AvatarURL *string `json:"avatar_url" db:"avatar_url"`
}
