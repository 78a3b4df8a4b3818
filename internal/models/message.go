package models

import "time"

type Message struct {
	ID         int64     `json:"id" db:"id"`
	SenderID   int64     `json:"sender_id" db:"sender_id"`
	ReceiverID int64     `json:"receiver_id" db:"receiver_id"`
	PropertyID int64     `json:"property_id" db:"property_id"`
	Content    string    `json:"content" db:"content"`
	IsRead     bool      `json:"is_read" db:"is_read"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Conversation summarises the latest exchange with one contact about one property.
type Conversation struct {
	ContactID     int64     `json:"contact_id"`
	ContactName   string    `json:"contact_name"`
	PropertyID    int64     `json:"property_id"`
	PropertyTitle string    `json:"property_title"`
	LastMessage   string    `json:"last_message"`
	CreatedAt     time.Time `json:"created_at"`
	UnreadCount   int       `json:"unread_count"`
}
