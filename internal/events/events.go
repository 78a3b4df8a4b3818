package events

import (
	"encoding/json"
	"sync"
	"time"

	"nestflow/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	EventReservationCreated   = "reservation_created"
	EventReservationConfirmed = "reservation_confirmed"
	EventReservationCancelled = "reservation_cancelled"
	EventReviewCreated        = "review_created"
)

// AllEventTypes lists every event the services publish.
var AllEventTypes = []string{
	EventReservationCreated,
	EventReservationConfirmed,
	EventReservationCancelled,
	EventReviewCreated,
}

// ReservationEventPayload is the reservation snapshot handed to consumers.
type ReservationEventPayload struct {
	ReservationID int64   `json:"reservation_id"`
	PropertyID    int64   `json:"property_id"`
	GuestID       int64   `json:"guest_id"`
	StartDate     string  `json:"start_date"`
	EndDate       string  `json:"end_date"`
	TotalPrice    float64 `json:"total_price"`
	Status        string  `json:"status"`
	ChangedByID   int64   `json:"changed_by_id,omitempty"`
}

type ReviewEventPayload struct {
	ReviewID   int64 `json:"review_id"`
	PropertyID int64 `json:"property_id"`
	GuestID    int64 `json:"guest_id"`
	Rating     int   `json:"rating"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
	logger      *zerolog.Logger
}

// NewEventBus constructs an empty bus. Handler errors go to logger.
func NewEventBus(logger *zerolog.Logger) *EventBus {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &EventBus{subscribers: make(map[string][]EventHandler), logger: logger}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type. Handlers run synchronously
// and a failing handler does not stop the others.
func (b *EventBus) Publish(event *Event) {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	for _, handler := range handlers {
		if err := handler(event); err != nil {
			b.logger.Warn().Err(err).Str("event", event.Type).Msg("Event handler failed")
		}
	}
}

// PublishJSON serializes the payload and publishes an event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	b.Publish(&Event{Type: eventType, Payload: raw, CreatedAt: time.Now()})
	return nil
}

// LogHandler writes every event it receives at debug level.
func LogHandler(logger *zerolog.Logger) EventHandler {
	return func(event *Event) error {
		logger.Debug().
			Str("event", event.Type).
			RawJSON("payload", event.Payload).
			Time("at", event.CreatedAt).
			Msg("Domain event")
		return nil
	}
}

// MetricsHandler counts events by type.
func MetricsHandler() EventHandler {
	return func(event *Event) error {
		metrics.IncEvent(event.Type)
		return nil
	}
}
