package service

import (
	"context"
	"time"
)

// Queue event types published on bookings and provider actions.
const (
	EventQueueBooked   = "queue.booked"
	EventQueueAdvanced = "queue.advanced"
	EventQueueDrained  = "queue.drained"
	EventQueueReset    = "queue.reset"
)

// QueueEvent describes one change to a business's queue.
type QueueEvent struct {
	RequestID    string    `json:"request_id,omitempty"` // For distributed tracing
	EventID      string    `json:"event_id"`
	Type         string    `json:"type"`
	BusinessID   string    `json:"business_id"`
	BusinessName string    `json:"business_name,omitempty"`
	QueueNumber  int64     `json:"queue_number,omitempty"` // Number booked or now being served
	ClientUserID string    `json:"client_user_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// EventPublisher defines the interface for publishing queue events to a
// message queue for downstream consumers (dashboards, analytics).
type EventPublisher interface {
	// PublishQueueEvent publishes a queue event for async processing
	PublishQueueEvent(ctx context.Context, event *QueueEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
