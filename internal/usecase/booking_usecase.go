// Package usecase defines the application use case interfaces and their
// request/result types.
package usecase

import (
	"context"

	"lineless/internal/domain/entity"
)

// Client identifies the authenticated client performing a booking. The
// caller passes it explicitly; use cases never read identity from ambient
// state.
type Client struct {
	UserID string
	Name   string
}

// BookingUsecase defines the interface for taking a position in a queue.
type BookingUsecase interface {
	// Book reserves the next queue number at a business for the client and
	// returns the created appointment. The number comes from an atomic
	// counter increment, so concurrent bookings never collide; if the
	// appointment write fails after the increment, that number is burned
	// and never reused.
	Book(ctx context.Context, client Client, businessID string) (*entity.Appointment, error)

	// ListForClient retrieves the client's appointments across businesses,
	// bucketed by status, each carrying the owning business's current token.
	ListForClient(ctx context.Context, clientUserID string) (*ClientQueueView, error)
}

// ClientAppointment is an appointment paired with the token its business is
// serving right now, so a client can see how far away their turn is.
type ClientAppointment struct {
	*entity.Appointment
	BusinessCurrentToken int64 `json:"business_current_token"`
}

// ClientQueueView buckets a client's appointments by normalized status.
type ClientQueueView struct {
	Current []*ClientAppointment `json:"current"`
	Pending []*ClientAppointment `json:"pending"`
	Served  []*ClientAppointment `json:"served"`
}
