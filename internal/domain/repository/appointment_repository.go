package repository

import (
	"context"

	"lineless/internal/domain/entity"
	"lineless/internal/errors"
)

// ErrAppointmentNotFound is returned when an appointment is not found.
var ErrAppointmentNotFound = errors.New("appointment not found")

// Unsubscribe stops delivery for a live watch. It must be called when the
// consumer is torn down; calling it more than once is harmless.
type Unsubscribe func()

// AppointmentRepository defines the interface for appointment-related store
// operations. Implementations normalize legacy records at this boundary:
// queue numbers stored as strings are parsed once on read, and legacy status
// spellings are mapped onto the canonical PENDING/CURRENT/SERVED set. All
// listing methods return appointments ordered by queue number ascending with
// unparseable legacy numbers last.
type AppointmentRepository interface {
	// CreateAppointment persists a new appointment and returns the assigned ID.
	CreateAppointment(ctx context.Context, appointment *entity.Appointment) (string, error)

	// FindAppointmentByID retrieves a single appointment.
	FindAppointmentByID(ctx context.Context, id string) (*entity.Appointment, error)

	// FindAppointmentsByBusiness retrieves every appointment of a business,
	// served ones included.
	FindAppointmentsByBusiness(ctx context.Context, businessID string) ([]*entity.Appointment, error)

	// FindActiveByBusiness retrieves the appointments of a business that
	// still occupy a queue slot (status PENDING or CURRENT).
	FindActiveByBusiness(ctx context.Context, businessID string) ([]*entity.Appointment, error)

	// FindAppointmentsByClient retrieves every appointment booked by a client.
	FindAppointmentsByClient(ctx context.Context, clientUserID string) ([]*entity.Appointment, error)

	// UpdateAppointmentStatus sets the status of a single appointment.
	UpdateAppointmentStatus(ctx context.Context, id string, status entity.AppointmentStatus) error

	// DeleteAppointment removes a single appointment. Only queue resets
	// delete appointments; they are never removed individually by clients.
	DeleteAppointment(ctx context.Context, id string) error

	// WatchActiveByBusinesses registers a callback that receives the full
	// current set of active appointments for the given businesses, once
	// immediately and again after every change. The callback runs off the
	// caller's goroutine and must not block; deliveries to one subscription
	// never overlap and a newer set is never followed by an older one.
	// Query-size limits of the backing store are an implementation detail;
	// the callback always sees the merged set for all requested businesses.
	WatchActiveByBusinesses(ctx context.Context, businessIDs []string, fn func([]*entity.Appointment)) (Unsubscribe, error)
}
