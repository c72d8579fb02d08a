package usecase

import (
	"context"

	"lineless/internal/domain/entity"
	"lineless/internal/domain/repository"
)

// QueueUsecase defines the interface for provider-side queue management.
type QueueUsecase interface {
	// Advance moves the queue of the given business forward one step.
	// Statuses only transition PENDING→CURRENT→SERVED: when an appointment
	// is flagged CURRENT it is marked SERVED and the next one promoted;
	// when none is flagged the smallest active queue number is promoted to
	// CURRENT without serving anyone (self-healing, and the first call on a
	// fresh queue). When several are flagged CURRENT the extras are
	// normalized back to PENDING. With zero active appointments the call is
	// a no-op and the result says so. Requires the calling provider to own
	// the business.
	Advance(ctx context.Context, providerID, businessID string) (*AdvanceResult, error)

	// AdvanceNext advances without an explicit business, for providers that
	// manage several: it targets the business that already has a CURRENT
	// appointment, or failing that the one whose smallest active queue
	// number is lowest.
	AdvanceNext(ctx context.Context, providerID string) (*AdvanceResult, error)

	// Reset destructively clears a business's queue: every appointment is
	// deleted, history included, and both counters return to zero so the
	// next booking gets queue number one. Partial delete failures surface
	// as a PartialFailureError carrying the deleted count; nothing is
	// rolled back. Requires the calling provider to own the business.
	Reset(ctx context.Context, providerID, businessID string) (*ResetResult, error)

	// GetQueue returns the live queue of a business for dashboards.
	GetQueue(ctx context.Context, businessID string) (*QueueSnapshot, error)

	// WatchQueue pushes a fresh snapshot to fn after every change to the
	// business's active appointments. The returned handle stops delivery.
	WatchQueue(ctx context.Context, businessID string, fn func(*QueueSnapshot)) (repository.Unsubscribe, error)
}

// AdvanceResult reports what an Advance call did.
type AdvanceResult struct {
	BusinessID string `json:"business_id"`
	// NoOp is true when there were no active appointments to advance.
	NoOp bool `json:"no_op"`
	// Served is the appointment just completed, nil on a no-op and on a
	// promotion-only call (no CURRENT marker was set).
	Served *entity.Appointment `json:"served,omitempty"`
	// Current is the newly promoted appointment, nil when the queue drained.
	Current *entity.Appointment `json:"current,omitempty"`
	// CurrentToken is the business's current token after the call, 0 when
	// the queue drained.
	CurrentToken int64 `json:"current_token"`
	// Drained is true when Served was the last active appointment.
	Drained bool `json:"drained"`
	// Normalized counts appointments that were erroneously flagged CURRENT
	// and repaired back to PENDING.
	Normalized int `json:"normalized,omitempty"`
}

// ResetResult reports how many appointments a Reset removed.
type ResetResult struct {
	BusinessID string `json:"business_id"`
	Deleted    int    `json:"deleted"`
}

// QueueSnapshot is the live state of one business's queue.
type QueueSnapshot struct {
	BusinessID   string              `json:"business_id"`
	BusinessName string              `json:"business_name"`
	CurrentToken int64               `json:"current_token"`
	Serving      *entity.Appointment `json:"serving,omitempty"`
	Waiting      []*entity.Appointment `json:"waiting"`
	WaitingCount int                 `json:"waiting_count"`
	// EstimatedWaitMinutes is the display heuristic the dashboards use:
	// two minutes per waiting client, floored at five.
	EstimatedWaitMinutes int `json:"estimated_wait_minutes"`
}
