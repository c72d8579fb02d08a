// Package repository defines the interfaces for the persistence layer.
package repository

import (
	"context"

	"lineless/internal/domain/entity"
	"lineless/internal/errors"
)

// Domain-specific errors for business persistence.
var (
	// ErrBusinessNotFound is returned when a business is not found.
	ErrBusinessNotFound = errors.New("business not found")
	// ErrStoreUnavailable is returned when the backing store cannot be
	// reached. The whole operation is safe to retry.
	ErrStoreUnavailable = errors.New("store unavailable")
)

// BusinessRepository defines the interface for business-related store operations.
type BusinessRepository interface {
	// CreateBusiness persists a new business and returns the assigned ID.
	CreateBusiness(ctx context.Context, business *entity.Business) (string, error)

	// FindBusinessByID retrieves a business by its document ID.
	FindBusinessByID(ctx context.Context, id string) (*entity.Business, error)

	// ListBusinesses retrieves every registered business.
	ListBusinesses(ctx context.Context) ([]*entity.Business, error)

	// FindBusinessesByProvider retrieves all businesses owned by a provider.
	FindBusinessesByProvider(ctx context.Context, providerID string) ([]*entity.Business, error)

	// NextQueueNumber atomically increments the business's issued-token
	// counter by one and returns the new value. Two concurrent calls for
	// the same business never observe the same number.
	NextQueueNumber(ctx context.Context, id string) (int64, error)

	// SetCurrentToken records the queue number currently being served.
	// Zero means the queue is drained or idle.
	SetCurrentToken(ctx context.Context, id string, token int64) error

	// ResetCounters zeroes both the issued-token counter and the current
	// token, so the next booking starts the queue over at number one.
	ResetCounters(ctx context.Context, id string) error

	// DeleteBusiness removes the business document. Appointments are owned
	// by the business and must be deleted by the caller beforehand.
	DeleteBusiness(ctx context.Context, id string) error
}
