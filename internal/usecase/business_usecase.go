package usecase

import (
	"context"

	"lineless/internal/domain/entity"
)

// RegisterBusinessInput carries the fields a provider submits when listing a
// business.
type RegisterBusinessInput struct {
	Name            string   `json:"business_name" validate:"required,min=2,max=120"`
	ServiceCategory string   `json:"service_category" validate:"required"`
	Latitude        *float64 `json:"latitude" validate:"omitempty,latitude"`
	Longitude       *float64 `json:"longitude" validate:"omitempty,longitude"`
	OpenTime        string   `json:"open_time" validate:"required"`
	CloseTime       string   `json:"close_time" validate:"required"`
	Description     string   `json:"description" validate:"max=2000"`
	CapacityPerHour int      `json:"capacity_per_hour" validate:"gte=0"`
}

// NearbyBusiness is a business annotated with its distance from the query
// point.
type NearbyBusiness struct {
	*entity.Business
	DistanceMeters float64 `json:"distance_meters"`
}

// BusinessUsecase defines the interface for business registration and
// discovery.
type BusinessUsecase interface {
	// Register lists a new business owned by the provider. Operating hours
	// must be well-formed "HH:MM" values with close after open.
	Register(ctx context.Context, providerID string, input RegisterBusinessInput) (*entity.Business, error)

	// Get retrieves one business.
	Get(ctx context.Context, businessID string) (*entity.Business, error)

	// ListAll retrieves every registered business.
	ListAll(ctx context.Context) ([]*entity.Business, error)

	// ListByProvider retrieves the businesses owned by a provider.
	ListByProvider(ctx context.Context, providerID string) ([]*entity.Business, error)

	// Nearby retrieves businesses within radiusKm of the given point,
	// closest first. Businesses without coordinates are skipped.
	Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]*NearbyBusiness, error)

	// Delete removes a business and, because the business owns its
	// appointments, clears its whole queue first. Requires the calling
	// provider to own the business.
	Delete(ctx context.Context, providerID, businessID string) error

	// BookingQR renders the PNG QR code clients scan to book at a business.
	BookingQR(ctx context.Context, businessID string) ([]byte, error)
}
