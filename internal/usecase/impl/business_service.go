package impl

import (
	"context"
	"slices"
	"time"

	"lineless/internal/domain/entity"
	domainerrors "lineless/internal/domain/errors"
	"lineless/internal/domain/repository"
	"lineless/internal/domain/service"
	"lineless/internal/usecase"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type businessService struct {
	businessRepo  repository.BusinessRepository
	queueUsecase  usecase.QueueUsecase
	qrcodeService service.QRCodeService
}

// BusinessServiceParams holds dependencies for BusinessService, injected by Fx.
type BusinessServiceParams struct {
	fx.In

	BusinessRepo  repository.BusinessRepository
	QueueUsecase  usecase.QueueUsecase
	QRCodeService service.QRCodeService
}

// NewBusinessService creates a new business service instance
func NewBusinessService(params BusinessServiceParams) usecase.BusinessUsecase {
	return &businessService{
		businessRepo:  params.BusinessRepo,
		queueUsecase:  params.QueueUsecase,
		qrcodeService: params.QRCodeService,
	}
}

// Register lists a new business owned by the provider.
func (s *businessService) Register(ctx context.Context, providerID string, input usecase.RegisterBusinessInput) (*entity.Business, error) {
	open, err := parseClock(input.OpenTime)
	if err != nil {
		return nil, domainerrors.ErrInvalidOperatingHours
	}
	closeAt, err := parseClock(input.CloseTime)
	if err != nil {
		return nil, domainerrors.ErrInvalidOperatingHours
	}
	if !closeAt.After(open) {
		return nil, domainerrors.ErrInvalidOperatingHours
	}

	business := &entity.Business{
		Name:            input.Name,
		ServiceCategory: input.ServiceCategory,
		ProviderID:      providerID,
		Latitude:        input.Latitude,
		Longitude:       input.Longitude,
		OpenTime:        input.OpenTime,
		CloseTime:       input.CloseTime,
		Description:     input.Description,
		CapacityPerHour: input.CapacityPerHour,
		DisplayStatus:   "Open",
	}
	if _, err := s.businessRepo.CreateBusiness(ctx, business); err != nil {
		return nil, errors.Wrap(err, "failed to create business")
	}

	return business, nil
}

// Get retrieves one business.
func (s *businessService) Get(ctx context.Context, businessID string) (*entity.Business, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business")
	}

	return business, nil
}

// ListAll retrieves every registered business.
func (s *businessService) ListAll(ctx context.Context) ([]*entity.Business, error) {
	businesses, err := s.businessRepo.ListBusinesses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list businesses")
	}

	return businesses, nil
}

// ListByProvider retrieves the businesses owned by a provider.
func (s *businessService) ListByProvider(ctx context.Context, providerID string) ([]*entity.Business, error) {
	businesses, err := s.businessRepo.FindBusinessesByProvider(ctx, providerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list provider businesses")
	}

	return businesses, nil
}

// Nearby retrieves businesses within radiusKm of the given point, closest
// first. Businesses without coordinates are skipped.
func (s *businessService) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]*usecase.NearbyBusiness, error) {
	businesses, err := s.businessRepo.ListBusinesses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list businesses")
	}

	origin := orb.Point{lon, lat}
	radiusMeters := radiusKm * 1000

	out := make([]*usecase.NearbyBusiness, 0)
	for _, b := range businesses {
		if !b.HasLocation() {
			continue
		}
		distance := geo.Distance(origin, orb.Point{*b.Longitude, *b.Latitude})
		if distance > radiusMeters {
			continue
		}
		out = append(out, &usecase.NearbyBusiness{Business: b, DistanceMeters: distance})
	}
	slices.SortFunc(out, func(a, b *usecase.NearbyBusiness) int {
		switch {
		case a.DistanceMeters < b.DistanceMeters:
			return -1
		case a.DistanceMeters > b.DistanceMeters:
			return 1
		default:
			return 0
		}
	})

	return out, nil
}

// Delete removes a business. The business owns its appointments, so its
// queue is cleared first through the same reset path providers use.
func (s *businessService) Delete(ctx context.Context, providerID, businessID string) error {
	if _, err := s.queueUsecase.Reset(ctx, providerID, businessID); err != nil {
		return err
	}

	if err := s.businessRepo.DeleteBusiness(ctx, businessID); err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return domainerrors.ErrBusinessNotFound
		}

		return errors.Wrap(err, "failed to delete business")
	}

	return nil
}

// BookingQR renders the PNG QR code clients scan to book at a business.
func (s *businessService) BookingQR(ctx context.Context, businessID string) ([]byte, error) {
	if _, err := s.Get(ctx, businessID); err != nil {
		return nil, err
	}

	png, err := s.qrcodeService.GenerateBookingQR(businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate booking QR code")
	}

	return png, nil
}

func parseClock(value string) (time.Time, error) {
	return time.Parse("15:04", value)
}
