// Package impl contains the concrete implementations of the use case
// interfaces.
package impl

import (
	"context"
	"log/slog"
	"time"

	"lineless/internal/domain/entity"
	domainerrors "lineless/internal/domain/errors"
	"lineless/internal/domain/repository"
	"lineless/internal/domain/service"
	"lineless/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type bookingService struct {
	businessRepo    repository.BusinessRepository
	appointmentRepo repository.AppointmentRepository
	publisher       service.EventPublisher
	logger          *slog.Logger
}

// BookingServiceParams holds dependencies for BookingService, injected by Fx.
type BookingServiceParams struct {
	fx.In

	BusinessRepo    repository.BusinessRepository
	AppointmentRepo repository.AppointmentRepository
	Publisher       service.EventPublisher
	Logger          *slog.Logger
}

// NewBookingService creates a new booking service instance
func NewBookingService(params BookingServiceParams) usecase.BookingUsecase {
	return &bookingService{
		businessRepo:    params.BusinessRepo,
		appointmentRepo: params.AppointmentRepo,
		publisher:       params.Publisher,
		logger:          params.Logger,
	}
}

// Book reserves the next queue number at a business for the client.
//
// The number comes from the store's atomic counter increment, so two
// concurrent bookings never receive the same one. The increment and the
// appointment create are two independent writes: when the create fails the
// already-incremented number is burned rather than reused, which keeps
// numbers unique at the cost of a gap in the sequence.
func (s *bookingService) Book(ctx context.Context, client usecase.Client, businessID string) (*entity.Appointment, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business")
	}

	number, err := s.businessRepo.NextQueueNumber(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}
		if errors.Is(err, repository.ErrStoreUnavailable) {
			return nil, domainerrors.ErrStoreUnavailable
		}

		return nil, errors.Wrap(err, "failed to allocate queue number")
	}

	appointment := &entity.Appointment{
		BusinessID:   businessID,
		BusinessName: business.Name,
		ClientName:   client.Name,
		ClientUserID: client.UserID,
		QueueNumber:  number,
		Status:       entity.StatusPending,
		BookedAt:     time.Now(),
	}

	if _, err := s.appointmentRepo.CreateAppointment(ctx, appointment); err != nil {
		s.logger.Warn("appointment create failed after counter increment, queue number burned",
			slog.String("business_id", businessID),
			slog.Int64("queue_number", number),
			slog.Any("error", err),
		)

		return nil, domainerrors.ErrStoreUnavailable.WrapMessage("failed to create appointment")
	}

	s.publishEvent(ctx, &service.QueueEvent{
		EventID:      uuid.New().String(),
		Type:         service.EventQueueBooked,
		BusinessID:   businessID,
		BusinessName: business.Name,
		QueueNumber:  number,
		ClientUserID: client.UserID,
		OccurredAt:   time.Now(),
	})

	return appointment, nil
}

// ListForClient retrieves the client's appointments bucketed by status.
func (s *bookingService) ListForClient(ctx context.Context, clientUserID string) (*usecase.ClientQueueView, error) {
	appointments, err := s.appointmentRepo.FindAppointmentsByClient(ctx, clientUserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to find appointments by client")
	}

	// One lookup per referenced business; a business that fails to load
	// (deleted since booking) just shows current token zero.
	tokens := make(map[string]int64)
	for _, a := range appointments {
		if _, ok := tokens[a.BusinessID]; ok {
			continue
		}
		business, err := s.businessRepo.FindBusinessByID(ctx, a.BusinessID)
		if err != nil {
			tokens[a.BusinessID] = 0

			continue
		}
		tokens[a.BusinessID] = business.CurrentToken
	}

	view := &usecase.ClientQueueView{
		Current: make([]*usecase.ClientAppointment, 0),
		Pending: make([]*usecase.ClientAppointment, 0),
		Served:  make([]*usecase.ClientAppointment, 0),
	}
	for _, a := range appointments {
		entry := &usecase.ClientAppointment{
			Appointment:          a,
			BusinessCurrentToken: tokens[a.BusinessID],
		}
		switch a.Status {
		case entity.StatusCurrent:
			view.Current = append(view.Current, entry)
		case entity.StatusServed:
			view.Served = append(view.Served, entry)
		default:
			view.Pending = append(view.Pending, entry)
		}
	}

	return view, nil
}

func (s *bookingService) publishEvent(ctx context.Context, event *service.QueueEvent) {
	if err := s.publisher.PublishQueueEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish queue event",
			slog.String("type", event.Type),
			slog.String("business_id", event.BusinessID),
			slog.Any("error", err),
		)
	}
}
