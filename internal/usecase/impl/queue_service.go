package impl

import (
	"context"
	"log/slog"
	"sync"
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

type queueService struct {
	businessRepo    repository.BusinessRepository
	appointmentRepo repository.AppointmentRepository
	notifier        service.NotificationService
	publisher       service.EventPublisher
	logger          *slog.Logger
}

// QueueServiceParams holds dependencies for QueueService, injected by Fx.
type QueueServiceParams struct {
	fx.In

	BusinessRepo    repository.BusinessRepository
	AppointmentRepo repository.AppointmentRepository
	Notifier        service.NotificationService
	Publisher       service.EventPublisher
	Logger          *slog.Logger
}

// NewQueueService creates a new queue service instance
func NewQueueService(params QueueServiceParams) usecase.QueueUsecase {
	return &queueService{
		businessRepo:    params.BusinessRepo,
		appointmentRepo: params.AppointmentRepo,
		notifier:        params.Notifier,
		publisher:       params.Publisher,
		logger:          params.Logger,
	}
}

// Advance moves the queue forward one step. Statuses only ever move
// PENDING→CURRENT→SERVED: when no appointment is flagged CURRENT the head of
// the queue is promoted to CURRENT without serving anyone (self-heal after a
// lost marker, and the first call on a fresh queue); when one is flagged it
// is marked SERVED and the next appointment promoted.
//
// The writes are independent document updates, not a transaction. Each is
// attempted even when an earlier one failed, and a partial failure is
// reported with the applied and failed counts so the caller knows the queue
// may need another advance to settle.
func (s *queueService) Advance(ctx context.Context, providerID, businessID string) (*usecase.AdvanceResult, error) {
	business, err := s.loadOwnedBusiness(ctx, providerID, businessID)
	if err != nil {
		return nil, err
	}

	active, err := s.appointmentRepo.FindActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active appointments")
	}

	if len(active) == 0 {
		return &usecase.AdvanceResult{
			BusinessID:   businessID,
			NoOp:         true,
			CurrentToken: business.CurrentToken,
		}, nil
	}

	var applied, failed int
	var firstErr error
	record := func(err error) {
		if err != nil {
			failed++
			if firstErr == nil {
				firstErr = err
			}

			return
		}
		applied++
	}

	current := flaggedCurrent(active)

	var served, promoted *entity.Appointment
	if current == nil {
		// No CURRENT marker: promote the head of the queue and stop; it
		// gets served on the next call.
		promoted = active[0]
		record(s.appointmentRepo.UpdateAppointmentStatus(ctx, promoted.ID, entity.StatusCurrent))
		record(s.businessRepo.SetCurrentToken(ctx, businessID, promoted.QueueNumber))
	} else {
		served = current
		promoted = pickNext(active, current)
		record(s.appointmentRepo.UpdateAppointmentStatus(ctx, served.ID, entity.StatusServed))

		var newToken int64
		if promoted != nil {
			newToken = promoted.QueueNumber
			record(s.appointmentRepo.UpdateAppointmentStatus(ctx, promoted.ID, entity.StatusCurrent))
		}
		record(s.businessRepo.SetCurrentToken(ctx, businessID, newToken))
	}

	// Any other appointment erroneously flagged CURRENT goes back to
	// PENDING, so at most one appointment per business is ever current.
	normalized := 0
	for _, a := range active {
		if (served != nil && a.ID == served.ID) || (promoted != nil && a.ID == promoted.ID) {
			continue
		}
		if a.Status != entity.StatusCurrent {
			continue
		}
		normalized++
		record(s.appointmentRepo.UpdateAppointmentStatus(ctx, a.ID, entity.StatusPending))
	}

	if failed > 0 {
		return nil, domainerrors.NewPartialFailureError("queue advance", applied, failed, firstErr)
	}

	result := &usecase.AdvanceResult{
		BusinessID: businessID,
		Served:     served,
		Current:    promoted,
		Drained:    promoted == nil,
		Normalized: normalized,
	}
	if served != nil {
		result.Served.Status = entity.StatusServed
	}

	eventType := service.EventQueueAdvanced
	var clientUserID string
	var queueNumber int64
	if promoted != nil {
		result.Current.Status = entity.StatusCurrent
		result.CurrentToken = promoted.QueueNumber
		clientUserID = promoted.ClientUserID
		queueNumber = promoted.QueueNumber

		if err := s.notifier.NotifyTurn(ctx, promoted.ClientUserID, business.Name, promoted.QueueNumber); err != nil {
			s.logger.Warn("failed to notify client of their turn",
				slog.String("business_id", businessID),
				slog.Int64("queue_number", promoted.QueueNumber),
				slog.Any("error", err),
			)
		}
	} else {
		eventType = service.EventQueueDrained
	}

	s.publishEvent(ctx, &service.QueueEvent{
		EventID:      uuid.New().String(),
		Type:         eventType,
		BusinessID:   businessID,
		BusinessName: business.Name,
		QueueNumber:  queueNumber,
		ClientUserID: clientUserID,
		OccurredAt:   time.Now(),
	})

	return result, nil
}

// AdvanceNext picks which of the provider's businesses to advance: the one
// that already has an appointment flagged CURRENT, or failing that the one
// whose head-of-queue number is smallest.
func (s *queueService) AdvanceNext(ctx context.Context, providerID string) (*usecase.AdvanceResult, error) {
	businesses, err := s.businessRepo.FindBusinessesByProvider(ctx, providerID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list provider businesses")
	}

	var (
		target   *entity.Business
		bestHead *entity.Appointment
	)
	for _, b := range businesses {
		active, err := s.appointmentRepo.FindActiveByBusiness(ctx, b.ID)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load active appointments")
		}
		if len(active) == 0 {
			continue
		}
		if flaggedCurrent(active) != nil {
			target = b
			break
		}
		if bestHead == nil || entity.CompareByQueueNumber(active[0], bestHead) < 0 {
			bestHead = active[0]
			target = b
		}
	}

	if target == nil {
		return &usecase.AdvanceResult{NoOp: true}, nil
	}

	return s.Advance(ctx, providerID, target.ID)
}

// Reset clears a business's queue completely: every appointment goes,
// history included, and both counters return to zero so the next booking
// gets queue number one.
func (s *queueService) Reset(ctx context.Context, providerID, businessID string) (*usecase.ResetResult, error) {
	business, err := s.loadOwnedBusiness(ctx, providerID, businessID)
	if err != nil {
		return nil, err
	}

	appointments, err := s.appointmentRepo.FindAppointmentsByBusiness(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load appointments")
	}

	var deleted, failed int
	var firstErr error
	for _, a := range appointments {
		err := s.appointmentRepo.DeleteAppointment(ctx, a.ID)
		// A concurrently vanished appointment is as good as deleted.
		if err != nil && !errors.Is(err, repository.ErrAppointmentNotFound) {
			failed++
			if firstErr == nil {
				firstErr = err
			}

			continue
		}
		deleted++
	}

	if err := s.businessRepo.ResetCounters(ctx, businessID); err != nil {
		failed++
		if firstErr == nil {
			firstErr = err
		}
	}

	if failed > 0 {
		return nil, domainerrors.NewPartialFailureError("queue reset", deleted, failed, firstErr)
	}

	s.publishEvent(ctx, &service.QueueEvent{
		EventID:      uuid.New().String(),
		Type:         service.EventQueueReset,
		BusinessID:   businessID,
		BusinessName: business.Name,
		OccurredAt:   time.Now(),
	})

	return &usecase.ResetResult{BusinessID: businessID, Deleted: deleted}, nil
}

// GetQueue returns the live queue of a business for dashboards.
func (s *queueService) GetQueue(ctx context.Context, businessID string) (*usecase.QueueSnapshot, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business")
	}

	active, err := s.appointmentRepo.FindActiveByBusiness(ctx, businessID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load active appointments")
	}

	return buildSnapshot(business, active), nil
}

// WatchQueue pushes a fresh snapshot to fn after every change to the
// business's active appointments.
func (s *queueService) WatchQueue(ctx context.Context, businessID string, fn func(*usecase.QueueSnapshot)) (repository.Unsubscribe, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business")
	}

	// Repositories deliver each subscription's callbacks serially, but the
	// goroutine changes between deliveries; the last-known business document
	// is shared state and needs the lock.
	var mu sync.Mutex
	last := business

	return s.appointmentRepo.WatchActiveByBusinesses(ctx, []string{businessID}, func(active []*entity.Appointment) {
		mu.Lock()
		defer mu.Unlock()

		// Re-read the business so the snapshot carries the fresh current
		// token; fall back to the last known document when the read fails.
		if fresh, err := s.businessRepo.FindBusinessByID(ctx, businessID); err == nil {
			last = fresh
		}
		fn(buildSnapshot(last, active))
	})
}

// loadOwnedBusiness fetches the business and verifies the provider owns it.
func (s *queueService) loadOwnedBusiness(ctx context.Context, providerID, businessID string) (*entity.Business, error) {
	business, err := s.businessRepo.FindBusinessByID(ctx, businessID)
	if err != nil {
		if errors.Is(err, repository.ErrBusinessNotFound) {
			return nil, domainerrors.ErrBusinessNotFound
		}

		return nil, errors.Wrap(err, "failed to find business")
	}
	if business.ProviderID != providerID {
		return nil, domainerrors.ErrNotBusinessOwner
	}

	return business, nil
}

func (s *queueService) publishEvent(ctx context.Context, event *service.QueueEvent) {
	if err := s.publisher.PublishQueueEvent(ctx, event); err != nil {
		s.logger.Warn("failed to publish queue event",
			slog.String("type", event.Type),
			slog.String("business_id", event.BusinessID),
			slog.Any("error", err),
		)
	}
}

// flaggedCurrent returns the first appointment flagged CURRENT in queue
// order, or nil when no marker is set.
func flaggedCurrent(active []*entity.Appointment) *entity.Appointment {
	for _, a := range active {
		if a.Status == entity.StatusCurrent {
			return a
		}
	}

	return nil
}

// pickNext returns the first appointment ordered strictly after current, or
// nil when serving current drains the queue.
func pickNext(active []*entity.Appointment, current *entity.Appointment) *entity.Appointment {
	for _, a := range active {
		if a.ID == current.ID {
			continue
		}
		if entity.CompareByQueueNumber(current, a) < 0 {
			return a
		}
	}

	return nil
}

func buildSnapshot(business *entity.Business, active []*entity.Appointment) *usecase.QueueSnapshot {
	snapshot := &usecase.QueueSnapshot{
		BusinessID:   business.ID,
		BusinessName: business.Name,
		CurrentToken: business.CurrentToken,
		Waiting:      make([]*entity.Appointment, 0, len(active)),
	}
	for _, a := range active {
		if a.Status == entity.StatusCurrent && snapshot.Serving == nil {
			snapshot.Serving = a

			continue
		}
		snapshot.Waiting = append(snapshot.Waiting, a)
	}
	snapshot.WaitingCount = len(snapshot.Waiting)
	snapshot.EstimatedWaitMinutes = max(5, 2*snapshot.WaitingCount)

	return snapshot
}
