package memory

import (
	"context"
	"sync"
	"time"

	"lineless/internal/domain/entity"
	"lineless/internal/domain/repository"

	"github.com/google/uuid"
)

// appointmentRepository implements repository.AppointmentRepository on the
// in-memory store.
type appointmentRepository struct {
	store *Store
}

// NewAppointmentRepository is the constructor for appointmentRepository.
func NewAppointmentRepository(store *Store) repository.AppointmentRepository {
	return &appointmentRepository{store: store}
}

// CreateAppointment persists a new appointment and returns the assigned ID.
func (repo *appointmentRepository) CreateAppointment(ctx context.Context, appointment *entity.Appointment) (string, error) {
	repo.store.mu.Lock()

	stored := cloneAppointment(appointment)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.BookedAt.IsZero() {
		stored.BookedAt = time.Now()
	}
	stored.Status = entity.NormalizeStatus(string(stored.Status))
	repo.store.appointments[stored.ID] = stored
	appointment.ID = stored.ID
	appointment.BookedAt = stored.BookedAt
	repo.store.mu.Unlock()

	repo.store.notifyAppointmentWatchers(stored.BusinessID)

	return stored.ID, nil
}

// FindAppointmentByID retrieves a single appointment.
func (repo *appointmentRepository) FindAppointmentByID(ctx context.Context, id string) (*entity.Appointment, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	a, ok := repo.store.appointments[id]
	if !ok {
		return nil, repository.ErrAppointmentNotFound
	}

	return cloneAppointment(a), nil
}

// FindAppointmentsByBusiness retrieves every appointment of a business.
func (repo *appointmentRepository) FindAppointmentsByBusiness(ctx context.Context, businessID string) ([]*entity.Appointment, error) {
	return repo.collect(func(a *entity.Appointment) bool {
		return a.BusinessID == businessID
	}), nil
}

// FindActiveByBusiness retrieves the non-served appointments of a business.
func (repo *appointmentRepository) FindActiveByBusiness(ctx context.Context, businessID string) ([]*entity.Appointment, error) {
	return repo.collect(func(a *entity.Appointment) bool {
		return a.BusinessID == businessID && a.Status.Active()
	}), nil
}

// FindAppointmentsByClient retrieves every appointment booked by a client.
func (repo *appointmentRepository) FindAppointmentsByClient(ctx context.Context, clientUserID string) ([]*entity.Appointment, error) {
	return repo.collect(func(a *entity.Appointment) bool {
		return a.ClientUserID == clientUserID
	}), nil
}

// UpdateAppointmentStatus sets the status of a single appointment.
func (repo *appointmentRepository) UpdateAppointmentStatus(ctx context.Context, id string, status entity.AppointmentStatus) error {
	repo.store.mu.Lock()
	a, ok := repo.store.appointments[id]
	if !ok {
		repo.store.mu.Unlock()

		return repository.ErrAppointmentNotFound
	}
	a.Status = status
	businessID := a.BusinessID
	repo.store.mu.Unlock()

	repo.store.notifyAppointmentWatchers(businessID)

	return nil
}

// DeleteAppointment removes a single appointment.
func (repo *appointmentRepository) DeleteAppointment(ctx context.Context, id string) error {
	repo.store.mu.Lock()
	a, ok := repo.store.appointments[id]
	if !ok {
		repo.store.mu.Unlock()

		return repository.ErrAppointmentNotFound
	}
	businessID := a.BusinessID
	delete(repo.store.appointments, id)
	repo.store.mu.Unlock()

	repo.store.notifyAppointmentWatchers(businessID)

	return nil
}

// WatchActiveByBusinesses registers a live watch over the active appointments
// of the given businesses. The callback receives the full merged set once
// immediately and again after every change.
func (repo *appointmentRepository) WatchActiveByBusinesses(ctx context.Context, businessIDs []string, fn func([]*entity.Appointment)) (repository.Unsubscribe, error) {
	id, w := repo.store.addWatcher(businessIDs, fn)

	// Initial snapshot, delivered off this goroutine like every other
	// notification.
	go repo.store.deliver(w)

	var once sync.Once
	unsubscribe := func() {
		once.Do(func() {
			repo.store.removeWatcher(id)
		})
	}

	return unsubscribe, nil
}

func (repo *appointmentRepository) collect(match func(*entity.Appointment) bool) []*entity.Appointment {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	out := make([]*entity.Appointment, 0)
	for _, a := range repo.store.appointments {
		if match(a) {
			out = append(out, cloneAppointment(a))
		}
	}
	sortAppointments(out)

	return out
}
