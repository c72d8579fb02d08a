package firestoredb

import (
	"context"
	"slices"
	"strings"
	"sync"

	"lineless/internal/domain/entity"
	"lineless/internal/domain/repository"
	"lineless/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

// Firestore caps 'in' filters at ten values, so multi-business watches are
// split into chunks and the chunk results merged client-side.
const watchChunkSize = 10

type appointmentRepository struct {
	client *firestore.Client
}

// NewAppointmentRepository is the constructor for appointmentRepository.
func NewAppointmentRepository(client *firestore.Client) repository.AppointmentRepository {
	return &appointmentRepository{client: client}
}

func (repo *appointmentRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(model.CollectionAppointments)
}

// CreateAppointment persists a new appointment and returns the assigned
// document ID.
func (repo *appointmentRepository) CreateAppointment(ctx context.Context, appointment *entity.Appointment) (string, error) {
	appointment.Status = entity.NormalizeStatus(string(appointment.Status))

	ref := repo.collection().NewDoc()
	if _, err := ref.Set(ctx, model.NewAppointmentDoc(appointment)); err != nil {
		if mapped := mapStoreError(err, repository.ErrStoreUnavailable); mapped != err {
			return "", mapped
		}

		return "", errors.Wrap(err, "failed to create appointment document")
	}
	appointment.ID = ref.ID

	return ref.ID, nil
}

// FindAppointmentByID retrieves a single appointment.
func (repo *appointmentRepository) FindAppointmentByID(ctx context.Context, id string) (*entity.Appointment, error) {
	snap, err := repo.collection().Doc(id).Get(ctx)
	if err != nil {
		if mapped := mapStoreError(err, repository.ErrAppointmentNotFound); mapped != err {
			return nil, mapped
		}

		return nil, errors.Wrap(err, "failed to get appointment document")
	}

	return decodeAppointment(snap)
}

// FindAppointmentsByBusiness retrieves every appointment of a business,
// ordered by queue number.
func (repo *appointmentRepository) FindAppointmentsByBusiness(ctx context.Context, businessID string) ([]*entity.Appointment, error) {
	return repo.query(ctx, repo.collection().Where("businessId", "==", businessID), nil)
}

// FindActiveByBusiness retrieves the non-served appointments of a business.
// Served-ness is decided after status normalization, so the filter runs
// client-side rather than in the query.
func (repo *appointmentRepository) FindActiveByBusiness(ctx context.Context, businessID string) ([]*entity.Appointment, error) {
	return repo.query(ctx, repo.collection().Where("businessId", "==", businessID), func(a *entity.Appointment) bool {
		return a.Status.Active()
	})
}

// FindAppointmentsByClient retrieves every appointment booked by a client.
func (repo *appointmentRepository) FindAppointmentsByClient(ctx context.Context, clientUserID string) ([]*entity.Appointment, error) {
	return repo.query(ctx, repo.collection().Where("userId", "==", clientUserID), nil)
}

// UpdateAppointmentStatus sets the status of a single appointment.
func (repo *appointmentRepository) UpdateAppointmentStatus(ctx context.Context, id string, status entity.AppointmentStatus) error {
	_, err := repo.collection().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(status)},
	})
	if err != nil {
		if mapped := mapStoreError(err, repository.ErrAppointmentNotFound); mapped != err {
			return mapped
		}

		return errors.Wrap(err, "failed to update appointment status")
	}

	return nil
}

// DeleteAppointment removes a single appointment.
func (repo *appointmentRepository) DeleteAppointment(ctx context.Context, id string) error {
	ref := repo.collection().Doc(id)

	if _, err := ref.Get(ctx); err != nil {
		if mapped := mapStoreError(err, repository.ErrAppointmentNotFound); mapped != err {
			return mapped
		}

		return errors.Wrap(err, "failed to get appointment document")
	}

	if _, err := ref.Delete(ctx); err != nil {
		if mapped := mapStoreError(err, repository.ErrAppointmentNotFound); mapped != err {
			return mapped
		}

		return errors.Wrap(err, "failed to delete appointment document")
	}

	return nil
}

// WatchActiveByBusinesses registers snapshot listeners over the active
// appointments of the given businesses. The callback receives the full
// merged set after every change; with more than ten businesses the listeners
// run per chunk and a chunk update re-emits the whole merged set.
func (repo *appointmentRepository) WatchActiveByBusinesses(ctx context.Context, businessIDs []string, fn func([]*entity.Appointment)) (repository.Unsubscribe, error) {
	if len(businessIDs) == 0 {
		return nil, errors.New("at least one business ID is required")
	}

	watchCtx, cancel := context.WithCancel(ctx)

	var mu sync.Mutex
	parts := make(map[int][]*entity.Appointment)

	// fn runs inside the lock so chunk goroutines never invoke it
	// concurrently and a newer merged set is never followed by an older one.
	emit := func(chunkIndex int, list []*entity.Appointment) {
		mu.Lock()
		defer mu.Unlock()

		parts[chunkIndex] = list
		merged := make([]*entity.Appointment, 0)
		for _, part := range parts {
			merged = append(merged, part...)
		}
		slices.SortFunc(merged, entity.CompareByQueueNumber)
		fn(merged)
	}

	for index, chunk := range chunkStrings(businessIDs, watchChunkSize) {
		go repo.watchChunk(watchCtx, index, chunk, emit)
	}

	var once sync.Once
	unsubscribe := func() {
		once.Do(cancel)
	}

	return unsubscribe, nil
}

func (repo *appointmentRepository) watchChunk(ctx context.Context, index int, businessIDs []string, emit func(int, []*entity.Appointment)) {
	values := make([]any, 0, len(businessIDs))
	for _, id := range businessIDs {
		values = append(values, id)
	}

	it := repo.collection().Where("businessId", "in", values).Snapshots(ctx)
	defer it.Stop()

	for {
		snap, err := it.Next()
		if err != nil {
			// Canceled on unsubscribe, or the stream hit a terminal error.
			return
		}

		list := make([]*entity.Appointment, 0)
		docs := snap.Documents
		for {
			docSnap, err := docs.Next()
			if errors.Is(err, iterator.Done) {
				break
			}
			if err != nil {
				return
			}
			appointment, err := decodeAppointment(docSnap)
			if err != nil {
				continue
			}
			if appointment.Status.Active() {
				list = append(list, appointment)
			}
		}

		emit(index, list)
	}
}

func (repo *appointmentRepository) query(ctx context.Context, q firestore.Query, match func(*entity.Appointment) bool) ([]*entity.Appointment, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	out := make([]*entity.Appointment, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			if mapped := mapStoreError(err, repository.ErrStoreUnavailable); mapped != err {
				return nil, mapped
			}

			return nil, errors.Wrap(err, "failed to iterate appointment documents")
		}

		appointment, err := decodeAppointment(snap)
		if err != nil {
			return nil, err
		}
		if match == nil || match(appointment) {
			out = append(out, appointment)
		}
	}
	slices.SortFunc(out, entity.CompareByQueueNumber)

	return out, nil
}

func decodeAppointment(snap *firestore.DocumentSnapshot) (*entity.Appointment, error) {
	var doc model.AppointmentDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode appointment document %s", snap.Ref.ID)
	}

	return doc.ToEntity(snap.Ref.ID), nil
}

func sortBusinesses(list []*entity.Business) {
	slices.SortFunc(list, func(a, b *entity.Business) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}

		return strings.Compare(a.ID, b.ID)
	})
}

func chunkStrings(values []string, size int) [][]string {
	chunks := make([][]string, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		chunks = append(chunks, values[start:end])
	}

	return chunks
}
