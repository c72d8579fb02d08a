package memory

import (
	"context"
	"time"

	"lineless/internal/domain/entity"
	"lineless/internal/domain/repository"

	"github.com/google/uuid"
)

// businessRepository implements repository.BusinessRepository on the
// in-memory store.
type businessRepository struct {
	store *Store
}

// NewBusinessRepository is the constructor for businessRepository.
func NewBusinessRepository(store *Store) repository.BusinessRepository {
	return &businessRepository{store: store}
}

// CreateBusiness persists a new business and returns the assigned ID.
func (repo *businessRepository) CreateBusiness(ctx context.Context, business *entity.Business) (string, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	stored := cloneBusiness(business)
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now()
	}
	repo.store.businesses[stored.ID] = stored
	business.ID = stored.ID
	business.CreatedAt = stored.CreatedAt

	return stored.ID, nil
}

// FindBusinessByID retrieves a business by its document ID.
func (repo *businessRepository) FindBusinessByID(ctx context.Context, id string) (*entity.Business, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	b, ok := repo.store.businesses[id]
	if !ok {
		return nil, repository.ErrBusinessNotFound
	}

	return cloneBusiness(b), nil
}

// ListBusinesses retrieves every registered business.
func (repo *businessRepository) ListBusinesses(ctx context.Context) ([]*entity.Business, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	out := make([]*entity.Business, 0, len(repo.store.businesses))
	for _, b := range repo.store.businesses {
		out = append(out, cloneBusiness(b))
	}
	sortBusinesses(out)

	return out, nil
}

// FindBusinessesByProvider retrieves all businesses owned by a provider.
func (repo *businessRepository) FindBusinessesByProvider(ctx context.Context, providerID string) ([]*entity.Business, error) {
	repo.store.mu.RLock()
	defer repo.store.mu.RUnlock()

	out := make([]*entity.Business, 0)
	for _, b := range repo.store.businesses {
		if b.ProviderID == providerID {
			out = append(out, cloneBusiness(b))
		}
	}
	sortBusinesses(out)

	return out, nil
}

// NextQueueNumber atomically increments the issued-token counter and returns
// the new value.
func (repo *businessRepository) NextQueueNumber(ctx context.Context, id string) (int64, error) {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	b, ok := repo.store.businesses[id]
	if !ok {
		return 0, repository.ErrBusinessNotFound
	}
	b.TokensIssued++

	return b.TokensIssued, nil
}

// SetCurrentToken records the queue number currently being served.
func (repo *businessRepository) SetCurrentToken(ctx context.Context, id string, token int64) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	b, ok := repo.store.businesses[id]
	if !ok {
		return repository.ErrBusinessNotFound
	}
	b.CurrentToken = token

	return nil
}

// ResetCounters zeroes both queue counters.
func (repo *businessRepository) ResetCounters(ctx context.Context, id string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	b, ok := repo.store.businesses[id]
	if !ok {
		return repository.ErrBusinessNotFound
	}
	b.TokensIssued = 0
	b.CurrentToken = 0

	return nil
}

// DeleteBusiness removes the business document.
func (repo *businessRepository) DeleteBusiness(ctx context.Context, id string) error {
	repo.store.mu.Lock()
	defer repo.store.mu.Unlock()

	if _, ok := repo.store.businesses[id]; !ok {
		return repository.ErrBusinessNotFound
	}
	delete(repo.store.businesses, id)

	return nil
}
