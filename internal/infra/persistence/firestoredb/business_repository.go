package firestoredb

import (
	"context"
	"time"

	"lineless/internal/domain/entity"
	"lineless/internal/domain/repository"
	"lineless/internal/infra/persistence/model"

	"cloud.google.com/go/firestore"
	"github.com/pkg/errors"
	"google.golang.org/api/iterator"
)

type businessRepository struct {
	client *firestore.Client
}

// NewBusinessRepository is the constructor for businessRepository.
func NewBusinessRepository(client *firestore.Client) repository.BusinessRepository {
	return &businessRepository{client: client}
}

func (repo *businessRepository) collection() *firestore.CollectionRef {
	return repo.client.Collection(model.CollectionBusinesses)
}

// CreateBusiness persists a new business and returns the assigned document ID.
func (repo *businessRepository) CreateBusiness(ctx context.Context, business *entity.Business) (string, error) {
	ref := repo.collection().NewDoc()

	doc := model.NewBusinessDoc(business)
	if doc.CreatedAt == nil {
		now := time.Now()
		doc.CreatedAt = &now
		business.CreatedAt = now
	}

	if _, err := ref.Set(ctx, doc); err != nil {
		if mapped := mapStoreError(err, repository.ErrStoreUnavailable); mapped != err {
			return "", mapped
		}

		return "", errors.Wrap(err, "failed to create business document")
	}
	business.ID = ref.ID

	return ref.ID, nil
}

// FindBusinessByID retrieves a business by its document ID.
func (repo *businessRepository) FindBusinessByID(ctx context.Context, id string) (*entity.Business, error) {
	snap, err := repo.collection().Doc(id).Get(ctx)
	if err != nil {
		if mapped := mapStoreError(err, repository.ErrBusinessNotFound); mapped != err {
			return nil, mapped
		}

		return nil, errors.Wrap(err, "failed to get business document")
	}

	return decodeBusiness(snap)
}

// ListBusinesses retrieves every registered business, ordered by name.
func (repo *businessRepository) ListBusinesses(ctx context.Context) ([]*entity.Business, error) {
	return repo.query(ctx, repo.collection().Query)
}

// FindBusinessesByProvider retrieves all businesses owned by a provider.
func (repo *businessRepository) FindBusinessesByProvider(ctx context.Context, providerID string) ([]*entity.Business, error) {
	return repo.query(ctx, repo.collection().Where("providerId", "==", providerID))
}

// NextQueueNumber atomically increments the issued-token counter and returns
// the new value. The read and write run in one transaction, so concurrent
// bookings each see their own value.
func (repo *businessRepository) NextQueueNumber(ctx context.Context, id string) (int64, error) {
	ref := repo.collection().Doc(id)

	var next int64
	err := repo.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		if err != nil {
			return err
		}

		// Legacy documents may carry the counter as a string.
		raw, err := snap.DataAt("count")
		if err != nil {
			raw = nil
		}
		next = entity.ParseQueueNumber(raw) + 1

		return tx.Update(ref, []firestore.Update{
			{Path: "count", Value: next},
		})
	})
	if err != nil {
		if mapped := mapStoreError(err, repository.ErrBusinessNotFound); mapped != err {
			return 0, mapped
		}

		return 0, errors.Wrap(err, "failed to increment queue counter")
	}

	return next, nil
}

// SetCurrentToken records the queue number currently being served.
func (repo *businessRepository) SetCurrentToken(ctx context.Context, id string, token int64) error {
	return repo.update(ctx, id, []firestore.Update{
		{Path: "currentToken", Value: token},
	})
}

// ResetCounters zeroes both queue counters.
func (repo *businessRepository) ResetCounters(ctx context.Context, id string) error {
	return repo.update(ctx, id, []firestore.Update{
		{Path: "count", Value: int64(0)},
		{Path: "currentToken", Value: int64(0)},
	})
}

// DeleteBusiness removes the business document.
func (repo *businessRepository) DeleteBusiness(ctx context.Context, id string) error {
	ref := repo.collection().Doc(id)

	if _, err := ref.Get(ctx); err != nil {
		if mapped := mapStoreError(err, repository.ErrBusinessNotFound); mapped != err {
			return mapped
		}

		return errors.Wrap(err, "failed to get business document")
	}

	if _, err := ref.Delete(ctx); err != nil {
		if mapped := mapStoreError(err, repository.ErrBusinessNotFound); mapped != err {
			return mapped
		}

		return errors.Wrap(err, "failed to delete business document")
	}

	return nil
}

func (repo *businessRepository) update(ctx context.Context, id string, updates []firestore.Update) error {
	if _, err := repo.collection().Doc(id).Update(ctx, updates); err != nil {
		if mapped := mapStoreError(err, repository.ErrBusinessNotFound); mapped != err {
			return mapped
		}

		return errors.Wrap(err, "failed to update business document")
	}

	return nil
}

func (repo *businessRepository) query(ctx context.Context, q firestore.Query) ([]*entity.Business, error) {
	it := q.Documents(ctx)
	defer it.Stop()

	out := make([]*entity.Business, 0)
	for {
		snap, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			if mapped := mapStoreError(err, repository.ErrStoreUnavailable); mapped != err {
				return nil, mapped
			}

			return nil, errors.Wrap(err, "failed to iterate business documents")
		}

		business, err := decodeBusiness(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, business)
	}
	sortBusinesses(out)

	return out, nil
}

func decodeBusiness(snap *firestore.DocumentSnapshot) (*entity.Business, error) {
	var doc model.BusinessDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, errors.Wrapf(err, "failed to decode business document %s", snap.Ref.ID)
	}

	return doc.ToEntity(snap.Ref.ID), nil
}
