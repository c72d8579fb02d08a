// Package persistence selects the configured store backend and provides the
// repositories to the Fx graph.
package persistence

import (
	"context"
	"log/slog"

	"lineless/config"
	"lineless/internal/domain/constants"
	"lineless/internal/domain/repository"
	"lineless/internal/infra/persistence/firestoredb"
	"lineless/internal/infra/persistence/memory"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// RepositoryParams holds dependencies for the repositories, injected by Fx
type RepositoryParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// RepositoryResult bundles the repositories the store backend provides
type RepositoryResult struct {
	fx.Out

	BusinessRepo    repository.BusinessRepository
	AppointmentRepo repository.AppointmentRepository
}

// NewRepositories creates the repositories for the configured store backend.
// Without configuration it falls back to the in-memory store, which keeps
// local development free of cloud credentials.
func NewRepositories(params RepositoryParams) (RepositoryResult, error) {
	provider := constants.StoreProviderMemory
	if params.Config.Store != nil && params.Config.Store.Provider != "" {
		provider = params.Config.Store.Provider
	}

	switch provider {
	case constants.StoreProviderMemory:
		params.Logger.Info("Using in-memory store")
		store := memory.NewStore()

		return RepositoryResult{
			BusinessRepo:    memory.NewBusinessRepository(store),
			AppointmentRepo: memory.NewAppointmentRepository(store),
		}, nil

	case constants.StoreProviderFirestore:
		client, err := firestoredb.NewClient(params.Ctx, params.Config.Firebase)
		if err != nil {
			return RepositoryResult{}, err
		}
		params.Logger.Info("Using Firestore store",
			slog.String("project_id", params.Config.Firebase.ProjectID),
		)

		params.Lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				params.Logger.Info("Closing Firestore client")

				return client.Close()
			},
		})

		return RepositoryResult{
			BusinessRepo:    firestoredb.NewBusinessRepository(client),
			AppointmentRepo: firestoredb.NewAppointmentRepository(client),
		}, nil

	default:
		return RepositoryResult{}, errors.Errorf("unknown store provider: %s", provider)
	}
}

// Module provides the persistence FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewRepositories),
)
