// Package firestoredb implements the persistence layer on Cloud Firestore,
// the store the queue data already lives in. Documents are read through the
// structs in persistence/model, which absorb the legacy field encodings.
package firestoredb

import (
	"context"

	"lineless/config"
	"lineless/internal/domain/repository"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// NewClient creates the Firestore client from the Firebase project
// configuration. With FIRESTORE_EMULATOR_HOST set the SDK talks to the
// emulator and the credentials file is not required.
func NewClient(ctx context.Context, cfg *config.FirebaseConfig) (*firestore.Client, error) {
	if cfg == nil || cfg.ProjectID == "" {
		return nil, errors.New("firebase project ID is required for the firestore store")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create Firestore client")
	}

	return client, nil
}

// mapStoreError translates gRPC status codes into the repository sentinels.
// Unknown errors pass through for the caller to wrap.
func mapStoreError(err error, notFound error) error {
	if err == nil {
		return nil
	}

	switch status.Code(errors.Cause(err)) {
	case codes.NotFound:
		return notFound
	case codes.Unavailable, codes.DeadlineExceeded, codes.ResourceExhausted:
		return repository.ErrStoreUnavailable
	}

	return err
}
