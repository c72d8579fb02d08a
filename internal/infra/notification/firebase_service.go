// Package notification delivers turn notifications to clients over Firebase
// Cloud Messaging.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"lineless/config"
	"lineless/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/fx"
	"google.golang.org/api/option"
)

const defaultTopicPrefix = "client-"

type firebaseService struct {
	client      *messaging.Client
	topicPrefix string
}

// NotificationServiceParams holds dependencies for NotificationService,
// injected by Fx.
type NotificationServiceParams struct {
	fx.In

	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewNotificationService creates the turn notification service. When push is
// disabled or Firebase is not configured it falls back to a logging no-op so
// queue advancement keeps working in local development.
func NewNotificationService(params NotificationServiceParams) (service.NotificationService, error) {
	cfg := params.Config

	if cfg.Notification == nil || !cfg.Notification.Enabled || cfg.Firebase == nil {
		params.Logger.Info("Push notifications disabled, using no-op notifier")

		return &noopNotifier{logger: params.Logger}, nil
	}

	prefix := cfg.Notification.TopicPrefix
	if prefix == "" {
		prefix = defaultTopicPrefix
	}

	return NewFirebaseService(params.Ctx, cfg.Firebase.CredentialsPath, prefix)
}

// NewFirebaseService creates a new Firebase notification service instance
func NewFirebaseService(ctx context.Context, credentialsPath, topicPrefix string) (service.NotificationService, error) {
	opt := option.WithCredentialsFile(credentialsPath)
	app, err := firebase.NewApp(ctx, nil, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get messaging client: %w", err)
	}

	return &firebaseService{
		client:      client,
		topicPrefix: topicPrefix,
	}, nil
}

// NotifyTurn pushes a "your turn" message to the client's personal topic.
// Each app installation subscribes to the topic for its signed-in user, so no
// device token registry is needed server-side.
func (s *firebaseService) NotifyTurn(ctx context.Context, clientUserID, businessName string, queueNumber int64) error {
	message := &messaging.Message{
		Topic: s.topicPrefix + clientUserID,
		Notification: &messaging.Notification{
			Title: "It's your turn!",
			Body:  fmt.Sprintf("Queue number %d is now being served at %s.", queueNumber, businessName),
		},
		Data: map[string]string{
			"business_name": businessName,
			"queue_number":  strconv.FormatInt(queueNumber, 10),
		},
	}

	if _, err := s.client.Send(ctx, message); err != nil {
		return fmt.Errorf("failed to send notification: %w", err)
	}

	return nil
}

// noopNotifier logs instead of pushing, for environments without Firebase.
type noopNotifier struct {
	logger *slog.Logger
}

func (n *noopNotifier) NotifyTurn(ctx context.Context, clientUserID, businessName string, queueNumber int64) error {
	n.logger.Debug("[NoopNotifier] Skipping turn notification",
		slog.String("client_user_id", clientUserID),
		slog.String("business_name", businessName),
		slog.Int64("queue_number", queueNumber),
	)

	return nil
}
