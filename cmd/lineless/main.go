package main

import (
	"context"
	"log/slog"
	"os"

	"lineless/config"
	"lineless/internal/delivery"
	"lineless/internal/delivery/http"
	"lineless/internal/delivery/http/middleware"
	"lineless/internal/delivery/http/router/handler"
	"lineless/internal/domain/service"
	"lineless/internal/infra/auth"
	logs "lineless/internal/infra/log"
	"lineless/internal/infra/notification"
	"lineless/internal/infra/persistence"
	"lineless/internal/infra/pubsub"
	"lineless/internal/infra/qrcode"
	"lineless/internal/usecase/impl"

	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectRepo(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Provide(
		config.New,
		logs.New,
		context.Background,
	)
}

func injectRepo() fx.Option {
	return persistence.Module
}

func injectService() fx.Option {
	return fx.Options(
		pubsub.Module,
		fx.Provide(
			newTokenVerifier,
			notification.NewNotificationService,
			newQRCodeService,
		),
	)
}

// newTokenVerifier creates the Firebase ID token verifier with dependency injection
func newTokenVerifier(ctx context.Context, cfg *config.Config) (service.TokenVerifier, error) {
	return auth.NewFirebaseVerifier(ctx, cfg.Firebase)
}

// newQRCodeService creates a QR code service with dependency injection
func newQRCodeService(cfg *config.Config) service.QRCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M", "")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel, cfg.QRCode.BaseURL)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewBookingService,
			impl.NewQueueService,
			impl.NewBusinessService,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
			middleware.NewErrorMiddleware,
			middleware.NewLoggerMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewBusinessHandler,
			handler.NewBookingHandler,
			handler.NewQueueHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
