package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"lineless/internal/delivery/http/middleware"
	"lineless/internal/delivery/http/response"
	"lineless/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// QueueHandlerParams holds dependencies for QueueHandler, injected by Fx.
type QueueHandlerParams struct {
	fx.In

	QueueUC usecase.QueueUsecase
	Logger  *slog.Logger
}

// QueueHandler holds dependencies for queue management handlers
type QueueHandler struct {
	queueUC usecase.QueueUsecase
	logger  *slog.Logger
}

// NewQueueHandler is the constructor for QueueHandler
func NewQueueHandler(params QueueHandlerParams) *QueueHandler {
	return &QueueHandler{
		queueUC: params.QueueUC,
		logger:  params.Logger,
	}
}

// Get handles retrieving the live queue of a business
func (h *QueueHandler) Get(c echo.Context) error {
	snapshot, err := h.queueUC.GetQueue(c.Request().Context(), c.Param("businessId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, snapshot, "Queue retrieved successfully")
}

// Advance handles completing the current appointment and promoting the next
func (h *QueueHandler) Advance(c echo.Context) error {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	result, err := h.queueUC.Advance(c.Request().Context(), providerID, c.Param("businessId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Queue advanced successfully")
}

// AdvanceNext handles advancing without naming a business; the busiest of
// the provider's queues is chosen
func (h *QueueHandler) AdvanceNext(c echo.Context) error {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	result, err := h.queueUC.AdvanceNext(c.Request().Context(), providerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Queue advanced successfully")
}

// Reset handles clearing a business's queue and counters
func (h *QueueHandler) Reset(c echo.Context) error {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	result, err := h.queueUC.Reset(c.Request().Context(), providerID, c.Param("businessId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, result, "Queue reset successfully")
}

// Stream pushes queue snapshots over Server-Sent Events so dashboards update
// without polling.
func (h *QueueHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()

	// Buffered; a slow client gets the latest snapshot on its next read
	// rather than blocking the watcher.
	snapshots := make(chan *usecase.QueueSnapshot, 8)
	unsubscribe, err := h.queueUC.WatchQueue(ctx, c.Param("businessId"), func(s *usecase.QueueSnapshot) {
		select {
		case snapshots <- s:
		default:
		}
	})
	if err != nil {
		return response.HandleAppError(c, err)
	}
	defer unsubscribe()

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set("Cache-Control", "no-cache")
	resp.Header().Set("Connection", "keep-alive")
	resp.WriteHeader(http.StatusOK)
	resp.Flush()

	for {
		select {
		case <-ctx.Done():
			return nil
		case snapshot := <-snapshots:
			data, err := json.Marshal(snapshot)
			if err != nil {
				h.logger.Warn("failed to encode queue snapshot", slog.Any("error", err))

				continue
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", data); err != nil {
				return nil
			}
			resp.Flush()
		}
	}
}
