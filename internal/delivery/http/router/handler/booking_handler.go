package handler

import (
	"log/slog"
	"net/http"

	"lineless/internal/delivery/http/middleware"
	"lineless/internal/delivery/http/response"
	"lineless/internal/domain/service"
	"lineless/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

// BookingHandlerParams holds dependencies for BookingHandler, injected by Fx.
type BookingHandlerParams struct {
	fx.In

	BookingUC     usecase.BookingUsecase
	QRCodeService service.QRCodeService
	Logger        *slog.Logger
}

// BookingHandler holds dependencies for booking-related handlers
type BookingHandler struct {
	bookingUC     usecase.BookingUsecase
	qrcodeService service.QRCodeService
	logger        *slog.Logger
}

// NewBookingHandler is the constructor for BookingHandler
func NewBookingHandler(params BookingHandlerParams) *BookingHandler {
	return &BookingHandler{
		bookingUC:     params.BookingUC,
		qrcodeService: params.QRCodeService,
		logger:        params.Logger,
	}
}

// BookRequest represents the request body for taking a queue number
type BookRequest struct {
	BusinessID string `json:"business_id" validate:"required"`
	// ClientName overrides the display name from the token, e.g. when
	// booking for someone else at the counter.
	ClientName string `json:"client_name,omitempty" validate:"max=120"`
}

// BookFromQRRequest represents the request body for booking via a scanned QR
// code
type BookFromQRRequest struct {
	QRData     string `json:"qr_data" validate:"required"`
	ClientName string `json:"client_name,omitempty" validate:"max=120"`
}

// Book handles taking the next queue number at a business
func (h *BookingHandler) Book(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req BookRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid booking input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	appointment, err := h.bookingUC.Book(c.Request().Context(), h.client(c, userID, req.ClientName), req.BusinessID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, appointment, "Queue number booked successfully")
}

// BookFromQR handles booking by scanning the QR code posted at a business
func (h *BookingHandler) BookFromQR(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req BookFromQRRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid QR booking input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	businessID, err := h.qrcodeService.ParseBookingQR(req.QRData)
	if err != nil {
		return response.BadRequest(c, "INVALID_QR_CODE", "Invalid booking QR code")
	}

	appointment, err := h.bookingUC.Book(c.Request().Context(), h.client(c, userID, req.ClientName), businessID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, appointment, "Queue number booked successfully")
}

// MyAppointments handles retrieving the calling client's appointments
func (h *BookingHandler) MyAppointments(c echo.Context) error {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	view, err := h.bookingUC.ListForClient(c.Request().Context(), userID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, view, "Appointments retrieved successfully")
}

func (h *BookingHandler) client(c echo.Context, userID, nameOverride string) usecase.Client {
	name := nameOverride
	if name == "" {
		name = middleware.GetUserName(c)
	}

	return usecase.Client{UserID: userID, Name: name}
}
