package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"lineless/internal/delivery/http/middleware"
	"lineless/internal/delivery/http/response"
	"lineless/internal/usecase"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

const defaultNearbyRadiusKm = 5.0

// BusinessHandlerParams holds dependencies for BusinessHandler, injected by Fx.
type BusinessHandlerParams struct {
	fx.In

	BusinessUC usecase.BusinessUsecase
	Logger     *slog.Logger
}

// BusinessHandler holds dependencies for business-related handlers
type BusinessHandler struct {
	businessUC usecase.BusinessUsecase
	logger     *slog.Logger
}

// NewBusinessHandler is the constructor for BusinessHandler
func NewBusinessHandler(params BusinessHandlerParams) *BusinessHandler {
	return &BusinessHandler{
		businessUC: params.BusinessUC,
		logger:     params.Logger,
	}
}

// Register handles listing a new business for the calling provider
func (h *BusinessHandler) Register(c echo.Context) error {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	var req usecase.RegisterBusinessInput
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid business input")
	}

	if err := c.Validate(&req); err != nil {
		return response.BadRequest(c, "VALIDATION_ERROR", err.Error())
	}

	business, err := h.businessUC.Register(c.Request().Context(), providerID, req)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusCreated, business, "Business registered successfully")
}

// Get handles retrieving a single business
func (h *BusinessHandler) Get(c echo.Context) error {
	business, err := h.businessUC.Get(c.Request().Context(), c.Param("businessId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, business, "Business retrieved successfully")
}

// ListAll handles retrieving every registered business
func (h *BusinessHandler) ListAll(c echo.Context) error {
	businesses, err := h.businessUC.ListAll(c.Request().Context())
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, businesses, "Businesses retrieved successfully")
}

// ListMine handles retrieving the calling provider's businesses
func (h *BusinessHandler) ListMine(c echo.Context) error {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	businesses, err := h.businessUC.ListByProvider(c.Request().Context(), providerID)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, businesses, "Businesses retrieved successfully")
}

// Nearby handles retrieving businesses close to a point
func (h *BusinessHandler) Nearby(c echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid latitude")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil {
		return response.BadRequest(c, "INVALID_INPUT", "Invalid longitude")
	}

	radiusKm := defaultNearbyRadiusKm
	if raw := c.QueryParam("radius_km"); raw != "" {
		radiusKm, err = strconv.ParseFloat(raw, 64)
		if err != nil || radiusKm <= 0 {
			return response.BadRequest(c, "INVALID_INPUT", "Invalid radius")
		}
	}

	businesses, err := h.businessUC.Nearby(c.Request().Context(), lat, lon, radiusKm)
	if err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, businesses, "Nearby businesses retrieved successfully")
}

// Delete handles removing a business and its queue
func (h *BusinessHandler) Delete(c echo.Context) error {
	providerID, ok := middleware.GetUserID(c)
	if !ok {
		return response.Unauthorized(c, "INVALID_TOKEN", "Invalid user ID in token")
	}

	if err := h.businessUC.Delete(c.Request().Context(), providerID, c.Param("businessId")); err != nil {
		return response.HandleAppError(c, err)
	}

	return response.Success(c, http.StatusOK, map[string]string{"message": "Business deleted"}, "Business deleted successfully")
}

// BookingQR handles rendering the booking QR code for a business
func (h *BusinessHandler) BookingQR(c echo.Context) error {
	qrCode, err := h.businessUC.BookingQR(c.Request().Context(), c.Param("businessId"))
	if err != nil {
		return response.HandleAppError(c, err)
	}

	// Return QR code as PNG image
	c.Response().Header().Set("Content-Disposition", "inline; filename=booking-qr.png")

	return c.Blob(http.StatusOK, "image/png", qrCode)
}
