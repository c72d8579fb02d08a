// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"lineless/internal/delivery/http/middleware"
	"lineless/internal/delivery/http/router/handler"
	"lineless/internal/domain/constants"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	BusinessHandler *handler.BusinessHandler
	BookingHandler  *handler.BookingHandler
	QueueHandler    *handler.QueueHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	businessHandler *handler.BusinessHandler
	bookingHandler  *handler.BookingHandler
	queueHandler    *handler.QueueHandler
	authMiddleware  *middleware.AuthMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		businessHandler: params.BusinessHandler,
		bookingHandler:  params.BookingHandler,
		queueHandler:    params.QueueHandler,
		authMiddleware:  params.AuthMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Public discovery routes
	businessGroup := e.Group("/businesses")
	{
		businessGroup.GET("", r.businessHandler.ListAll)
		businessGroup.GET("/nearby", r.businessHandler.Nearby)
		businessGroup.GET("/:businessId", r.businessHandler.Get)
		businessGroup.GET("/:businessId/qr", r.businessHandler.BookingQR)
		businessGroup.GET("/:businessId/queue", r.queueHandler.Get)
		businessGroup.GET("/:businessId/queue/stream", r.queueHandler.Stream)
	}

	// Client routes that require authentication
	clientGroup := e.Group("/bookings")
	clientGroup.Use(r.authMiddleware.Authenticate)
	{
		clientGroup.POST("", r.bookingHandler.Book)
		clientGroup.POST("/qr", r.bookingHandler.BookFromQR)
		clientGroup.GET("/mine", r.bookingHandler.MyAppointments)
	}

	// Provider routes that require authentication and the "provider" role
	providerGroup := e.Group("/provider")
	providerGroup.Use(r.authMiddleware.Authenticate)
	providerGroup.Use(r.authMiddleware.RequireRole(constants.RoleProvider))
	{
		providerGroup.POST("/businesses", r.businessHandler.Register)
		providerGroup.GET("/businesses", r.businessHandler.ListMine)
		providerGroup.DELETE("/businesses/:businessId", r.businessHandler.Delete)
		providerGroup.POST("/businesses/:businessId/advance", r.queueHandler.Advance)
		providerGroup.POST("/businesses/:businessId/reset", r.queueHandler.Reset)
		providerGroup.POST("/queue/advance", r.queueHandler.AdvanceNext)
	}
}
