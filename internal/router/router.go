package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/iliyamo/train-ticket-qr/internal/handler"    // handlers that implement each endpoint
	"github.com/iliyamo/train-ticket-qr/internal/middleware" // response cache, rate limit and share link verification
)

// Deps collects the handlers and middleware the routes are wired to.
// Cache and Limit may be nil; the routes then run without them.
type Deps struct {
	Carriages   *handler.CarriageHandler
	Tickets     *handler.TicketHandler
	Cache       echo.MiddlewareFunc
	Limit       echo.MiddlewareFunc
	ShareSecret string
}

// RegisterRoutes registers the health check on the provided Echo instance.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAPI registers the /v1 endpoints.  Layouts and QR images are pure
// functions of the URL, so they sit behind the response cache; everything
// under /v1 is rate limited.
func RegisterAPI(e *echo.Echo, d Deps) {
	v1 := e.Group("/v1")
	if d.Limit != nil {
		v1.Use(d.Limit)
	}
	cached := []echo.MiddlewareFunc{}
	if d.Cache != nil {
		cached = append(cached, d.Cache)
	}

	// Seat tables and layouts
	v1.GET("/carriages", d.Carriages.ListCarriages, cached...)
	v1.GET("/carriages/:id/layout", d.Carriages.GetLayout, cached...)

	// Ticket form, submission and display
	v1.GET("/ticket-form", d.Tickets.GetForm)
	v1.POST("/tickets", d.Tickets.SubmitTicket)
	v1.GET("/tickets/:token", d.Tickets.GetTicket)
	v1.GET("/tickets/:token/qr.png", d.Tickets.GetQR, cached...)

	// Reading a token back from a photographed QR code
	v1.POST("/scan", d.Tickets.Scan)

	// Signed share links; the middleware verifies the token before GetShare runs.
	v1.POST("/share", d.Tickets.CreateShare)
	v1.GET("/share/:token", d.Tickets.GetShare, middleware.ShareLink(d.ShareSecret))
}
