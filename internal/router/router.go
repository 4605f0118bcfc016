package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/cinemacore/booking/internal/handler"    // import the handlers that implement business logic
	"github.com/cinemacore/booking/internal/middleware" // import middleware for JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterBooking registers the booking API.  Guest browsing lives at the
// top level, customer operations under /v1 behind JWT authentication, and
// administrative operations under /v1/admin behind the admin role.  The
// optional cacheMW wraps the seat grid endpoint and rateMW, when non-nil,
// is applied to every authenticated route.
func RegisterBooking(e *echo.Echo, seats *handler.SeatHandler, reservations *handler.ReservationHandler, orders *handler.OrderHandler, refunds *handler.RefundHandler, jwtSecret string, cacheMW, rateMW echo.MiddlewareFunc) {
	// The seat grid is a public browse endpoint: guests pick a seat before
	// registering.  The response cache middleware keeps the hot path off
	// the database when configured.
	if cacheMW != nil {
		e.GET("/v1/showtimes/:id/seats", seats.Grid, cacheMW)
	} else {
		e.GET("/v1/showtimes/:id/seats", seats.Grid)
	}

	// Routes that require a valid access token.  All handlers registered on
	// this group execute the JWTAuth middleware before being invoked.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("admin", "customer"))
	if rateMW != nil {
		auth.Use(rateMW)
	}

	// Seat holds.
	auth.POST("/showtimes/:id/seats/:code/lock", seats.Lock)

	// Reservation lifecycle.
	auth.POST("/reservations", reservations.Create)
	auth.GET("/my-reservations", reservations.ListMine)
	auth.GET("/reservations/:id", reservations.Get)
	auth.DELETE("/reservations/:id", reservations.Cancel)

	// Orders and payment attempts.
	auth.GET("/orders/:id", orders.Get)
	auth.POST("/orders/:id/payments", orders.CreatePayment)
	auth.POST("/payments/:id/confirm", orders.ConfirmPayment)
	auth.POST("/payments/:id/fail", orders.FailPayment)

	// Refund requests.
	auth.POST("/refunds", refunds.Create)
	auth.GET("/refunds/:id", refunds.Get)

	// Administrative operations require the admin role on top of a valid
	// token.  Forced transitions go through the event bus so their
	// compensations run exactly like the organic ones.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole("admin"))
	admin.POST("/refunds/:id/approve", refunds.Approve)
	admin.POST("/refunds/:id/reject", refunds.Reject)
	admin.POST("/reservations/:id/force-cancel", reservations.AdminForceCancel)
	admin.POST("/payments/:id/force-fail", orders.AdminForceFail)
	admin.POST("/seats/:showtime/:code/unlock", seats.AdminUnlock)
	admin.POST("/seats/sweep", seats.AdminSweep)
}
