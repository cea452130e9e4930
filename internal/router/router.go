package router

import (
    "github.com/labstack/echo/v4"

    "github.com/avillegasn/agenda-api/internal/handler"
    "github.com/avillegasn/agenda-api/internal/middleware"
)

// RegisterRoutes registers the routes that belong to no surface in
// particular.  Currently that is only the health check.
func RegisterRoutes(e *echo.Echo) {
    e.GET("/healthz", handler.Health)
}

// RegisterPublic registers the unauthenticated booking surface: the
// availability reads, the registration and appointment writes, and the
// payment webhook.
//
// cacheMW fronts the availability reads so repeated date-picker queries
// do not hammer the calendar provider; limitMW throttles the write
// endpoints.  Either may be nil when Redis is not configured, in which
// case the group runs without it.  The webhook is registered outside
// the rate-limited group: deliveries are authenticated by signature and
// throttling the provider's retries would only delay confirmations.
func RegisterPublic(e *echo.Echo, avail *handler.AvailabilityHandler, appt *handler.AppointmentHandler, regs *handler.RegistrationHandler, hooks *handler.WebhookHandler, cacheMW, limitMW echo.MiddlewareFunc) {
    reads := e.Group("/v1/availability")
    if cacheMW != nil {
        reads.Use(cacheMW)
    }
    reads.GET("/slots", avail.GetSlots)
    reads.GET("/busy-days", avail.GetBusyDays)

    writes := e.Group("/v1")
    if limitMW != nil {
        writes.Use(limitMW)
    }
    writes.POST("/appointments", appt.Book)
    writes.POST("/registrations", regs.Submit)
    // The verification link is opened from an email client, so it is a GET.
    writes.GET("/registrations/:id/verify-email", regs.VerifyEmail)

    e.POST("/v1/webhooks/payment", hooks.HandlePayment)
}

// RegisterAdmin registers the operator endpoints.  Login is open; the
// management routes require a valid access token carrying the OPERATOR
// role.
func RegisterAdmin(e *echo.Echo, admin *handler.AdminHandler, jwtSecret string) {
    e.POST("/v1/admin/login", admin.Login)

    g := e.Group("/v1/admin")
    g.Use(middleware.JWTAuth(jwtSecret))
    g.Use(middleware.RequireRole(handler.OperatorRole))
    g.GET("/events", admin.ListEvents)
    g.GET("/registrations", admin.ListRegistrations)
    g.GET("/registrations/:id", admin.GetRegistration)
    g.POST("/registrations/:id/fail", admin.FailRegistration)
}
