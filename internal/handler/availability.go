package handler

import (
    "errors"
    "net/http"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/avillegasn/agenda-api/internal/service"
)

// maxBusyDaysRange bounds the busy-days query so a single request
// cannot ask for years of calendar data.
const maxBusyDaysRange = 92 // days

// AvailabilityHandler serves the public availability endpoints.
type AvailabilityHandler struct {
    Avail *service.Availability
}

// NewAvailabilityHandler bundles the availability service for routing.
func NewAvailabilityHandler(avail *service.Availability) *AvailabilityHandler {
    return &AvailabilityHandler{Avail: avail}
}

// GetSlots handles GET /v1/availability/slots?date=YYYY-MM-DD.  It
// returns the bookable slots of the requested day; a day the calendar
// provider cannot be asked about comes back empty rather than failing.
func (h *AvailabilityHandler) GetSlots(c echo.Context) error {
    day, err := parseDateParam(c.QueryParam("date"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    slots, err := h.Avail.FreeSlots(c.Request().Context(), day)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "date":  day.Format("2006-01-02"),
        "slots": slots,
    })
}

// GetBusyDays handles GET /v1/availability/busy-days?from=&to=.  It
// returns the dates in the range that cannot host a whole-day booking
// because something already sits inside their business hours, so the
// corporate date-picker can grey them out.
func (h *AvailabilityHandler) GetBusyDays(c echo.Context) error {
    from, err := parseDateParam(c.QueryParam("from"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    to, err := parseDateParam(c.QueryParam("to"))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    }
    if to.Before(from) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "to precedes from"})
    }
    if to.Sub(from) > maxBusyDaysRange*24*time.Hour {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "range too large"})
    }
    busy, err := h.Avail.BusyDates(c.Request().Context(), from, to)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "availability lookup failed"})
    }
    if busy == nil {
        busy = []string{}
    }
    return c.JSON(http.StatusOK, echo.Map{"busy_days": busy})
}

func parseDateParam(s string) (time.Time, error) {
    if s == "" {
        return time.Time{}, errors.New("date is required")
    }
    t, err := time.Parse("2006-01-02", s)
    if err != nil {
        return time.Time{}, errors.New("date must be YYYY-MM-DD")
    }
    return t, nil
}
