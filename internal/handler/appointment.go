package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/service"
)

// AppointmentHandler serves the ad-hoc consultation booking endpoint.
type AppointmentHandler struct {
    Regs *service.RegistrationService
}

// NewAppointmentHandler bundles the registration service for routing.
func NewAppointmentHandler(regs *service.RegistrationService) *AppointmentHandler {
    return &AppointmentHandler{Regs: regs}
}

type appointmentReq struct {
    Date     string `json:"date" validate:"required,len=10"`
    Time     string `json:"time" validate:"required,len=5"`
    FullName string `json:"full_name" validate:"required,min=2,max=120"`
    Email    string `json:"email" validate:"required,email"`
    Phone    string `json:"phone" validate:"omitempty,max=32"`
    Topic    string `json:"topic" validate:"omitempty,max=500"`
}

// Book handles POST /v1/appointments.  The slot is validated against
// the live calendar; a taken slot yields 409 so the client can refresh
// its availability view and retry.
func (h *AppointmentHandler) Book(c echo.Context) error {
    var req appointmentReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }

    res, err := h.Regs.BookAppointment(c.Request().Context(), service.AppointmentInput{
        Date:     req.Date,
        Time:     req.Time,
        FullName: req.FullName,
        Email:    req.Email,
        Phone:    req.Phone,
        Topic:    req.Topic,
    })
    switch {
    case err == nil:
    case errors.Is(err, service.ErrSlotUnavailable):
        return c.JSON(http.StatusConflict, echo.Map{"error": "slot is no longer available"})
    case model.IsValidation(err):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "booking failed"})
    }

    resp := echo.Map{
        "success":         true,
        "registration_id": res.Registration.ID,
    }
    if res.Outcome != nil {
        if res.Outcome.MeetingLink != "" {
            resp["meeting_link"] = res.Outcome.MeetingLink
        }
        if len(res.Outcome.Warnings) > 0 {
            resp["warnings"] = res.Outcome.Warnings
        }
    }
    return c.JSON(http.StatusCreated, resp)
}
