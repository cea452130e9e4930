package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/repository"
    "github.com/avillegasn/agenda-api/internal/service"
)

// RegistrationHandler serves the public registration endpoints.
type RegistrationHandler struct {
    Regs *service.RegistrationService
}

// NewRegistrationHandler bundles the registration service for routing.
func NewRegistrationHandler(regs *service.RegistrationService) *RegistrationHandler {
    return &RegistrationHandler{Regs: regs}
}

type registrationReq struct {
    EventID       string `json:"event_id" validate:"omitempty,uuid4"`
    Category      string `json:"category" validate:"required"`
    AttendeeType  string `json:"attendee_type" validate:"required"`
    FullName      string `json:"full_name" validate:"required,min=2,max=120"`
    Email         string `json:"email" validate:"required,email"`
    Phone         string `json:"phone" validate:"omitempty,max=32"`
    AttendeeCount int    `json:"attendee_count" validate:"required,min=1,max=500"`
    Date          string `json:"date" validate:"omitempty,len=10"`
    Delivery      string `json:"delivery" validate:"omitempty,oneof=onsite online"`
}

// Submit handles POST /v1/registrations.
func (h *RegistrationHandler) Submit(c echo.Context) error {
    var req registrationReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }

    res, err := h.Regs.Submit(c.Request().Context(), service.SubmitInput{
        EventID:       req.EventID,
        Category:      req.Category,
        AttendeeType:  req.AttendeeType,
        FullName:      req.FullName,
        Email:         req.Email,
        Phone:         req.Phone,
        AttendeeCount: req.AttendeeCount,
        Date:          req.Date,
        Delivery:      req.Delivery,
    })
    if err != nil {
        return registrationError(c, err)
    }
    return c.JSON(http.StatusCreated, res)
}

// VerifyEmail handles GET /v1/registrations/:id/verify-email?token=.
// The link arrives from the registrant's inbox, so responses are kept
// simple enough to render directly.
func (h *RegistrationHandler) VerifyEmail(c echo.Context) error {
    id := c.Param("id")
    token := c.QueryParam("token")
    if token == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "token is required"})
    }
    res, err := h.Regs.VerifyEmail(c.Request().Context(), id, token)
    switch {
    case err == nil:
    case errors.Is(err, service.ErrInvalidToken):
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid verification token"})
    default:
        return registrationError(c, err)
    }
    return c.JSON(http.StatusOK, res)
}

// registrationError maps service and repository errors to HTTP status
// codes shared by the registration endpoints.
func registrationError(c echo.Context, err error) error {
    switch {
    case model.IsValidation(err):
        return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
    case errors.Is(err, repository.ErrEventFull):
        return c.JSON(http.StatusConflict, echo.Map{"error": "event is fully booked"})
    case errors.Is(err, repository.ErrAlreadyRegistered):
        return c.JSON(http.StatusConflict, echo.Map{"error": "email already registered for this event"})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
    }
}
