package handler

import (
    "context"
    "errors"
    "net/http"
    "strconv"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/avillegasn/agenda-api/internal/config"
    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/repository"
    "github.com/avillegasn/agenda-api/internal/service"
    "github.com/avillegasn/agenda-api/internal/utils"
)

// OperatorRole is the JWT role claim required by the admin endpoints.
const OperatorRole = "OPERATOR"

// EventLister is the slice of the event repository the admin surface
// needs.
type EventLister interface {
    List(ctx context.Context) ([]repository.EventRecord, error)
}

// AdminHandler serves the operator endpoints: login, the event roster
// and registration management.  There is a single operator account,
// configured through the environment rather than a users table.
type AdminHandler struct {
    Cfg    config.Config
    Regs   *service.RegistrationService
    Events EventLister
}

// NewAdminHandler bundles the admin dependencies for routing.
func NewAdminHandler(cfg config.Config, regs *service.RegistrationService, events EventLister) *AdminHandler {
    return &AdminHandler{Cfg: cfg, Regs: regs, Events: events}
}

type loginReq struct {
    Email    string `json:"email" validate:"required,email"`
    Password string `json:"password" validate:"required"`
}

type tokenPart struct {
    Token   string    `json:"token"`
    Expires time.Time `json:"expires"`
}

// Login handles POST /v1/admin/login.  Credentials are compared against
// the configured operator account; a match issues a short-lived access
// token with the OPERATOR role.
func (h *AdminHandler) Login(c echo.Context) error {
    var req loginReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    if err := c.Validate(&req); err != nil {
        return err
    }
    email := strings.ToLower(strings.TrimSpace(req.Email))
    if email != strings.ToLower(h.Cfg.AdminEmail) || !utils.VerifyPassword(h.Cfg.AdminPasswordHash, req.Password) {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
    }
    access, err := utils.NewAccessToken(h.Cfg.JWTSecret, email, OperatorRole, h.Cfg.AccessTTLMin)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue access failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{
        "access": tokenPart{Token: access.Token, Expires: access.Exp},
    })
}

// ListRegistrations handles GET /v1/admin/registrations.  Without
// parameters it pages newest first (?limit=); with ?date=YYYY-MM-DD it
// returns that day's sheet, oldest first.
func (h *AdminHandler) ListRegistrations(c echo.Context) error {
    if date := c.QueryParam("date"); date != "" {
        regs, err := h.Regs.ListRegistrationsByDate(c.Request().Context(), date)
        if err != nil {
            if model.IsValidation(err) {
                return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
            }
            return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
        }
        return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
    }
    limit := 0
    if s := c.QueryParam("limit"); s != "" {
        n, err := strconv.Atoi(s)
        if err != nil || n < 1 {
            return c.JSON(http.StatusBadRequest, echo.Map{"error": "limit must be a positive integer"})
        }
        limit = n
    }
    regs, err := h.Regs.ListRegistrations(c.Request().Context(), limit)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"registrations": regs})
}

// ListEvents handles GET /v1/admin/events.
func (h *AdminHandler) ListEvents(c echo.Context) error {
    events, err := h.Events.List(c.Request().Context())
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "list failed"})
    }
    return c.JSON(http.StatusOK, echo.Map{"events": events})
}

// GetRegistration handles GET /v1/admin/registrations/:id.
func (h *AdminHandler) GetRegistration(c echo.Context) error {
    reg, err := h.Regs.GetRegistration(c.Request().Context(), c.Param("id"))
    if err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
        }
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "lookup failed"})
    }
    return c.JSON(http.StatusOK, reg)
}

// FailRegistration handles POST /v1/admin/registrations/:id/fail, the
// manual action that abandons a registration.  Confirmed registrations
// cannot be failed.
func (h *AdminHandler) FailRegistration(c echo.Context) error {
    err := h.Regs.FailRegistration(c.Request().Context(), c.Param("id"))
    switch {
    case err == nil:
        return c.JSON(http.StatusOK, echo.Map{"success": true})
    case errors.Is(err, repository.ErrNotFound):
        return c.JSON(http.StatusNotFound, echo.Map{"error": "not found"})
    case errors.Is(err, repository.ErrTerminalStatus):
        return c.JSON(http.StatusConflict, echo.Map{"error": "registration already confirmed"})
    default:
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
    }
}
