package handler

import (
    "encoding/json"
    "io"
    "net/http"
    "strconv"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/avillegasn/agenda-api/internal/config"
    "github.com/avillegasn/agenda-api/internal/service"
    "github.com/avillegasn/agenda-api/internal/utils"
)

// webhookSecretName is the secret the payment provider signs deliveries
// with, resolved through the SecretProvider so rotation needs no restart.
const webhookSecretName = "PAYMENT_WEBHOOK_SECRET"

// maxWebhookBody bounds how much of a delivery is read before
// signature verification.
const maxWebhookBody = 1 << 20 // 1 MiB

// WebhookHandler receives payment provider notifications.  Deliveries
// are authenticated by an HMAC signature over the raw body before any
// JSON is parsed.
type WebhookHandler struct {
    Regs      *service.RegistrationService
    Secrets   config.SecretProvider
    Tolerance time.Duration
}

// NewWebhookHandler bundles the webhook dependencies for routing.
func NewWebhookHandler(regs *service.RegistrationService, secrets config.SecretProvider, tolerance time.Duration) *WebhookHandler {
    return &WebhookHandler{Regs: regs, Secrets: secrets, Tolerance: tolerance}
}

// checkoutPayload is the subset of the provider's event envelope this
// service consumes.
type checkoutPayload struct {
    Type string `json:"type"`
    Data struct {
        Object struct {
            ID       string            `json:"id"`
            Metadata map[string]string `json:"metadata"`
        } `json:"object"`
    } `json:"data"`
}

// HandlePayment handles POST /v1/webhooks/payment.  Unverifiable
// signatures yield 401; event types other than a completed checkout are
// acknowledged and ignored so the provider does not retry them.
func (h *WebhookHandler) HandlePayment(c echo.Context) error {
    body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
    if err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable body"})
    }
    secret, err := h.Secrets.Secret(webhookSecretName)
    if err != nil {
        return c.JSON(http.StatusInternalServerError, echo.Map{"error": "webhook secret unavailable"})
    }
    sig := c.Request().Header.Get("Stripe-Signature")
    if err := utils.VerifyWebhookSignature(body, sig, secret, h.Tolerance, time.Now()); err != nil {
        return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid signature"})
    }

    var payload checkoutPayload
    if err := json.Unmarshal(body, &payload); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payload"})
    }
    if payload.Type != "checkout.session.completed" {
        return c.JSON(http.StatusOK, echo.Map{"received": true, "ignored": payload.Type})
    }

    meta := payload.Data.Object.Metadata
    regID := meta["registration_id"]
    if regID == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing registration_id metadata"})
    }
    count, _ := strconv.Atoi(meta["attendee_count"])

    outcome, err := h.Regs.HandlePaymentWebhook(c.Request().Context(), service.CheckoutEvent{
        RegistrationID: regID,
        PaymentRef:     payload.Data.Object.ID,
        TicketType:     meta["ticket_type"],
        AttendeeCount:  count,
        EventDate:      meta["event_date"],
    })
    if err != nil {
        // A delivery the service rejects is still acknowledged with an
        // error status so the provider's retries surface in its logs.
        return registrationError(c, err)
    }
    return c.JSON(http.StatusOK, outcome)
}
