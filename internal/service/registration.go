package service

import (
    "context"
    "errors"
    "fmt"
    "time"

    "github.com/google/uuid"
    "github.com/rs/zerolog"

    "github.com/avillegasn/agenda-api/internal/mailer"
    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/pricing"
    "github.com/avillegasn/agenda-api/internal/repository"
    "github.com/avillegasn/agenda-api/internal/utils"
)

// ErrInvalidToken is returned when an email verification link carries a
// token that does not match the registration.
var ErrInvalidToken = errors.New("invalid verification token")

// ErrSlotUnavailable is returned when the requested consultation slot is
// not free.
var ErrSlotUnavailable = errors.New("requested slot is not available")

// RegistrationStore is the persistence surface the registration service
// depends on.  *repository.RegistrationRepo satisfies it; tests supply
// in-memory fakes.
type RegistrationStore interface {
    Create(ctx context.Context, reg *model.Registration) error
    CreateWithCapacity(ctx context.Context, reg *model.Registration, capacity int) error
    GetByID(ctx context.Context, id string) (*model.Registration, error)
    List(ctx context.Context, limit int) ([]model.Registration, error)
    ListByEventDate(ctx context.Context, date string) ([]model.Registration, error)
    SetStatus(ctx context.Context, id string, from, to model.Status) error
    MarkEmailVerified(ctx context.Context, id string) error
    MarkFailed(ctx context.Context, id string) error
    CountActive(ctx context.Context, eventID string) (int, error)
}

// RegistrationDeps bundles the collaborators of RegistrationService so
// construction sites stay readable.
type RegistrationDeps struct {
    Store         RegistrationStore
    Events        EventStore
    Machine       *StateMachine
    Orchestrator  *Orchestrator
    Availability  *Availability
    Mailer        mailer.Mailer // nil disables verification emails
    Hours         model.BusinessHours
    CheckoutURL   string // payment page; registration ID appended as a query param
    PublicBaseURL string // base for verification links in outbound email
    VerifySecret  string
    Logger        zerolog.Logger
}

// RegistrationService owns the registration lifecycle: submission,
// email verification, payment webhooks, ad-hoc consultation bookings
// and administrative actions.
type RegistrationService struct {
    deps RegistrationDeps
    now  func() time.Time
}

// NewRegistrationService wires a registration service.
func NewRegistrationService(deps RegistrationDeps) *RegistrationService {
    if deps.Store == nil {
        panic("nil store passed to NewRegistrationService")
    }
    if deps.Machine == nil {
        panic("nil state machine passed to NewRegistrationService")
    }
    if deps.Orchestrator == nil {
        panic("nil orchestrator passed to NewRegistrationService")
    }
    return &RegistrationService{deps: deps, now: time.Now}
}

// SubmitInput is a new registration request after HTTP binding.
type SubmitInput struct {
    EventID       string
    Category      string
    AttendeeType  string
    FullName      string
    Email         string
    Phone         string
    AttendeeCount int
    Date          string // YYYY-MM-DD; defaults to the event's date
    Delivery      string
}

// SubmitResult reports the stored registration, its quote and what the
// registrant should do next: pay (PaymentURL set), check their inbox,
// wait for contact, or nothing (Outcome set for immediate confirms).
type SubmitResult struct {
    Registration *model.Registration `json:"registration"`
    Quote        model.PriceQuote    `json:"quote"`
    PaymentURL   string              `json:"payment_url,omitempty"`
    Outcome      *OutcomeReport      `json:"outcome,omitempty"`
}

// Submit validates and stores a new registration, routing it into the
// lifecycle state the state machine picks. Capacity-limited events are
// guarded inside the store's transaction so two concurrent submissions
// cannot both take the last place.
func (s *RegistrationService) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
    category, err := model.ParseEventCategory(in.Category)
    if err != nil {
        return nil, err
    }
    ticket, err := model.ParseAttendeeType(in.AttendeeType)
    if err != nil {
        return nil, err
    }
    delivery, err := model.ParseDeliveryMode(in.Delivery, category)
    if err != nil {
        return nil, err
    }

    initial, err := s.deps.Machine.Initial(Submission{
        Category:      category,
        AttendeeType:  ticket,
        Email:         in.Email,
        AttendeeCount: in.AttendeeCount,
    })
    if err != nil {
        return nil, err
    }
    quote, err := pricing.QuoteForCategory(category, ticket, in.AttendeeCount, delivery)
    if err != nil {
        return nil, err
    }

    reg := &model.Registration{
        ID:            uuid.NewString(),
        Category:      category,
        AttendeeType:  ticket,
        FullName:      in.FullName,
        Email:         in.Email,
        Phone:         in.Phone,
        AttendeeCount: in.AttendeeCount,
        RequestedDate: in.Date,
        Delivery:      delivery,
        Status:        initial,
        AmountCents:   quote.TotalPrice * 100,
        Currency:      quote.Currency,
        CreatedAt:     s.now().UTC(),
    }
    if initial == model.StatusConfirmed {
        at := s.now().UTC()
        reg.ConfirmedAt = &at
    }

    if in.EventID != "" {
        ev, err := s.deps.Events.GetByID(ctx, in.EventID)
        if err != nil {
            return nil, err
        }
        id := ev.ID
        reg.EventID = &id
        if reg.RequestedDate == "" {
            reg.RequestedDate = ev.Date
        }
        if err := s.deps.Store.CreateWithCapacity(ctx, reg, ev.Capacity); err != nil {
            return nil, err
        }
    } else {
        if reg.RequestedDate == "" {
            return nil, model.Invalidf("date is required when no event is given")
        }
        if err := s.deps.Store.Create(ctx, reg); err != nil {
            return nil, err
        }
    }

    result := &SubmitResult{Registration: reg, Quote: quote}
    switch initial {
    case model.StatusConfirmed:
        outcome, err := s.deps.Orchestrator.Confirm(ctx, reg, nil)
        if err != nil {
            return nil, err
        }
        result.Outcome = outcome
    case model.StatusPendingPayment:
        result.PaymentURL = s.paymentURL(reg.ID)
    case model.StatusPendingEmailVerification:
        s.sendVerificationEmail(ctx, reg)
    }
    return result, nil
}

// VerifyResult reports the status reached after following an email
// verification link.
type VerifyResult struct {
    Registration *model.Registration `json:"registration"`
    PaymentURL   string              `json:"payment_url,omitempty"`
    Outcome      *OutcomeReport      `json:"outcome,omitempty"`
}

// VerifyEmail consumes an email verification link. The token is a keyed
// hash of the registration ID, so verification needs no token table and
// links stay valid until the registration leaves the pending state.
// Replaying the link on an already confirmed registration is harmless.
func (s *RegistrationService) VerifyEmail(ctx context.Context, id, token string) (*VerifyResult, error) {
    if !utils.CheckVerificationToken(s.deps.VerifySecret, id, token) {
        return nil, ErrInvalidToken
    }
    reg, err := s.deps.Store.GetByID(ctx, id)
    if err != nil {
        return nil, err
    }
    next, err := s.deps.Machine.OnEmailVerified(reg)
    if err != nil {
        return nil, err
    }
    if err := s.deps.Store.MarkEmailVerified(ctx, id); err != nil {
        return nil, err
    }
    reg.EmailVerified = true

    result := &VerifyResult{Registration: reg}
    switch next {
    case model.StatusConfirmed:
        outcome, err := s.deps.Orchestrator.Confirm(ctx, reg, nil)
        if err != nil {
            return nil, err
        }
        result.Outcome = outcome
    case model.StatusPendingPayment:
        err := s.deps.Store.SetStatus(ctx, id, model.StatusPendingEmailVerification, next)
        if err != nil && !errors.Is(err, repository.ErrStatusConflict) {
            return nil, err
        }
        reg.Status = next
        result.PaymentURL = s.paymentURL(id)
    }
    return result, nil
}

// CheckoutEvent is a completed-checkout notification from the payment
// provider, already authenticated by the webhook handler.
type CheckoutEvent struct {
    RegistrationID string
    PaymentRef     string
    TicketType     string
    AttendeeCount  int
    EventDate      string
}

// HandlePaymentWebhook confirms the registration a completed checkout
// belongs to. Deliveries are at-least-once: a repeat for an already
// confirmed registration returns the existing outcome without running
// the side effects again.
func (s *RegistrationService) HandlePaymentWebhook(ctx context.Context, ev CheckoutEvent) (*OutcomeReport, error) {
    reg, err := s.deps.Store.GetByID(ctx, ev.RegistrationID)
    if err != nil {
        return nil, err
    }
    if reg.Status == model.StatusConfirmed {
        s.deps.Logger.Info().Str("registration_id", reg.ID).Str("payment_ref", ev.PaymentRef).
            Msg("duplicate checkout webhook for confirmed registration, ignoring")
        return &OutcomeReport{
            RegistrationID: reg.ID,
            Status:         model.StatusConfirmed,
            Confirmed:      false,
        }, nil
    }
    if _, err := s.deps.Machine.OnPaymentConfirmed(reg); err != nil {
        return nil, err
    }
    ref := ev.PaymentRef
    return s.deps.Orchestrator.Confirm(ctx, reg, &ref)
}

// AppointmentInput is a request to book a free discovery consultation
// on a specific slot.
type AppointmentInput struct {
    Date     string // YYYY-MM-DD
    Time     string // HH:MM, 24h, business timezone
    FullName string
    Email    string
    Phone    string
    Topic    string
}

// BookAppointment books a consultation on a free slot. Consultations
// are one-person online sessions at no charge, confirmed immediately:
// the slot is checked against the live calendar, the registration is
// stored as confirmed, and the confirmation side effects (calendar
// event with a meeting link, emails) run right away.
func (s *RegistrationService) BookAppointment(ctx context.Context, in AppointmentInput) (*SubmitResult, error) {
    loc, err := s.deps.Hours.Location()
    if err != nil {
        return nil, err
    }
    start, err := time.ParseInLocation("2006-01-02 15:04", in.Date+" "+in.Time, loc)
    if err != nil {
        return nil, model.Invalidf("bad date or time: %v", err)
    }
    if !start.After(s.now()) {
        return nil, model.Invalidf("requested slot is in the past")
    }
    free, err := s.deps.Availability.IsSlotFree(ctx, start)
    if err != nil {
        return nil, err
    }
    if !free {
        return nil, ErrSlotUnavailable
    }

    at := s.now().UTC()
    reg := &model.Registration{
        ID:            uuid.NewString(),
        Category:      model.CategoryOnlineIndividual,
        AttendeeType:  model.AttendeeProfessional,
        FullName:      in.FullName,
        Email:         in.Email,
        Phone:         in.Phone,
        AttendeeCount: 1,
        RequestedDate: in.Date,
        RequestedTime: &start,
        Delivery:      model.DeliveryOnline,
        Status:        model.StatusConfirmed,
        Currency:      pricing.Currency,
        CreatedAt:     at,
        ConfirmedAt:   &at,
    }
    if err := s.deps.Store.Create(ctx, reg); err != nil {
        return nil, err
    }
    outcome, err := s.deps.Orchestrator.Confirm(ctx, reg, nil)
    if err != nil {
        return nil, err
    }
    return &SubmitResult{Registration: reg, Outcome: outcome}, nil
}

// FailRegistration is the administrative action that abandons a
// registration (unreachable registrant, cancelled event). Confirmed
// registrations cannot be failed.
func (s *RegistrationService) FailRegistration(ctx context.Context, id string) error {
    return s.deps.Store.MarkFailed(ctx, id)
}

// GetRegistration fetches one registration.
func (s *RegistrationService) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
    return s.deps.Store.GetByID(ctx, id)
}

// ListRegistrations returns registrations newest first.
func (s *RegistrationService) ListRegistrations(ctx context.Context, limit int) ([]model.Registration, error) {
    return s.deps.Store.List(ctx, limit)
}

// ListRegistrationsByDate returns the registrations requested for one
// date, oldest first. Operators use this as the day sheet before a
// session.
func (s *RegistrationService) ListRegistrationsByDate(ctx context.Context, date string) ([]model.Registration, error) {
    if _, err := time.Parse("2006-01-02", date); err != nil {
        return nil, model.Invalidf("bad date %q, want YYYY-MM-DD", date)
    }
    return s.deps.Store.ListByEventDate(ctx, date)
}

func (s *RegistrationService) paymentURL(id string) string {
    if s.deps.CheckoutURL == "" {
        return ""
    }
    return fmt.Sprintf("%s?registration_id=%s", s.deps.CheckoutURL, id)
}

// sendVerificationEmail is best effort: a delivery failure is logged
// and the registration stays pending so the link can be re-requested.
func (s *RegistrationService) sendVerificationEmail(ctx context.Context, reg *model.Registration) {
    if s.deps.Mailer == nil {
        return
    }
    token := utils.VerificationToken(s.deps.VerifySecret, reg.ID)
    link := fmt.Sprintf("%s/v1/registrations/%s/verify-email?token=%s", s.deps.PublicBaseURL, reg.ID, token)
    body := fmt.Sprintf(
        "<p>Hi %s,</p><p>Confirm your academic email to keep the student rate:</p><p><a href=%q>Verify my email</a></p>",
        reg.FullName, link,
    )
    if err := s.deps.Mailer.Send(ctx, reg.Email, "Verify your email", body); err != nil {
        s.deps.Logger.Warn().Err(err).Str("registration_id", reg.ID).Msg("verification email failed")
    }
}
