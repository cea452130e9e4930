package service

import (
    "context"
    "fmt"
    "time"

    "github.com/rs/zerolog"

    "github.com/avillegasn/agenda-api/internal/calendar"
    "github.com/avillegasn/agenda-api/internal/mailer"
    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/queue"
)

// ConfirmationStore is the slice of the registration repository the
// orchestrator needs: the idempotent move into confirmed.
type ConfirmationStore interface {
    Confirm(ctx context.Context, id string, paymentRef *string, at time.Time) (already bool, err error)
}

// Publisher pushes a confirmation event to the message broker.
type Publisher func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error

// Orchestrator runs the confirmation sequence: persist the status
// change, then the side effects (calendar event, emails, broker
// publish).  Only the persistence step can fail the operation; each
// side effect that fails is logged and surfaced as a warning on the
// outcome so the caller still sees a confirmed booking.
type Orchestrator struct {
    store         ConfirmationStore
    provider      calendar.Provider
    mail          mailer.Mailer
    publish       Publisher
    hours         model.BusinessHours
    operatorEmail string
    timeout       time.Duration
    log           zerolog.Logger
    now           func() time.Time
}

// NewOrchestrator wires a confirmation orchestrator.  provider, mail
// and publish may each be nil; the corresponding side effect is then
// skipped silently.
func NewOrchestrator(store ConfirmationStore, provider calendar.Provider, mail mailer.Mailer, publish Publisher, hours model.BusinessHours, operatorEmail string, timeout time.Duration, log zerolog.Logger) *Orchestrator {
    if store == nil {
        panic("nil store passed to NewOrchestrator")
    }
    return &Orchestrator{
        store:         store,
        provider:      provider,
        mail:          mail,
        publish:       publish,
        hours:         hours,
        operatorEmail: operatorEmail,
        timeout:       timeout,
        log:           log,
        now:           time.Now,
    }
}

// OutcomeReport summarizes a confirmation: the final status, whether
// this call performed the transition (as opposed to replaying one), the
// meeting link if a conference was provisioned, and any side effects
// that failed.
type OutcomeReport struct {
    RegistrationID string       `json:"registration_id"`
    Status         model.Status `json:"status"`
    Confirmed      bool         `json:"confirmed"`
    MeetingLink    string       `json:"meeting_link,omitempty"`
    Warnings       []string     `json:"warnings,omitempty"`
}

type confirmHook struct {
    name string
    run  func(ctx context.Context, reg *model.Registration, report *OutcomeReport) error
}

// Confirm moves the registration into confirmed and runs the
// post-confirmation side effects.  The persistence step is fatal on
// error; side effects are best effort.  When the registration was
// already confirmed the side effects still run so a retried call can
// repair a partially failed earlier confirmation; each hook is expected
// to be idempotent or harmless on replay.
func (o *Orchestrator) Confirm(ctx context.Context, reg *model.Registration, paymentRef *string) (*OutcomeReport, error) {
    confirmedAt := o.now().UTC()
    already, err := o.store.Confirm(ctx, reg.ID, paymentRef, confirmedAt)
    if err != nil {
        return nil, fmt.Errorf("persist confirmation for %s: %w", reg.ID, err)
    }
    reg.Status = model.StatusConfirmed
    if reg.ConfirmedAt == nil {
        reg.ConfirmedAt = &confirmedAt
    }
    if paymentRef != nil && reg.PaymentRef == nil {
        reg.PaymentRef = paymentRef
    }

    report := &OutcomeReport{
        RegistrationID: reg.ID,
        Status:         model.StatusConfirmed,
        Confirmed:      !already,
    }
    for _, h := range o.hooks() {
        hctx := ctx
        if o.timeout > 0 {
            var cancel context.CancelFunc
            hctx, cancel = context.WithTimeout(ctx, o.timeout)
            err = h.run(hctx, reg, report)
            cancel()
        } else {
            err = h.run(hctx, reg, report)
        }
        if err != nil {
            o.log.Warn().Err(err).Str("registration_id", reg.ID).Str("hook", h.name).
                Msg("confirmation side effect failed")
            report.Warnings = append(report.Warnings, fmt.Sprintf("%s: %v", h.name, err))
        }
    }
    return report, nil
}

// hooks returns the side-effect chain in execution order.  The calendar
// hook runs first so the emails and the broker event can include the
// meeting link it produces.
func (o *Orchestrator) hooks() []confirmHook {
    return []confirmHook{
        {name: "calendar", run: o.insertCalendarEvent},
        {name: "registrant-email", run: o.sendRegistrantEmail},
        {name: "operator-email", run: o.sendOperatorEmail},
        {name: "broker", run: o.publishConfirmed},
    }
}

func (o *Orchestrator) insertCalendarEvent(ctx context.Context, reg *model.Registration, report *OutcomeReport) error {
    if o.provider == nil || reg.RequestedTime == nil {
        return nil
    }
    start := *reg.RequestedTime
    end := start.Add(time.Duration(o.hours.SlotMinutes) * time.Minute)
    attendees := []string{reg.Email}
    if o.operatorEmail != "" {
        attendees = append(attendees, o.operatorEmail)
    }
    ref, err := o.provider.InsertEvent(ctx, calendar.EventInput{
        Summary:     fmt.Sprintf("Session: %s", reg.FullName),
        Description: fmt.Sprintf("Registration %s (%s, %d attendees)", reg.ID, reg.Category, reg.AttendeeCount),
        Start:       start,
        End:         end,
        Timezone:    o.hours.Timezone,
        Attendees:   attendees,
        WithMeet:    reg.Delivery == model.DeliveryOnline,
    })
    if err != nil {
        return err
    }
    report.MeetingLink = ref.MeetingLink
    return nil
}

func (o *Orchestrator) sendRegistrantEmail(ctx context.Context, reg *model.Registration, report *OutcomeReport) error {
    if o.mail == nil {
        return nil
    }
    body := fmt.Sprintf("<p>Hi %s,</p><p>Your booking for %s is confirmed.</p>", reg.FullName, reg.RequestedDate)
    if report.MeetingLink != "" {
        body += fmt.Sprintf("<p>Join here: <a href=%q>%s</a></p>", report.MeetingLink, report.MeetingLink)
    }
    return o.mail.Send(ctx, reg.Email, "Your booking is confirmed", body)
}

func (o *Orchestrator) sendOperatorEmail(ctx context.Context, reg *model.Registration, report *OutcomeReport) error {
    if o.mail == nil || o.operatorEmail == "" {
        return nil
    }
    body := fmt.Sprintf("<p>Confirmed: %s (%s) - %s, %d attendees, %s.</p>",
        reg.FullName, reg.Email, reg.Category, reg.AttendeeCount, reg.RequestedDate)
    if report.MeetingLink != "" {
        body += fmt.Sprintf("<p>Meet: %s</p>", report.MeetingLink)
    }
    return o.mail.Send(ctx, o.operatorEmail, fmt.Sprintf("Booking confirmed: %s", reg.FullName), body)
}

func (o *Orchestrator) publishConfirmed(ctx context.Context, reg *model.Registration, report *OutcomeReport) error {
    if o.publish == nil {
        return nil
    }
    confirmedAt := ""
    if reg.ConfirmedAt != nil {
        confirmedAt = reg.ConfirmedAt.UTC().Format(time.RFC3339)
    }
    eventID := ""
    if reg.EventID != nil {
        eventID = *reg.EventID
    }
    return o.publish(ctx, queue.RegistrationConfirmedEvent{
        RegistrationID: reg.ID,
        EventID:        eventID,
        Category:       string(reg.Category),
        FullName:       reg.FullName,
        Email:          reg.Email,
        AttendeeCount:  reg.AttendeeCount,
        RequestedDate:  reg.RequestedDate,
        AmountCents:    reg.AmountCents,
        Currency:       reg.Currency,
        MeetingLink:    report.MeetingLink,
        ConfirmedAt:    confirmedAt,
    })
}
