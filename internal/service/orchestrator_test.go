package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/queue"
)

// fakeConfirmStore records Confirm calls and simulates the idempotent
// repository behaviour: the first call transitions, later ones replay.
type fakeConfirmStore struct {
    confirmed   map[string]bool
    transitions int
    err         error
}

func newFakeConfirmStore() *fakeConfirmStore {
    return &fakeConfirmStore{confirmed: make(map[string]bool)}
}

func (f *fakeConfirmStore) Confirm(ctx context.Context, id string, paymentRef *string, at time.Time) (bool, error) {
    if f.err != nil {
        return false, f.err
    }
    if f.confirmed[id] {
        return true, nil
    }
    f.confirmed[id] = true
    f.transitions++
    return false, nil
}

type sentMail struct {
    to      string
    subject string
    html    string
}

type fakeMailer struct {
    sent []sentMail
    err  error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
    if f.err != nil {
        return f.err
    }
    f.sent = append(f.sent, sentMail{to: to, subject: subject, html: html})
    return nil
}

func slotReg(loc *time.Location) *model.Registration {
    start := time.Date(2026, 9, 14, 10, 0, 0, 0, loc)
    return &model.Registration{
        ID:            "reg-1",
        Category:      model.CategoryOnlineIndividual,
        AttendeeType:  model.AttendeeProfessional,
        FullName:      "Ana Torres",
        Email:         "ana@example.com",
        AttendeeCount: 1,
        RequestedDate: "2026-09-14",
        RequestedTime: &start,
        Delivery:      model.DeliveryOnline,
        Status:        model.StatusPendingPayment,
        Currency:      "MXN",
    }
}

func TestConfirmRunsFullHookChain(t *testing.T) {
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)

    store := newFakeConfirmStore()
    provider := &fakeProvider{meetLink: "https://meet.example/abc"}
    mail := &fakeMailer{}
    var published []queue.RegistrationConfirmedEvent
    publish := func(ctx context.Context, ev queue.RegistrationConfirmedEvent) error {
        published = append(published, ev)
        return nil
    }
    orch := NewOrchestrator(store, provider, mail, publish, availHours, "ops@agenda.example", time.Second, zerolog.Nop())

    report, err := orch.Confirm(context.Background(), slotReg(loc), nil)
    require.NoError(t, err)

    assert.True(t, report.Confirmed)
    assert.Equal(t, model.StatusConfirmed, report.Status)
    assert.Empty(t, report.Warnings)
    assert.Equal(t, "https://meet.example/abc", report.MeetingLink)

    // Calendar event covers exactly one slot, with both parties invited
    // and a conference requested for online delivery.
    require.Len(t, provider.inserted, 1)
    ev := provider.inserted[0]
    assert.Equal(t, 30*time.Minute, ev.End.Sub(ev.Start))
    assert.ElementsMatch(t, []string{"ana@example.com", "ops@agenda.example"}, ev.Attendees)
    assert.True(t, ev.WithMeet)

    // Registrant and operator both get an email carrying the link.
    require.Len(t, mail.sent, 2)
    assert.Equal(t, "ana@example.com", mail.sent[0].to)
    assert.Contains(t, mail.sent[0].html, "https://meet.example/abc")
    assert.Equal(t, "ops@agenda.example", mail.sent[1].to)

    require.Len(t, published, 1)
    assert.Equal(t, "reg-1", published[0].RegistrationID)
    assert.Equal(t, "https://meet.example/abc", published[0].MeetingLink)
}

func TestConfirmPersistFailureIsFatal(t *testing.T) {
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)
    store := newFakeConfirmStore()
    store.err = errors.New("deadlock")
    provider := &fakeProvider{}
    orch := NewOrchestrator(store, provider, &fakeMailer{}, nil, availHours, "", time.Second, zerolog.Nop())

    _, err = orch.Confirm(context.Background(), slotReg(loc), nil)
    require.Error(t, err)
    // No side effects run when persistence fails.
    assert.Empty(t, provider.inserted)
}

func TestConfirmSideEffectFailureBecomesWarning(t *testing.T) {
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)
    store := newFakeConfirmStore()
    provider := &fakeProvider{insertErr: errors.New("quota exceeded")}
    mail := &fakeMailer{}
    orch := NewOrchestrator(store, provider, mail, nil, availHours, "ops@agenda.example", time.Second, zerolog.Nop())

    report, err := orch.Confirm(context.Background(), slotReg(loc), nil)
    require.NoError(t, err)

    // The booking is confirmed despite the calendar failure, and the
    // later hooks still ran.
    assert.True(t, report.Confirmed)
    require.Len(t, report.Warnings, 1)
    assert.Contains(t, report.Warnings[0], "calendar")
    assert.Len(t, mail.sent, 2)
}

func TestConfirmTwiceTransitionsOnce(t *testing.T) {
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)
    store := newFakeConfirmStore()
    orch := NewOrchestrator(store, nil, nil, nil, availHours, "", time.Second, zerolog.Nop())
    reg := slotReg(loc)

    first, err := orch.Confirm(context.Background(), reg, nil)
    require.NoError(t, err)
    second, err := orch.Confirm(context.Background(), reg, nil)
    require.NoError(t, err)

    assert.True(t, first.Confirmed)
    assert.False(t, second.Confirmed)
    assert.Equal(t, 1, store.transitions)
}

func TestConfirmSkipsCalendarWithoutSlot(t *testing.T) {
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)
    store := newFakeConfirmStore()
    provider := &fakeProvider{}
    orch := NewOrchestrator(store, provider, nil, nil, availHours, "", time.Second, zerolog.Nop())

    reg := slotReg(loc)
    reg.RequestedTime = nil // whole-day booking, nothing to schedule
    report, err := orch.Confirm(context.Background(), reg, nil)
    require.NoError(t, err)
    assert.Empty(t, provider.inserted)
    assert.Empty(t, report.MeetingLink)
}

func TestConfirmRecordsPaymentRef(t *testing.T) {
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)
    store := newFakeConfirmStore()
    orch := NewOrchestrator(store, nil, nil, nil, availHours, "", time.Second, zerolog.Nop())

    reg := slotReg(loc)
    ref := "cs_123"
    _, err = orch.Confirm(context.Background(), reg, &ref)
    require.NoError(t, err)
    require.NotNil(t, reg.PaymentRef)
    assert.Equal(t, "cs_123", *reg.PaymentRef)
    require.NotNil(t, reg.ConfirmedAt)
}
