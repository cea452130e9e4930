package service

import (
    "context"
    "errors"
    "testing"
    "time"

    "github.com/rs/zerolog"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/avillegasn/agenda-api/internal/calendar"
    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/repository"
)

var availHours = model.BusinessHours{
    Timezone:    "America/Mexico_City",
    StartHour:   9,
    EndHour:     18,
    SlotMinutes: 30,
}

// fakeProvider scripts the calendar responses for tests.
type fakeProvider struct {
    busy       []model.Interval
    queryErr   error
    insertErr  error
    inserted   []calendar.EventInput
    meetLink   string
    queryCalls int
}

func (f *fakeProvider) QueryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]model.Interval, error) {
    f.queryCalls++
    if f.queryErr != nil {
        return nil, f.queryErr
    }
    return f.busy, nil
}

func (f *fakeProvider) InsertEvent(ctx context.Context, ev calendar.EventInput) (*calendar.EventRef, error) {
    if f.insertErr != nil {
        return nil, f.insertErr
    }
    f.inserted = append(f.inserted, ev)
    return &calendar.EventRef{ID: "evt-1", MeetingLink: f.meetLink}, nil
}

type fakeEventStore struct {
    events map[string]*repository.EventRecord
}

func (f *fakeEventStore) GetByID(ctx context.Context, id string) (*repository.EventRecord, error) {
    ev, ok := f.events[id]
    if !ok {
        return nil, repository.ErrNotFound
    }
    return ev, nil
}

type fakeCounter struct {
    active map[string]int
}

func (f *fakeCounter) CountActive(ctx context.Context, eventID string) (int, error) {
    return f.active[eventID], nil
}

func availLoc(t *testing.T) *time.Location {
    t.Helper()
    loc, err := time.LoadLocation("America/Mexico_City")
    require.NoError(t, err)
    return loc
}

func newTestAvailability(p calendar.Provider, events EventStore, regs CapacityCounter, now time.Time) *Availability {
    a := NewAvailability(p, events, regs, availHours, time.Second, zerolog.Nop())
    a.now = func() time.Time { return now }
    return a
}

func TestFreeSlotsExcludesProviderBusy(t *testing.T) {
    loc := availLoc(t)
    day := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    p := &fakeProvider{busy: []model.Interval{{
        Start: time.Date(2026, 9, 14, 9, 0, 0, 0, loc),
        End:   time.Date(2026, 9, 14, 12, 0, 0, 0, loc),
    }}}
    a := newTestAvailability(p, nil, nil, day.AddDate(0, 0, -1))

    slots, err := a.FreeSlots(context.Background(), day)
    require.NoError(t, err)
    require.NotEmpty(t, slots)
    assert.Equal(t, "12:00 PM", slots[0].Label)
}

func TestFreeSlotsDegradesToEmptyOnProviderFailure(t *testing.T) {
    loc := availLoc(t)
    day := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    p := &fakeProvider{queryErr: errors.New("upstream 503")}
    a := newTestAvailability(p, nil, nil, day.AddDate(0, 0, -1))

    slots, err := a.FreeSlots(context.Background(), day)
    require.NoError(t, err)
    assert.Empty(t, slots)
}

func TestIsSlotFree(t *testing.T) {
    loc := availLoc(t)
    day := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    p := &fakeProvider{busy: []model.Interval{{
        Start: time.Date(2026, 9, 14, 10, 0, 0, 0, loc),
        End:   time.Date(2026, 9, 14, 10, 30, 0, 0, loc),
    }}}
    a := newTestAvailability(p, nil, nil, day.AddDate(0, 0, -1))

    free, err := a.IsSlotFree(context.Background(), time.Date(2026, 9, 14, 9, 0, 0, 0, loc))
    require.NoError(t, err)
    assert.True(t, free)

    taken, err := a.IsSlotFree(context.Background(), time.Date(2026, 9, 14, 10, 0, 0, 0, loc))
    require.NoError(t, err)
    assert.False(t, taken)
}

func TestIsDateAvailableWholeDay(t *testing.T) {
    loc := availLoc(t)
    day := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    now := day.AddDate(0, 0, -1)

    clear := newTestAvailability(&fakeProvider{}, nil, nil, now)
    ok, err := clear.IsDateAvailable(context.Background(), day, true)
    require.NoError(t, err)
    assert.True(t, ok)

    // A single mid-day meeting blocks a whole-day booking but not a
    // slot-based one.
    p := &fakeProvider{busy: []model.Interval{{
        Start: time.Date(2026, 9, 14, 13, 0, 0, 0, loc),
        End:   time.Date(2026, 9, 14, 14, 0, 0, 0, loc),
    }}}
    partial := newTestAvailability(p, nil, nil, now)
    ok, err = partial.IsDateAvailable(context.Background(), day, true)
    require.NoError(t, err)
    assert.False(t, ok)
    ok, err = partial.IsDateAvailable(context.Background(), day, false)
    require.NoError(t, err)
    assert.True(t, ok)
}

func TestBusyDatesSingleProviderCall(t *testing.T) {
    loc := availLoc(t)
    from := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    to := time.Date(2026, 9, 16, 0, 0, 0, 0, loc)
    // 2026-09-15 is fully booked; the other days are open.
    p := &fakeProvider{busy: []model.Interval{{
        Start: time.Date(2026, 9, 15, 0, 0, 0, 0, loc),
        End:   time.Date(2026, 9, 16, 0, 0, 0, 0, loc),
    }}}
    a := newTestAvailability(p, nil, nil, from.AddDate(0, 0, -1))

    busy, err := a.BusyDates(context.Background(), from, to)
    require.NoError(t, err)
    assert.Equal(t, []string{"2026-09-15"}, busy)
    assert.Equal(t, 1, p.queryCalls)
}

func TestBusyDatesPartialDayMeetingBlocksDate(t *testing.T) {
    loc := availLoc(t)
    day := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    // A one-hour meeting leaves plenty of slots free, but the date can
    // no longer host a whole-day booking.
    p := &fakeProvider{busy: []model.Interval{{
        Start: time.Date(2026, 9, 14, 13, 0, 0, 0, loc),
        End:   time.Date(2026, 9, 14, 14, 0, 0, 0, loc),
    }}}
    a := newTestAvailability(p, nil, nil, day.AddDate(0, 0, -1))

    busy, err := a.BusyDates(context.Background(), day, day)
    require.NoError(t, err)
    assert.Equal(t, []string{"2026-09-14"}, busy)
}

func TestBusyDatesIgnoresTimeOfDay(t *testing.T) {
    loc := availLoc(t)
    day := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    // Late afternoon on an empty day: no bookable slot is left today,
    // but the calendar itself is clear, so the date is not busy.
    a := newTestAvailability(&fakeProvider{}, nil, nil,
        time.Date(2026, 9, 14, 17, 45, 0, 0, loc))

    busy, err := a.BusyDates(context.Background(), day, day)
    require.NoError(t, err)
    assert.Empty(t, busy)
}

func TestBusyDatesProviderDownMarksWholeRange(t *testing.T) {
    loc := availLoc(t)
    from := time.Date(2026, 9, 14, 0, 0, 0, 0, loc)
    to := time.Date(2026, 9, 16, 0, 0, 0, 0, loc)
    p := &fakeProvider{queryErr: errors.New("timeout")}
    a := newTestAvailability(p, nil, nil, from.AddDate(0, 0, -1))

    busy, err := a.BusyDates(context.Background(), from, to)
    require.NoError(t, err)
    assert.Equal(t, []string{"2026-09-14", "2026-09-15", "2026-09-16"}, busy)
}

func TestRemainingCapacity(t *testing.T) {
    events := &fakeEventStore{events: map[string]*repository.EventRecord{
        "ev-1": {ID: "ev-1", Capacity: 20},
    }}
    counts := &fakeCounter{active: map[string]int{"ev-1": 18}}
    a := newTestAvailability(&fakeProvider{}, events, counts, time.Now())

    left, err := a.RemainingCapacity(context.Background(), "ev-1")
    require.NoError(t, err)
    assert.Equal(t, 2, left)

    counts.active["ev-1"] = 25 // over-committed data never goes negative
    left, err = a.RemainingCapacity(context.Background(), "ev-1")
    require.NoError(t, err)
    assert.Equal(t, 0, left)

    _, err = a.RemainingCapacity(context.Background(), "missing")
    assert.ErrorIs(t, err, repository.ErrNotFound)
}
