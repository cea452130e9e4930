package service

import (
    "context"
    "time"

    "github.com/rs/zerolog"

    "github.com/avillegasn/agenda-api/internal/calendar"
    "github.com/avillegasn/agenda-api/internal/model"
    "github.com/avillegasn/agenda-api/internal/repository"
    "github.com/avillegasn/agenda-api/internal/schedule"
)

// EventStore is the slice of the event repository the availability
// service needs.
type EventStore interface {
    GetByID(ctx context.Context, id string) (*repository.EventRecord, error)
}

// CapacityCounter counts the registrations of an event that hold
// capacity.
type CapacityCounter interface {
    CountActive(ctx context.Context, eventID string) (int, error)
}

// Availability computes bookable slots and dates by combining the
// business-hours grid with the busy intervals reported by the external
// calendar.  Provider outages degrade: slot queries return nothing
// bookable rather than an error, so a calendar hiccup can never let a
// double booking through.
type Availability struct {
    provider calendar.Provider
    events   EventStore
    regs     CapacityCounter
    hours    model.BusinessHours
    timeout  time.Duration
    log      zerolog.Logger
    now      func() time.Time
}

// NewAvailability wires an availability service.  provider may be nil
// in configurations without a calendar, in which case every slot is
// considered free.
func NewAvailability(provider calendar.Provider, events EventStore, regs CapacityCounter, hours model.BusinessHours, timeout time.Duration, log zerolog.Logger) *Availability {
    return &Availability{
        provider: provider,
        events:   events,
        regs:     regs,
        hours:    hours,
        timeout:  timeout,
        log:      log,
        now:      time.Now,
    }
}

// FreeSlots returns the bookable slots of a calendar day, in order.
// When the calendar provider fails the result is an empty list and the
// failure is logged; the caller sees a fully booked day.
func (a *Availability) FreeSlots(ctx context.Context, day time.Time) ([]model.Slot, error) {
    busy, err := a.busyForDay(ctx, day)
    if err != nil {
        a.log.Error().Err(err).Str("date", day.Format("2006-01-02")).
            Msg("calendar provider unavailable, treating day as fully booked")
        return []model.Slot{}, nil
    }
    return schedule.Generate(day, a.hours, busy, a.now())
}

// IsSlotFree reports whether the slot starting at the given instant is
// currently bookable on its day.
func (a *Availability) IsSlotFree(ctx context.Context, start time.Time) (bool, error) {
    slots, err := a.FreeSlots(ctx, start)
    if err != nil {
        return false, err
    }
    for _, s := range slots {
        if s.Start.Equal(start) {
            return true, nil
        }
    }
    return false, nil
}

// IsDateAvailable reports whether a day can host a booking. For
// whole-day offerings the entire business window must be clear; for
// slot-based ones a single free slot suffices.
func (a *Availability) IsDateAvailable(ctx context.Context, day time.Time, wholeDay bool) (bool, error) {
    if !wholeDay {
        slots, err := a.FreeSlots(ctx, day)
        if err != nil {
            return false, err
        }
        return len(slots) > 0, nil
    }
    window, err := schedule.Window(day, a.hours)
    if err != nil {
        return false, err
    }
    busy, err := a.busyForDay(ctx, day)
    if err != nil {
        a.log.Error().Err(err).Str("date", day.Format("2006-01-02")).
            Msg("calendar provider unavailable, treating day as fully booked")
        return false, nil
    }
    return !intersectsWindow(busy, window), nil
}

// BusyDates returns the dates between from and to (inclusive) whose
// business-hours window is touched by at least one busy interval, as
// YYYY-MM-DD strings.  This feeds the whole-day date picker, so a day
// with a single mid-day meeting counts as busy even though individual
// slots around it remain bookable.  The busy intervals for the whole
// range are fetched in a single provider call; when the provider is
// down every date in the range is reported busy.
func (a *Availability) BusyDates(ctx context.Context, from, to time.Time) ([]string, error) {
    loc, err := a.hours.Location()
    if err != nil {
        return nil, err
    }
    first := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
    last := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, loc)
    if last.Before(first) {
        return nil, model.Invalidf("date range end precedes start")
    }

    busy, err := a.queryBusy(ctx, first, last.AddDate(0, 0, 1))
    if err != nil {
        a.log.Error().Err(err).Msg("calendar provider unavailable, reporting whole range busy")
        var all []string
        for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
            all = append(all, d.Format("2006-01-02"))
        }
        return all, nil
    }

    var out []string
    for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
        window, err := schedule.Window(d, a.hours)
        if err != nil {
            return nil, err
        }
        if intersectsWindow(busy, window) {
            out = append(out, d.Format("2006-01-02"))
        }
    }
    return out, nil
}

func intersectsWindow(busy []model.Interval, window model.Interval) bool {
    for _, iv := range busy {
        if iv.Overlaps(window) {
            return true
        }
    }
    return false
}

// RemainingCapacity returns how many more active registrations an event
// can accept, never below zero.
func (a *Availability) RemainingCapacity(ctx context.Context, eventID string) (int, error) {
    ev, err := a.events.GetByID(ctx, eventID)
    if err != nil {
        return 0, err
    }
    active, err := a.regs.CountActive(ctx, eventID)
    if err != nil {
        return 0, err
    }
    remaining := ev.Capacity - active
    if remaining < 0 {
        remaining = 0
    }
    return remaining, nil
}

func (a *Availability) busyForDay(ctx context.Context, day time.Time) ([]model.Interval, error) {
    window, err := schedule.Window(day, a.hours)
    if err != nil {
        return nil, err
    }
    return a.queryBusy(ctx, window.Start, window.End)
}

func (a *Availability) queryBusy(ctx context.Context, from, to time.Time) ([]model.Interval, error) {
    if a.provider == nil {
        return nil, nil
    }
    if a.timeout > 0 {
        var cancel context.CancelFunc
        ctx, cancel = context.WithTimeout(ctx, a.timeout)
        defer cancel()
    }
    busy, err := a.provider.QueryBusy(ctx, from, to)
    if err != nil {
        return nil, err
    }
    return schedule.MergeIntervals(busy), nil
}
