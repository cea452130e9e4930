// Package schedule computes the bookable slot grid for a calendar day.
// It is pure: given the same day, business hours, busy intervals and
// reference instant it always produces the same slots, in ascending
// order, with no hidden state.
package schedule

import (
    "sort"
    "time"

    "github.com/avillegasn/agenda-api/internal/model"
)

// slotLabelLayout renders slot start times the way they are shown to
// visitors ("09:00 AM", "05:30 PM").
const slotLabelLayout = "03:04 PM"

// Generate produces the bookable slots of a single calendar day.  Only
// the year, month and day of `day` are used; the wall-clock boundaries
// are resolved in the business timezone through the tz database, so the
// number of slots is driven by wall-clock hours even on DST transition
// days.  A slot is dropped when it has already started relative to
// `now` or when it overlaps any busy interval.  Busy intervals are
// merged to a union first so duplicates and overlaps are not counted
// twice.
func Generate(day time.Time, hours model.BusinessHours, busy []model.Interval, now time.Time) ([]model.Slot, error) {
    if !hours.Valid() {
        return nil, model.Invalidf("invalid business hours %d-%d/%dmin", hours.StartHour, hours.EndHour, hours.SlotMinutes)
    }
    loc, err := hours.Location()
    if err != nil {
        return nil, err
    }
    merged := MergeIntervals(busy)

    y, mo, d := day.Date()
    slots := make([]model.Slot, 0, (hours.EndHour-hours.StartHour)*60/hours.SlotMinutes)
    for min := hours.StartHour * 60; min+hours.SlotMinutes <= hours.EndHour*60; min += hours.SlotMinutes {
        start := time.Date(y, mo, d, 0, min, 0, 0, loc)
        end := time.Date(y, mo, d, 0, min+hours.SlotMinutes, 0, 0, loc)
        if !start.After(now) {
            continue // no booking in the past
        }
        if overlapsAny(model.Interval{Start: start, End: end}, merged) {
            continue
        }
        slots = append(slots, model.Slot{Start: start, End: end, Label: start.Format(slotLabelLayout)})
    }
    return slots, nil
}

// Window returns the full business-hours interval of a calendar day.
// Availability uses it both as the busy-query range and as the whole-day
// window for busy-date detection.
func Window(day time.Time, hours model.BusinessHours) (model.Interval, error) {
    if !hours.Valid() {
        return model.Interval{}, model.Invalidf("invalid business hours %d-%d/%dmin", hours.StartHour, hours.EndHour, hours.SlotMinutes)
    }
    loc, err := hours.Location()
    if err != nil {
        return model.Interval{}, err
    }
    y, mo, d := day.Date()
    return model.Interval{
        Start: time.Date(y, mo, d, hours.StartHour, 0, 0, 0, loc),
        End:   time.Date(y, mo, d, hours.EndHour, 0, 0, 0, loc),
    }, nil
}

// MergeIntervals normalizes a set of busy intervals into a sorted,
// non-overlapping union.  Malformed intervals (Start >= End) are
// discarded.  The input slice is not modified.
func MergeIntervals(in []model.Interval) []model.Interval {
    valid := make([]model.Interval, 0, len(in))
    for _, iv := range in {
        if iv.Valid() {
            valid = append(valid, iv)
        }
    }
    if len(valid) <= 1 {
        return valid
    }
    sort.Slice(valid, func(i, j int) bool { return valid[i].Start.Before(valid[j].Start) })
    out := valid[:1]
    for _, iv := range valid[1:] {
        last := &out[len(out)-1]
        if !iv.Start.After(last.End) {
            if iv.End.After(last.End) {
                last.End = iv.End
            }
            continue
        }
        out = append(out, iv)
    }
    return out
}

func overlapsAny(slot model.Interval, busy []model.Interval) bool {
    for _, b := range busy {
        if slot.Overlaps(b) {
            return true
        }
    }
    return false
}
