package model

import "time"

// Interval is a half-open time range [Start, End).  Busy intervals
// reported by the external calendar are carried in this form.
type Interval struct {
    Start time.Time `json:"start"`
    End   time.Time `json:"end"`
}

// Valid reports whether the interval is well formed (Start < End).
func (iv Interval) Valid() bool {
    return iv.Start.Before(iv.End)
}

// Overlaps reports whether two half-open intervals share any instant.
// This single symmetric test is the canonical overlap predicate used
// everywhere slots are compared against busy time.
func (iv Interval) Overlaps(o Interval) bool {
    return iv.Start.Before(o.End) && iv.End.After(o.Start)
}

// BusinessHours describes the daily bookable window of the operator.
// Hours are wall-clock values in the configured IANA timezone; the slot
// grid resolves them to absolute instants through the tz database so
// they stay correct across DST transitions.
type BusinessHours struct {
    Timezone    string // IANA zone id, e.g. "America/Mexico_City"
    StartHour   int    // first bookable hour, 0-23
    EndHour     int    // end of the window (exclusive), 0-23
    SlotMinutes int    // slot granularity in minutes, > 0
}

// Location resolves the configured timezone against the tz database.
func (h BusinessHours) Location() (*time.Location, error) {
    return time.LoadLocation(h.Timezone)
}

// Valid reports whether the window is well formed.
func (h BusinessHours) Valid() bool {
    return h.StartHour >= 0 && h.EndHour <= 23 && h.StartHour < h.EndHour && h.SlotMinutes > 0
}

// Slot is a fixed-duration bookable window within business hours.  The
// label is the human-readable start time rendered in the business
// timezone ("09:00 AM").
type Slot struct {
    Start time.Time `json:"start"`
    End   time.Time `json:"end"`
    Label string    `json:"label"`
}
