// Package calendar defines the external calendar collaborator used for
// availability lookups and event creation, plus its Google
// implementation.
package calendar

import (
    "context"
    "time"

    "github.com/avillegasn/agenda-api/internal/model"
)

// Provider is the external calendar the business books against.
// QueryBusy returns the busy intervals between two instants and
// InsertEvent creates an event for a confirmed booking.  Both calls
// honour the context deadline; callers are expected to wrap them with a
// bounded timeout and degrade when the provider is unreachable.
type Provider interface {
    QueryBusy(ctx context.Context, timeMin, timeMax time.Time) ([]model.Interval, error)
    InsertEvent(ctx context.Context, ev EventInput) (*EventRef, error)
}

// EventInput describes the event to create for a confirmed booking.
type EventInput struct {
    Summary     string
    Description string
    Start       time.Time
    End         time.Time
    Timezone    string
    Attendees   []string
    Location    string
    WithMeet    bool // request a video conference link
}

// EventRef identifies the created event in the provider.  MeetingLink
// is only set when a conference was requested and granted.
type EventRef struct {
    ID          string
    MeetingLink string
}
