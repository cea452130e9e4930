// Package queue defines message payloads exchanged over the message broker.
package queue

// RegistrationConfirmedEvent is published when a registration reaches the
// confirmed status.  It contains enough information for downstream
// consumers to log, notify, or trigger analytics without querying the
// primary database.
type RegistrationConfirmedEvent struct {
    RegistrationID string `json:"registration_id"`
    EventID        string `json:"event_id,omitempty"`
    Category       string `json:"category"`
    FullName       string `json:"full_name"`
    Email          string `json:"email"`
    AttendeeCount  int    `json:"attendee_count"`
    RequestedDate  string `json:"requested_date"`
    AmountCents    int64  `json:"amount_cents"`
    Currency       string `json:"currency"`
    MeetingLink    string `json:"meeting_link,omitempty"`
    ConfirmedAt    string `json:"confirmed_at"`
}
