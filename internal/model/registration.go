package model

import "time"

// Status is the lifecycle state of a registration.  A registration is
// created in one of the pending states and moves forward through the
// transitions implemented by the state machine.  confirmed and failed
// are terminal: once confirmed a registration never regresses, and
// failed can only be reached through an explicit administrative action.
type Status string

const (
    StatusPendingEmailVerification Status = "pending_email_verification"
    StatusPendingPayment           Status = "pending_payment"
    StatusPendingContact           Status = "pending_contact"
    StatusConfirmed                Status = "confirmed"
    StatusFailed                   Status = "failed"
)

// Valid reports whether s is one of the known lifecycle states.
func (s Status) Valid() bool {
    switch s {
    case StatusPendingEmailVerification, StatusPendingPayment, StatusPendingContact, StatusConfirmed, StatusFailed:
        return true
    }
    return false
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
    return s == StatusConfirmed || s == StatusFailed
}

// ReservesCapacity reports whether a registration in this status counts
// against the capacity of a capacity-limited event.  Unverified holds do
// not reserve capacity so that abandoned submissions cannot block a
// public event indefinitely.
func (s Status) ReservesCapacity() bool {
    return s == StatusConfirmed || s == StatusPendingPayment
}

// Registration records one attendee group signing up for an offering.
// It is created once at submission time and afterwards mutated only
// through status transitions; rows are never deleted so the table forms
// an audit trail.
//
// Fields:
//  ID            – primary key (UUID).
//  EventID       – capacity-limited event this registration belongs to
//                  (nullable: appointment bookings have none).
//  Category      – the kind of offering being booked.
//  AttendeeType  – pricing category of the registrant.
//  AttendeeCount – number of attendees covered, at least 1.
//  RequestedDate – calendar date of the session (YYYY-MM-DD).
//  RequestedTime – concrete slot start for slot-based bookings (nullable).
//  Delivery      – onsite or online.
//  Status        – current lifecycle state.
//  AmountCents   – quoted total in minor currency units.
//  PaymentRef    – external payment reference once paid (nullable).
//  EmailVerified – whether the registrant proved control of the address.
//  ConfirmedAt   – set on the transition into confirmed (nullable).
type Registration struct {
    ID            string        `json:"id"`
    EventID       *string       `json:"event_id,omitempty"`
    Category      EventCategory `json:"category"`
    AttendeeType  AttendeeType  `json:"attendee_type"`
    FullName      string        `json:"full_name"`
    Email         string        `json:"email"`
    Phone         string        `json:"phone,omitempty"`
    AttendeeCount int           `json:"attendee_count"`
    RequestedDate string        `json:"requested_date"`
    RequestedTime *time.Time    `json:"requested_time,omitempty"`
    Delivery      DeliveryMode  `json:"delivery"`
    Status        Status        `json:"status"`
    AmountCents   int64         `json:"amount_cents"`
    Currency      string        `json:"currency"`
    PaymentRef    *string       `json:"payment_ref,omitempty"`
    EmailVerified bool          `json:"email_verified"`
    CreatedAt     time.Time     `json:"created_at"`
    ConfirmedAt   *time.Time    `json:"confirmed_at,omitempty"`
}
