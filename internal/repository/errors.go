// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrEventFull indicates that a capacity-limited event cannot
// accept another registration, while ErrTerminalStatus signals that a
// registration has reached a state that no operation may move it out of.
package repository

import "errors"

// ErrNotFound is returned when the requested row does not exist.
// Handlers should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")

// ErrEventFull is returned when a registration would exceed the
// capacity of its event. Handlers should translate this into an
// HTTP 409 response.
var ErrEventFull = errors.New("event is fully booked")

// ErrAlreadyRegistered is returned when the same email already holds a
// non-failed registration for the event. Handlers should translate
// this into an HTTP 409 response.
var ErrAlreadyRegistered = errors.New("email already registered for this event")

// ErrTerminalStatus is returned when a status change is attempted on a
// registration whose current status forbids it, such as failing a
// confirmed registration.
var ErrTerminalStatus = errors.New("registration is in a terminal status")

// ErrStatusConflict is returned by conditional status updates when the
// row exists but is not in the expected source status. Callers can
// treat it as a lost race rather than a missing row.
var ErrStatusConflict = errors.New("registration status changed concurrently")
