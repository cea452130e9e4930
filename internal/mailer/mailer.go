// Package mailer defines the outbound email collaborator and its Resend
// implementation.  Sending is fire-and-forget from the booking flow's
// perspective: failures are logged and reported as warnings, never as
// fatal errors.
package mailer

import "context"

// Mailer delivers a single HTML email.  Implementations must honour the
// context deadline.
type Mailer interface {
    Send(ctx context.Context, to, subject, html string) error
}
