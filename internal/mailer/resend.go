package mailer

import (
    "context"
    "fmt"

    "github.com/resend/resend-go/v2"
)

// ResendMailer sends email through the Resend API.
type ResendMailer struct {
    client *resend.Client
    from   string
}

// NewResendMailer builds a mailer using the given API key and sender
// address ("Agenda <agenda@example.com>").
func NewResendMailer(apiKey, from string) *ResendMailer {
    return &ResendMailer{client: resend.NewClient(apiKey), from: from}
}

// Send delivers one HTML email to a single recipient.
func (m *ResendMailer) Send(ctx context.Context, to, subject, html string) error {
    _, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
        From:    m.from,
        To:      []string{to},
        Subject: subject,
        Html:    html,
    })
    if err != nil {
        return fmt.Errorf("resend send to %s: %w", to, err)
    }
    return nil
}
