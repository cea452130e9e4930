// Package service implements the business workflows behind the HTTP
// handlers: availability computation, the registration lifecycle and
// the post-confirmation side effects.
package service

import (
    "strings"

    "github.com/avillegasn/agenda-api/internal/model"
)

// StateMachine decides the lifecycle path of a registration: which
// status a new submission starts in, and which transitions later
// signals (email verification, payment confirmation) unlock.  It is
// pure and safe for concurrent use.
type StateMachine struct {
    // studentDomains lists the email domains whose addresses qualify
    // for the student rate.  Subdomains of an entry qualify too.
    studentDomains []string
    // institutionalDomain is the single domain allowed to book the
    // free institutional offering.
    institutionalDomain string
}

// NewStateMachine builds a state machine with the given allow-lists.
// Domains are matched case-insensitively.
func NewStateMachine(studentDomains []string, institutionalDomain string) *StateMachine {
    sm := &StateMachine{institutionalDomain: strings.ToLower(institutionalDomain)}
    for _, d := range studentDomains {
        d = strings.ToLower(strings.TrimSpace(d))
        if d != "" {
            sm.studentDomains = append(sm.studentDomains, d)
        }
    }
    return sm
}

// Submission carries the fields of a new registration that determine
// its initial status.
type Submission struct {
    Category      model.EventCategory
    AttendeeType  model.AttendeeType
    Email         string
    AttendeeCount int
}

// Initial returns the status a fresh submission starts in.
//
// Free institutional offerings confirm immediately, but only for
// addresses on the institutional domain. Corporate bookings skip
// self-service payment and go to manual follow-up, and require the
// corporate minimum group size. Paid offerings claimed at the student
// rate must prove control of an eligible academic address first; all
// other paid submissions go straight to payment.
func (sm *StateMachine) Initial(sub Submission) (model.Status, error) {
    if sub.AttendeeCount < 1 {
        return "", model.Invalidf("attendee count must be at least 1")
    }
    switch sub.Category {
    case model.CategoryInstitutionalFree:
        if emailDomain(sub.Email) != sm.institutionalDomain {
            return "", model.Invalidf("the free institutional offering is reserved for %s addresses", sm.institutionalDomain)
        }
        return model.StatusConfirmed, nil
    case model.CategoryCorporate:
        if sub.AttendeeCount < model.CorporateMinAttendees {
            return "", model.Invalidf("corporate bookings require at least %d attendees", model.CorporateMinAttendees)
        }
        return model.StatusPendingContact, nil
    case model.CategoryPublicWorkshop, model.CategoryOnlineIndividual, model.CategoryOnlineGroup:
        if sub.AttendeeType == model.AttendeeStudent {
            if !sm.StudentRateEligible(sub.Email) {
                return "", model.Invalidf("email domain does not qualify for the student rate")
            }
            return model.StatusPendingEmailVerification, nil
        }
        return model.StatusPendingPayment, nil
    }
    return "", model.Invalidf("unknown event category %q", sub.Category)
}

// OnEmailVerified returns the status a registration moves to once the
// registrant has proven control of their address. Free categories
// confirm outright; paid ones advance to payment. Re-verifying an
// already confirmed registration is a harmless replay.
func (sm *StateMachine) OnEmailVerified(reg *model.Registration) (model.Status, error) {
    switch reg.Status {
    case model.StatusPendingEmailVerification:
        if reg.Category.Free() {
            return model.StatusConfirmed, nil
        }
        return model.StatusPendingPayment, nil
    case model.StatusConfirmed:
        return model.StatusConfirmed, nil
    }
    return "", model.Invalidf("registration is not awaiting email verification (status %s)", reg.Status)
}

// OnPaymentConfirmed returns the status a registration moves to when the
// payment provider reports a completed checkout. A repeated webhook for
// an already confirmed registration is a no-op, not an error.
func (sm *StateMachine) OnPaymentConfirmed(reg *model.Registration) (model.Status, error) {
    switch reg.Status {
    case model.StatusPendingPayment:
        return model.StatusConfirmed, nil
    case model.StatusConfirmed:
        return model.StatusConfirmed, nil
    }
    return "", model.Invalidf("registration is not awaiting payment (status %s)", reg.Status)
}

// StudentRateEligible reports whether the email's domain is on the
// student allow-list, either exactly or as a subdomain of an entry.
func (sm *StateMachine) StudentRateEligible(email string) bool {
    domain := emailDomain(email)
    if domain == "" {
        return false
    }
    for _, entry := range sm.studentDomains {
        if domain == entry || strings.HasSuffix(domain, "."+entry) {
            return true
        }
    }
    return false
}

func emailDomain(email string) string {
    at := strings.LastIndex(email, "@")
    if at < 0 || at == len(email)-1 {
        return ""
    }
    return strings.ToLower(email[at+1:])
}
