// Package pricing maps a ticket type, attendee count and delivery mode
// to a price quote.  It is pure: no I/O, no floating point.  Totals are
// computed in a single multiplication so repeated additions can never
// accumulate rounding error.
package pricing

import "github.com/avillegasn/agenda-api/internal/model"

// Currency is the quoting currency, in whole units.
const Currency = "MXN"

// onlineDiscountPercent is the flat discount applied to per-head tier
// prices when the session is delivered online.  The discounted unit is
// rounded down to a whole currency unit before multiplying.
const onlineDiscountPercent = 10

// tier is one attendee-count bracket of a per-head price table.  A zero
// max means the bracket is open ended.
type tier struct {
    min  int
    max  int
    unit int64
}

// Per-head tables.  Unit prices are non-increasing as the group grows;
// the bracket boundaries are shared by both ticket types.
var (
    studentTiers = []tier{
        {1, 4, 1200},
        {5, 6, 1050},
        {7, 8, 980},
        {9, 10, 910},
        {11, 0, 860},
    }
    professionalTiers = []tier{
        {1, 4, 1750},
        {5, 6, 1590},
        {7, 8, 1430},
        {9, 10, 1300},
        {11, 0, 1180},
    }
)

// companyTotals is the flat total-price table for company bookings,
// keyed by exact attendee count from companyMinAttendees upward.
// Groups above the last entry pay the last entry's price (a cap, not an
// extrapolation).
var companyTotals = []int64{15500, 18000, 20500, 23000, 25500, 28000, 30200, 32400}

const (
    companyMinAttendees = model.CorporateMinAttendees
    companyMaxAttendees = companyMinAttendees + 7 // last entry of companyTotals
)

// Quote computes the price for a submission.  Student and professional
// tickets are priced per head from the tier tables; company tickets use
// the flat total table and ignore the delivery discount.  Attendee
// counts below the applicable minimum are rejected as validation
// errors.
func Quote(ticket model.AttendeeType, attendeeCount int, mode model.DeliveryMode) (model.PriceQuote, error) {
    if attendeeCount < 1 {
        return model.PriceQuote{}, model.Invalidf("attendee count must be at least 1")
    }
    switch ticket {
    case model.AttendeeStudent:
        return perHead(ticket, studentTiers, attendeeCount, mode), nil
    case model.AttendeeProfessional:
        return perHead(ticket, professionalTiers, attendeeCount, mode), nil
    case model.AttendeeCompany:
        if attendeeCount < companyMinAttendees {
            return model.PriceQuote{}, model.Invalidf("company bookings require at least %d attendees", companyMinAttendees)
        }
        n := attendeeCount
        if n > companyMaxAttendees {
            n = companyMaxAttendees
        }
        return model.PriceQuote{
            TicketType:    ticket,
            AttendeeCount: attendeeCount,
            TotalPrice:    companyTotals[n-companyMinAttendees],
            Currency:      Currency,
        }, nil
    }
    return model.PriceQuote{}, model.Invalidf("unknown ticket type %q", ticket)
}

// QuoteForCategory is Quote with the free-category rule applied:
// institutional offerings always quote zero regardless of ticket type,
// attendee count or delivery mode.
func QuoteForCategory(category model.EventCategory, ticket model.AttendeeType, attendeeCount int, mode model.DeliveryMode) (model.PriceQuote, error) {
    if attendeeCount < 1 {
        return model.PriceQuote{}, model.Invalidf("attendee count must be at least 1")
    }
    if category.Free() {
        return model.PriceQuote{TicketType: ticket, AttendeeCount: attendeeCount, Currency: Currency}, nil
    }
    return Quote(ticket, attendeeCount, mode)
}

func perHead(ticket model.AttendeeType, tiers []tier, n int, mode model.DeliveryMode) model.PriceQuote {
    unit := tiers[len(tiers)-1].unit
    for _, t := range tiers {
        if n >= t.min && (t.max == 0 || n <= t.max) {
            unit = t.unit
            break
        }
    }
    if mode == model.DeliveryOnline {
        unit = unit * (100 - onlineDiscountPercent) / 100 // floor to whole unit
    }
    return model.PriceQuote{
        TicketType:    ticket,
        AttendeeCount: n,
        UnitPrice:     unit,
        TotalPrice:    unit * int64(n),
        Currency:      Currency,
    }
}
