package model

// PriceQuote is the derived price for a submission.  It is computed on
// demand by the pricing engine and never persisted on its own; the
// total is copied onto the registration at submission time.  All money
// values are integers in whole currency units.
type PriceQuote struct {
    TicketType    AttendeeType `json:"ticket_type"`
    AttendeeCount int          `json:"attendee_count"`
    UnitPrice     int64        `json:"unit_price"`
    TotalPrice    int64        `json:"total_price"`
    Currency      string       `json:"currency"`
}
