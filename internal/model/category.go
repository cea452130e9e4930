package model

// EventCategory is the kind of offering a registration belongs to.  The
// category drives eligibility rules, the lifecycle path a registration
// takes and whether the offering is priced at all.  The set is closed:
// pricing and the state machine switch over it exhaustively so an
// unknown value can never fall through a default branch silently.
type EventCategory string

const (
    CategoryInstitutionalFree EventCategory = "institutional-free"
    CategoryPublicWorkshop    EventCategory = "public-workshop"
    CategoryCorporate         EventCategory = "corporate"
    CategoryOnlineIndividual  EventCategory = "online-individual"
    CategoryOnlineGroup       EventCategory = "online-group"
)

// CorporateMinAttendees is the smallest group a corporate booking accepts.
const CorporateMinAttendees = 5

// ParseEventCategory validates a wire value into an EventCategory.
func ParseEventCategory(s string) (EventCategory, error) {
    c := EventCategory(s)
    switch c {
    case CategoryInstitutionalFree, CategoryPublicWorkshop, CategoryCorporate, CategoryOnlineIndividual, CategoryOnlineGroup:
        return c, nil
    }
    return "", Invalidf("unknown event category %q", s)
}

// Free reports whether the category is offered at no charge.
func (c EventCategory) Free() bool {
    return c == CategoryInstitutionalFree
}

// Online reports whether the category is delivered remotely by default.
func (c EventCategory) Online() bool {
    return c == CategoryOnlineIndividual || c == CategoryOnlineGroup
}

// AttendeeType is the pricing category of a registrant, independent of
// the event category.
type AttendeeType string

const (
    AttendeeStudent      AttendeeType = "student"
    AttendeeProfessional AttendeeType = "professional"
    AttendeeCompany      AttendeeType = "company"
)

// ParseAttendeeType validates a wire value into an AttendeeType.
func ParseAttendeeType(s string) (AttendeeType, error) {
    t := AttendeeType(s)
    switch t {
    case AttendeeStudent, AttendeeProfessional, AttendeeCompany:
        return t, nil
    }
    return "", Invalidf("unknown attendee type %q", s)
}

// DeliveryMode distinguishes on-site sessions from remote ones.  Online
// delivery earns a flat discount on per-head prices.
type DeliveryMode string

const (
    DeliveryOnsite DeliveryMode = "onsite"
    DeliveryOnline DeliveryMode = "online"
)

// ParseDeliveryMode resolves the delivery mode for a submission.  Online
// categories are always delivered online regardless of the requested
// mode; otherwise an empty value defaults to onsite.
func ParseDeliveryMode(s string, category EventCategory) (DeliveryMode, error) {
    if category.Online() {
        return DeliveryOnline, nil
    }
    switch DeliveryMode(s) {
    case DeliveryOnsite, "":
        return DeliveryOnsite, nil
    case DeliveryOnline:
        return DeliveryOnline, nil
    }
    return "", Invalidf("unknown delivery mode %q", s)
}
