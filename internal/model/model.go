// Package model defines the core domain types for the season registration system.
package model

import (
	"strconv"
	"strings"
	"time"
)

// RegistrationType discriminates the two registration shapes.
type RegistrationType string

const (
	TypeSingleEvent RegistrationType = "single-event"
	TypeSeason      RegistrationType = "season"
)

// Status is the registration lifecycle state.
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus tracks the payment lifecycle independently of Status.
type PaymentStatus string

const (
	PaymentPending  PaymentStatus = "pending"
	PaymentPaid     PaymentStatus = "paid"
	PaymentFailed   PaymentStatus = "failed"
	PaymentRefunded PaymentStatus = "refunded"
)

// PersonnelMember is one person on a registration. Members with
// IsAttending=false are kept for record-keeping but excluded from
// pricing and attendee counts.
type PersonnelMember struct {
	Name        string `json:"name" bson:"name"`
	Email       string `json:"email" bson:"email"`
	Phone       string `json:"phone" bson:"phone"`
	Designation string `json:"designation" bson:"designation"`
	IsAttending bool   `json:"is_attending" bson:"isAttending"`
}

// EventRef is a denormalized snapshot of an event at submission time,
// so historical registrations stay readable if the catalog changes.
type EventRef struct {
	ID       string     `json:"id" bson:"id"`
	Title    string     `json:"title" bson:"title"`
	Date     *time.Time `json:"date" bson:"date"`
	Location string     `json:"location" bson:"location"`
	Slug     string     `json:"slug" bson:"slug"`
}

// SingleEventDetails is the single-event variant payload.
type SingleEventDetails struct {
	Event EventRef `json:"event" bson:"event"`
}

// SeasonDetails is the season variant payload.
type SeasonDetails struct {
	Number               int        `json:"number" bson:"number"`
	SelectedEventIDs     []string   `json:"selected_event_ids" bson:"selectedEventIds"`
	SelectedEventDetails []EventRef `json:"selected_event_details" bson:"selectedEventDetails"`
}

// Pricing holds the derived financial fields. These are computed at
// write time and never user-entered.
type Pricing struct {
	AttendingCount        int     `json:"attending_count" bson:"attendingCount"`
	SelectedEventCount    int     `json:"selected_event_count" bson:"selectedEventCount"`
	TotalEventAttendances int     `json:"total_event_attendances" bson:"totalEventAttendances"`
	BaseAmount            float64 `json:"base_amount" bson:"baseAmount"`
	DiscountAmount        float64 `json:"discount_amount" bson:"discountAmount"`
	FreeSlots             int     `json:"free_slots" bson:"freeSlots"`
	TotalCost             float64 `json:"total_cost" bson:"totalCost"`
	Savings               float64 `json:"savings" bson:"savings"`
	TierName              string  `json:"tier_name" bson:"tierName"`
}

// Registration is the central entity. Exactly one of SingleEvent or
// Season is populated, selected by Type.
type Registration struct {
	ID               string           `json:"id"`
	ConfirmationCode string           `json:"confirmation_code"`
	Type             RegistrationType `json:"registration_type"`

	CompanyName      string `json:"company_name"`
	CompanyEmail     string `json:"company_email"`
	CompanyPhone     string `json:"company_phone"`
	CompanyAddress   string `json:"company_address"`
	CompanyIndustry  string `json:"company_industry"`
	CompanySize      string `json:"company_size"`
	CompanyCommunity string `json:"company_community"`

	ContactName        string `json:"contact_name"`
	ContactEmail       string `json:"contact_email"`
	ContactPhone       string `json:"contact_phone"`
	ContactDesignation string `json:"contact_designation"`

	Personnel []PersonnelMember `json:"personnel"`

	SingleEvent *SingleEventDetails `json:"single_event,omitempty"`
	Season      *SeasonDetails      `json:"season,omitempty"`

	Pricing Pricing `json:"pricing"`

	Status          Status        `json:"status"`
	PaymentStatus   PaymentStatus `json:"payment_status"`
	TermsAccepted   bool          `json:"terms_accepted"`
	PrivacyAccepted bool          `json:"privacy_accepted"`

	CreatedAt *time.Time `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at"`
}

// AttendingCount returns the number of personnel flagged as attending.
func (r *Registration) AttendingCount() int {
	n := 0
	for _, p := range r.Personnel {
		if p.IsAttending {
			n++
		}
	}
	return n
}

// IsSeason reports whether this is a season registration. Records that
// predate the discriminator carry an empty Type and count as single-event.
func (r *Registration) IsSeason() bool {
	return r.Type == TypeSeason
}

// EventTitle returns the display title: the event title for single-event
// registrations, a "Season N" label for season registrations.
func (r *Registration) EventTitle() string {
	if r.IsSeason() {
		if r.Season != nil {
			return "Season " + strconv.Itoa(r.Season.Number)
		}
		return "Season"
	}
	if r.SingleEvent != nil {
		return r.SingleEvent.Event.Title
	}
	return ""
}

// SeasonNumberString returns the season number as a string, empty for
// non-season registrations.
func (r *Registration) SeasonNumberString() string {
	if r.IsSeason() && r.Season != nil {
		return strconv.Itoa(r.Season.Number)
	}
	return ""
}

// CompanyType returns the normalized company-type category used by the
// admin company-type filter.
func (r *Registration) CompanyType() string {
	return strings.ToLower(strings.TrimSpace(r.CompanyCommunity))
}

// Event is a catalog entry in the events collection.
type Event struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Date        *time.Time `json:"date"`
	Location    string     `json:"location"`
	Slug        string     `json:"slug"`
	Season      int        `json:"season"`
}

// Ref returns the denormalized snapshot of the event.
func (e *Event) Ref() EventRef {
	return EventRef{
		ID:       e.ID,
		Title:    e.Title,
		Date:     e.Date,
		Location: e.Location,
		Slug:     e.Slug,
	}
}

// RegistrationDraft is the submission payload: the full registration
// minus the derived financial fields, which the service computes.
type RegistrationDraft struct {
	Type RegistrationType `json:"registration_type"`

	CompanyName      string `json:"company_name"`
	CompanyEmail     string `json:"company_email"`
	CompanyPhone     string `json:"company_phone"`
	CompanyAddress   string `json:"company_address"`
	CompanyIndustry  string `json:"company_industry"`
	CompanySize      string `json:"company_size"`
	CompanyCommunity string `json:"company_community"`

	ContactName        string `json:"contact_name"`
	ContactEmail       string `json:"contact_email"`
	ContactPhone       string `json:"contact_phone"`
	ContactDesignation string `json:"contact_designation"`

	Personnel []PersonnelMember `json:"personnel"`

	// Single-event drafts reference one catalog event.
	EventID string `json:"event_id,omitempty"`

	// Season drafts carry the season number and the selected event ids.
	SeasonNumber     int      `json:"season_number,omitempty"`
	SelectedEventIDs []string `json:"selected_event_ids,omitempty"`

	TermsAccepted   bool `json:"terms_accepted"`
	PrivacyAccepted bool `json:"privacy_accepted"`
}

// StatusUpdateRequest is the payload for status transitions.
type StatusUpdateRequest struct {
	Status        Status        `json:"status,omitempty"`
	PaymentStatus PaymentStatus `json:"payment_status,omitempty"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}
