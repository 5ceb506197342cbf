package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/timeutil"
)

// Temporal fields are declared as `any` throughout the document types:
// older records carry dates as native datetimes, epoch millis, ISO
// strings, or seconds/nanoseconds wrappers, and decoding them into a
// concrete time type would fail. Every temporal value is passed through
// timeutil.Normalize on the way to the domain model.

type eventRefDoc struct {
	ID       string `bson:"id"`
	Title    string `bson:"title"`
	Date     any    `bson:"date,omitempty"`
	Location string `bson:"location"`
	Slug     string `bson:"slug"`
}

type singleEventDoc struct {
	Event eventRefDoc `bson:"event"`
}

type seasonDoc struct {
	Number               int           `bson:"number"`
	SelectedEventIDs     []string      `bson:"selectedEventIds"`
	SelectedEventDetails []eventRefDoc `bson:"selectedEventDetails"`
}

type registrationDoc struct {
	ID               primitive.ObjectID `bson:"_id,omitempty"`
	ConfirmationCode string             `bson:"confirmationCode,omitempty"`
	Type             string             `bson:"registrationType,omitempty"`

	CompanyName      string `bson:"companyName"`
	CompanyEmail     string `bson:"companyEmail"`
	CompanyPhone     string `bson:"companyPhone"`
	CompanyAddress   string `bson:"companyAddress"`
	CompanyIndustry  string `bson:"companyIndustry"`
	CompanySize      string `bson:"companySize"`
	CompanyCommunity string `bson:"companyCommunity"`

	ContactName        string `bson:"contactName"`
	ContactEmail       string `bson:"contactEmail"`
	ContactPhone       string `bson:"contactPhone"`
	ContactDesignation string `bson:"contactDesignation"`

	Personnel []model.PersonnelMember `bson:"personnel"`

	SingleEvent *singleEventDoc `bson:"singleEvent,omitempty"`
	Season      *seasonDoc      `bson:"season,omitempty"`

	Pricing model.Pricing `bson:"pricing"`

	Status          string `bson:"status"`
	PaymentStatus   string `bson:"paymentStatus"`
	TermsAccepted   bool   `bson:"termsAccepted"`
	PrivacyAccepted bool   `bson:"privacyAccepted"`

	CreatedAt any `bson:"createdAt,omitempty"`
	UpdatedAt any `bson:"updatedAt,omitempty"`
	// registrationDate is a legacy field older records use instead of
	// createdAt; it is read as a fallback and never written.
	RegistrationDate any `bson:"registrationDate,omitempty"`
}

type eventDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Date        any                `bson:"date,omitempty"`
	Location    string             `bson:"location"`
	Slug        string             `bson:"slug"`
	Season      int                `bson:"season,omitempty"`
}

func refToDoc(r model.EventRef) eventRefDoc {
	d := eventRefDoc{ID: r.ID, Title: r.Title, Location: r.Location, Slug: r.Slug}
	if r.Date != nil {
		d.Date = *r.Date
	}
	return d
}

func refToModel(d eventRefDoc) model.EventRef {
	return model.EventRef{
		ID:       d.ID,
		Title:    d.Title,
		Date:     timeutil.Normalize(d.Date),
		Location: d.Location,
		Slug:     d.Slug,
	}
}

// newRegistrationDoc builds the stored document for a create, stamping
// both timestamps itself. Client-supplied CreatedAt/UpdatedAt are
// never trusted.
func newRegistrationDoc(r *model.Registration, now time.Time) registrationDoc {
	doc := registrationDoc{
		ConfirmationCode: r.ConfirmationCode,
		Type:             string(r.Type),
		CompanyName:      r.CompanyName,
		CompanyEmail:     r.CompanyEmail,
		CompanyPhone:     r.CompanyPhone,
		CompanyAddress:   r.CompanyAddress,
		CompanyIndustry:  r.CompanyIndustry,
		CompanySize:      r.CompanySize,
		CompanyCommunity: r.CompanyCommunity,

		ContactName:        r.ContactName,
		ContactEmail:       r.ContactEmail,
		ContactPhone:       r.ContactPhone,
		ContactDesignation: r.ContactDesignation,

		Personnel: r.Personnel,
		Pricing:   r.Pricing,

		Status:          string(r.Status),
		PaymentStatus:   string(r.PaymentStatus),
		TermsAccepted:   r.TermsAccepted,
		PrivacyAccepted: r.PrivacyAccepted,

		CreatedAt: now,
		UpdatedAt: now,
	}

	if r.SingleEvent != nil {
		doc.SingleEvent = &singleEventDoc{Event: refToDoc(r.SingleEvent.Event)}
	}
	if r.Season != nil {
		season := seasonDoc{
			Number:           r.Season.Number,
			SelectedEventIDs: r.Season.SelectedEventIDs,
		}
		for _, ev := range r.Season.SelectedEventDetails {
			season.SelectedEventDetails = append(season.SelectedEventDetails, refToDoc(ev))
		}
		doc.Season = &season
	}
	return doc
}

func (d *registrationDoc) toModel() model.Registration {
	reg := model.Registration{
		ID:               d.ID.Hex(),
		ConfirmationCode: d.ConfirmationCode,
		Type:             model.RegistrationType(d.Type),

		CompanyName:      d.CompanyName,
		CompanyEmail:     d.CompanyEmail,
		CompanyPhone:     d.CompanyPhone,
		CompanyAddress:   d.CompanyAddress,
		CompanyIndustry:  d.CompanyIndustry,
		CompanySize:      d.CompanySize,
		CompanyCommunity: d.CompanyCommunity,

		ContactName:        d.ContactName,
		ContactEmail:       d.ContactEmail,
		ContactPhone:       d.ContactPhone,
		ContactDesignation: d.ContactDesignation,

		Personnel: d.Personnel,
		Pricing:   d.Pricing,

		Status:          model.Status(d.Status),
		PaymentStatus:   model.PaymentStatus(d.PaymentStatus),
		TermsAccepted:   d.TermsAccepted,
		PrivacyAccepted: d.PrivacyAccepted,

		UpdatedAt: timeutil.Normalize(d.UpdatedAt),
	}

	// createdAt with the legacy registrationDate as equivalent fallback.
	reg.CreatedAt = timeutil.Normalize(d.CreatedAt)
	if reg.CreatedAt == nil {
		reg.CreatedAt = timeutil.Normalize(d.RegistrationDate)
	}

	if d.SingleEvent != nil {
		reg.SingleEvent = &model.SingleEventDetails{Event: refToModel(d.SingleEvent.Event)}
	}
	if d.Season != nil {
		season := model.SeasonDetails{
			Number:           d.Season.Number,
			SelectedEventIDs: d.Season.SelectedEventIDs,
		}
		for _, ev := range d.Season.SelectedEventDetails {
			season.SelectedEventDetails = append(season.SelectedEventDetails, refToModel(ev))
		}
		reg.Season = &season
	}
	return reg
}

func (d *eventDoc) toModel() model.Event {
	return model.Event{
		ID:          d.ID.Hex(),
		Title:       d.Title,
		Description: d.Description,
		Date:        timeutil.Normalize(d.Date),
		Location:    d.Location,
		Slug:        d.Slug,
		Season:      d.Season,
	}
}
