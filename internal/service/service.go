// Package service implements business logic, validation, and orchestration
// between HTTP handlers and the repository layer.
package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/eventworks/season-registrations/internal/export"
	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/money"
	"github.com/eventworks/season-registrations/internal/pricing"
	"github.com/eventworks/season-registrations/internal/query"
)

// RegistrationStore is the persistence surface the service needs.
type RegistrationStore interface {
	Create(ctx context.Context, reg *model.Registration) (*model.Registration, error)
	GetByID(ctx context.Context, id string) (*model.Registration, error)
	GetAll(ctx context.Context, orderBy string, desc bool) ([]model.Registration, error)
	GetByField(ctx context.Context, field string, value any, orderBy string, desc bool) ([]model.Registration, error)
	UpdateStatus(ctx context.Context, id string, status model.Status) error
	UpdatePaymentStatus(ctx context.Context, id string, status model.PaymentStatus) error
	UpdateSeasonSelection(ctx context.Context, id string, season model.SeasonDetails, pricing model.Pricing) error
	Delete(ctx context.Context, id string) error
}

// EventCatalog is the catalog surface used to snapshot event details.
type EventCatalog interface {
	List(ctx context.Context) ([]model.Event, error)
	ListBySeason(ctx context.Context, season int) ([]model.Event, error)
	GetByID(ctx context.Context, id string) (*model.Event, error)
	GetBySlug(ctx context.Context, slug string) (*model.Event, error)
}

// RegistrationService orchestrates registration business operations.
type RegistrationService struct {
	store     RegistrationStore
	catalog   EventCatalog
	unitPrice money.Amount
	events    *cache.Cache
	log       *slog.Logger
}

// NewRegistrationService constructs a RegistrationService. catalogTTL
// bounds how stale the cached event catalog entries may get.
func NewRegistrationService(store RegistrationStore, catalog EventCatalog, unitPrice int64, catalogTTL time.Duration, log *slog.Logger) *RegistrationService {
	return &RegistrationService{
		store:     store,
		catalog:   catalog,
		unitPrice: money.FromInt(unitPrice),
		events:    cache.New(catalogTTL, 2*catalogTTL),
		log:       log,
	}
}

// CreateRegistration validates a draft, computes the derived financial
// fields, snapshots the selected events, and persists the result.
// Duplicate submissions by the same company are tolerated by design;
// deduplication is a caller-level lookup-before-create concern.
func (s *RegistrationService) CreateRegistration(ctx context.Context, draft model.RegistrationDraft) (*model.Registration, error) {
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	reg := model.Registration{
		ConfirmationCode: uuid.NewString(),
		Type:             draft.Type,

		CompanyName:      strings.TrimSpace(draft.CompanyName),
		CompanyEmail:     strings.TrimSpace(strings.ToLower(draft.CompanyEmail)),
		CompanyPhone:     strings.TrimSpace(draft.CompanyPhone),
		CompanyAddress:   strings.TrimSpace(draft.CompanyAddress),
		CompanyIndustry:  strings.TrimSpace(draft.CompanyIndustry),
		CompanySize:      strings.TrimSpace(draft.CompanySize),
		CompanyCommunity: draft.CompanyCommunity,

		ContactName:        strings.TrimSpace(draft.ContactName),
		ContactEmail:       strings.TrimSpace(strings.ToLower(draft.ContactEmail)),
		ContactPhone:       strings.TrimSpace(draft.ContactPhone),
		ContactDesignation: strings.TrimSpace(draft.ContactDesignation),

		Personnel: draft.Personnel,

		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentPending,
		TermsAccepted:   draft.TermsAccepted,
		PrivacyAccepted: draft.PrivacyAccepted,
	}
	if reg.CompanyCommunity == "" {
		reg.CompanyCommunity = "none"
	}

	selectedEventCount := 1
	switch draft.Type {
	case model.TypeSingleEvent:
		ev, err := s.eventByID(ctx, draft.EventID)
		if err != nil {
			return nil, err
		}
		reg.SingleEvent = &model.SingleEventDetails{Event: ev.Ref()}
	case model.TypeSeason:
		details, err := s.snapshotEvents(ctx, draft.SelectedEventIDs)
		if err != nil {
			return nil, err
		}
		reg.Season = &model.SeasonDetails{
			Number:               draft.SeasonNumber,
			SelectedEventIDs:     draft.SelectedEventIDs,
			SelectedEventDetails: details,
		}
		selectedEventCount = len(draft.SelectedEventIDs)
	}

	result, err := pricing.Compute(draft.Personnel, selectedEventCount, reg.CompanyCommunity, s.unitPrice)
	if err != nil {
		return nil, err
	}
	reg.Pricing = result.Fields()

	created, err := s.store.Create(ctx, &reg)
	if err != nil {
		return nil, err
	}
	s.log.Info("registration created",
		"id", created.ID,
		"type", created.Type,
		"company", created.CompanyName,
		"totalCost", created.Pricing.TotalCost)
	return created, nil
}

// GetRegistration returns a single registration by id.
func (s *RegistrationService) GetRegistration(ctx context.Context, id string) (*model.Registration, error) {
	return s.store.GetByID(ctx, id)
}

// ListRegistrations fetches all registrations and applies the admin
// filters, sort, and pagination.
func (s *RegistrationService) ListRegistrations(ctx context.Context, p query.Params) (query.Page, error) {
	records, err := s.store.GetAll(ctx, query.KeyCreatedAt, true)
	if err != nil {
		return query.Page{}, err
	}
	return query.Run(records, p), nil
}

// ListSeasonRegistrations narrows the fetch to one season at the store
// before applying the admin filters, sort, and pagination.
func (s *RegistrationService) ListSeasonRegistrations(ctx context.Context, season int, p query.Params) (query.Page, error) {
	records, err := s.store.GetByField(ctx, "season.number", season, query.KeyCreatedAt, true)
	if err != nil {
		return query.Page{}, err
	}
	return query.Run(records, p), nil
}

// ExportRegistrations renders the full filtered, sorted result set as
// CSV and returns the text plus the download filename.
func (s *RegistrationService) ExportRegistrations(ctx context.Context, p query.Params) (csvText, filename string, err error) {
	records, err := s.store.GetAll(ctx, query.KeyCreatedAt, true)
	if err != nil {
		return "", "", err
	}
	matched := query.Apply(records, p)
	return export.ToCSV(matched), export.Filename(time.Now()), nil
}

// UpdateStatus applies a lifecycle and/or payment transition.
func (s *RegistrationService) UpdateStatus(ctx context.Context, id string, req model.StatusUpdateRequest) error {
	if req.Status == "" && req.PaymentStatus == "" {
		return fmt.Errorf("%w: no status change requested", pricing.ErrInvalidRegistration)
	}
	if req.Status != "" {
		if !validStatus(req.Status) {
			return fmt.Errorf("%w: unknown status %q", pricing.ErrInvalidRegistration, req.Status)
		}
		if err := s.store.UpdateStatus(ctx, id, req.Status); err != nil {
			return err
		}
	}
	if req.PaymentStatus != "" {
		if !validPaymentStatus(req.PaymentStatus) {
			return fmt.Errorf("%w: unknown payment status %q", pricing.ErrInvalidRegistration, req.PaymentStatus)
		}
		if err := s.store.UpdatePaymentStatus(ctx, id, req.PaymentStatus); err != nil {
			return err
		}
	}
	return nil
}

// CorrectSeasonSelection replaces a season registration's selected
// events, re-snapshotting the catalog details and re-deriving the
// financial fields from the stored personnel list.
func (s *RegistrationService) CorrectSeasonSelection(ctx context.Context, id string, eventIDs []string) error {
	if len(eventIDs) == 0 {
		return fmt.Errorf("%w: a season registration needs at least one selected event", pricing.ErrInvalidRegistration)
	}

	reg, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !reg.IsSeason() || reg.Season == nil {
		return fmt.Errorf("%w: registration %s is not a season registration", pricing.ErrInvalidRegistration, id)
	}

	details, err := s.snapshotEvents(ctx, eventIDs)
	if err != nil {
		return err
	}
	result, err := pricing.Compute(reg.Personnel, len(eventIDs), reg.CompanyCommunity, s.unitPrice)
	if err != nil {
		return err
	}

	season := model.SeasonDetails{
		Number:               reg.Season.Number,
		SelectedEventIDs:     eventIDs,
		SelectedEventDetails: details,
	}
	return s.store.UpdateSeasonSelection(ctx, id, season, result.Fields())
}

// DeleteRegistration removes a registration. Administrative only.
func (s *RegistrationService) DeleteRegistration(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

// ListEvents returns the event catalog.
func (s *RegistrationService) ListEvents(ctx context.Context) ([]model.Event, error) {
	return s.catalog.List(ctx)
}

// ListSeasonEvents returns the catalog events grouped under one season.
func (s *RegistrationService) ListSeasonEvents(ctx context.Context, season int) ([]model.Event, error) {
	return s.catalog.ListBySeason(ctx, season)
}

// GetEventBySlug resolves a catalog event by its URL slug.
func (s *RegistrationService) GetEventBySlug(ctx context.Context, slug string) (*model.Event, error) {
	return s.catalog.GetBySlug(ctx, slug)
}

// Tiers returns the community tier table for the registration form.
func (s *RegistrationService) Tiers() []pricing.Tier {
	return pricing.Tiers()
}

// snapshotEvents resolves each selected event and captures its details
// at submission time.
func (s *RegistrationService) snapshotEvents(ctx context.Context, ids []string) ([]model.EventRef, error) {
	details := make([]model.EventRef, 0, len(ids))
	for _, id := range ids {
		ev, err := s.eventByID(ctx, id)
		if err != nil {
			return nil, err
		}
		details = append(details, ev.Ref())
	}
	return details, nil
}

// eventByID reads a catalog event through the TTL cache. Catalog
// entries change rarely; registrations snapshot them anyway.
func (s *RegistrationService) eventByID(ctx context.Context, id string) (*model.Event, error) {
	if cached, ok := s.events.Get(id); ok {
		return cached.(*model.Event), nil
	}
	ev, err := s.catalog.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.events.SetDefault(id, ev)
	return ev, nil
}

// validateDraft enforces the creation-time invariants the store does
// not: accepted terms, required identity fields, and a shape that
// matches the declared registration type.
func validateDraft(d *model.RegistrationDraft) error {
	invalid := func(msg string) error {
		return fmt.Errorf("%w: %s", pricing.ErrInvalidRegistration, msg)
	}

	if !d.TermsAccepted || !d.PrivacyAccepted {
		return invalid("terms and privacy policy must be accepted")
	}
	if strings.TrimSpace(d.CompanyName) == "" {
		return invalid("company name is required")
	}
	if strings.TrimSpace(d.ContactName) == "" || strings.TrimSpace(d.ContactEmail) == "" {
		return invalid("primary contact name and email are required")
	}
	if len(d.Personnel) == 0 {
		return invalid("at least one personnel entry is required")
	}

	attending := 0
	for _, p := range d.Personnel {
		if p.IsAttending {
			attending++
		}
	}
	if attending == 0 {
		return invalid("at least one attending person is required")
	}

	switch d.Type {
	case model.TypeSingleEvent:
		if d.EventID == "" {
			return invalid("an event id is required for a single-event registration")
		}
	case model.TypeSeason:
		if d.SeasonNumber < 1 {
			return invalid("a season number is required")
		}
		if len(d.SelectedEventIDs) == 0 {
			return invalid("a season registration needs at least one selected event")
		}
	default:
		return invalid(fmt.Sprintf("unknown registration type %q", d.Type))
	}
	return nil
}

func validStatus(s model.Status) bool {
	switch s {
	case model.StatusPending, model.StatusConfirmed, model.StatusCancelled:
		return true
	}
	return false
}

func validPaymentStatus(s model.PaymentStatus) bool {
	switch s {
	case model.PaymentPending, model.PaymentPaid, model.PaymentFailed, model.PaymentRefunded:
		return true
	}
	return false
}
