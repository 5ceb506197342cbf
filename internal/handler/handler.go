// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/pricing"
	"github.com/eventworks/season-registrations/internal/query"
	"github.com/eventworks/season-registrations/internal/repository"
	"github.com/eventworks/season-registrations/internal/service"
)

// RegistrationHandler holds all HTTP handlers for the registration API.
type RegistrationHandler struct {
	svc *service.RegistrationService
}

// NewRegistrationHandler constructs a RegistrationHandler.
func NewRegistrationHandler(svc *service.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps the error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pricing.ErrInvalidRegistration):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "registration not found")
	case errors.Is(err, repository.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, "store access denied; check configuration")
	case errors.Is(err, repository.ErrStoreUnavailable):
		writeError(w, http.StatusServiceUnavailable, "store temporarily unavailable; retry later")
	default:
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

// queryParams parses the admin listing parameters. Everything is
// optional and defaults to "show everything, newest first, page 1".
func queryParams(r *http.Request) query.Params {
	q := r.URL.Query()
	p := query.Params{
		SearchTerm:        q.Get("search"),
		StatusFilter:      q.Get("status"),
		TypeFilter:        q.Get("type"),
		CompanyTypeFilter: q.Get("companyType"),
		SortKey:           q.Get("sortKey"),
		SortDir:           q.Get("sortDir"),
	}
	if page, err := strconv.Atoi(q.Get("page")); err == nil {
		p.Page = page
	}
	if size, err := strconv.Atoi(q.Get("pageSize")); err == nil {
		p.PageSize = size
	}
	return p
}

// ─── Handlers ─────────────────────────────────────────────────────────────────

// CreateRegistration handles POST /registrations
// Validates a draft, computes pricing, and persists the registration.
func (h *RegistrationHandler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var draft model.RegistrationDraft
	if err := decodeJSON(r, &draft); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	created, err := h.svc.CreateRegistration(r.Context(), draft)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

// ListRegistrations handles GET /registrations
// Returns one filtered, sorted page of registrations.
func (h *RegistrationHandler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	page, err := h.svc.ListRegistrations(r.Context(), queryParams(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ListSeasonRegistrations handles GET /registrations/season/{number}
// Returns one page of registrations for a single season, narrowed at
// the store rather than in memory.
func (h *RegistrationHandler) ListSeasonRegistrations(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		writeError(w, http.StatusBadRequest, "invalid season number")
		return
	}

	page, err := h.svc.ListSeasonRegistrations(r.Context(), number, queryParams(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, page)
}

// ExportRegistrations handles GET /registrations/export
// Streams the filtered result set as a CSV download.
func (h *RegistrationHandler) ExportRegistrations(w http.ResponseWriter, r *http.Request) {
	csvText, filename, err := h.svc.ExportRegistrations(r.Context(), queryParams(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv;charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(csvText))
}

// GetRegistration handles GET /registrations/{id}
func (h *RegistrationHandler) GetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := h.svc.GetRegistration(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

// UpdateRegistrationStatus handles PATCH /registrations/{id}/status
func (h *RegistrationHandler) UpdateRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	var req model.StatusUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.UpdateStatus(r.Context(), id, req); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "result": "updated"})
}

// CorrectSeasonSelection handles PUT /registrations/{id}/events
// Replaces a season registration's selected events and reprices it.
func (h *RegistrationHandler) CorrectSeasonSelection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SelectedEventIDs []string `json:"selected_event_ids"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	if err := h.svc.CorrectSeasonSelection(r.Context(), id, req.SelectedEventIDs); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "result": "updated"})
}

// DeleteRegistration handles DELETE /registrations/{id}
// Administrative escape hatch; deleting a missing id is an error.
func (h *RegistrationHandler) DeleteRegistration(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteRegistration(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "registration not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": id, "result": "deleted"})
}

// ListEvents handles GET /events
func (h *RegistrationHandler) ListEvents(w http.ResponseWriter, r *http.Request) {
	events, err := h.svc.ListEvents(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// ListSeasonEvents handles GET /events/season/{number}
func (h *RegistrationHandler) ListSeasonEvents(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number < 1 {
		writeError(w, http.StatusBadRequest, "invalid season number")
		return
	}

	events, err := h.svc.ListSeasonEvents(r.Context(), number)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if events == nil {
		events = []model.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

// GetEvent handles GET /events/{slug}
func (h *RegistrationHandler) GetEvent(w http.ResponseWriter, r *http.Request) {
	ev, err := h.svc.GetEventBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			writeError(w, http.StatusNotFound, "event not found")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ListTiers handles GET /tiers
// Returns the community tier table for the registration form.
func (h *RegistrationHandler) ListTiers(w http.ResponseWriter, r *http.Request) {
	type tierResponse struct {
		ID              string  `json:"id"`
		Name            string  `json:"name"`
		DiscountPercent float64 `json:"discount_percent"`
		FreeSlotCount   int     `json:"free_slot_count"`
	}
	tiers := h.svc.Tiers()
	out := make([]tierResponse, 0, len(tiers))
	for _, t := range tiers {
		out = append(out, tierResponse{
			ID:              t.ID,
			Name:            t.Name,
			DiscountPercent: t.DiscountPercent,
			FreeSlotCount:   t.FreeSlotCount,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
