// Package query filters, sorts, and paginates registration lists for
// the admin views and the CSV export. Everything here is pure in-memory
// computation over records the repository already fetched.
package query

import (
	"strings"

	"github.com/eventworks/season-registrations/internal/model"
)

// DefaultPageSize is the fixed admin listing page size.
const DefaultPageSize = 10

// FilterAll disables a filter predicate.
const FilterAll = "all"

// Sort directions.
const (
	SortAsc  = "asc"
	SortDesc = "desc"
)

// Params are the admin query parameters. Zero values mean "show
// everything, newest first, page 1".
type Params struct {
	SearchTerm        string
	StatusFilter      string
	TypeFilter        string
	CompanyTypeFilter string
	SortKey           string
	SortDir           string
	Page              int
	PageSize          int
}

// Page is one page of a filtered, sorted result set.
type Page struct {
	Items      []model.Registration `json:"items"`
	TotalCount int                  `json:"total_count"`
	TotalPages int                  `json:"total_pages"`
	Page       int                  `json:"page"`
}

// Run applies filters, sorts, and paginates. Out-of-range pages return
// an empty item slice, never an error; callers are expected to clamp,
// but the engine does not assume they did.
func Run(records []model.Registration, p Params) Page {
	matched := Apply(records, p)

	pageSize := p.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	totalCount := len(matched)
	totalPages := (totalCount + pageSize - 1) / pageSize
	if totalPages < 1 {
		totalPages = 1
	}

	page := p.Page
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	items := []model.Registration{}
	if start < totalCount {
		end := start + pageSize
		if end > totalCount {
			end = totalCount
		}
		items = matched[start:end]
	}

	return Page{
		Items:      items,
		TotalCount: totalCount,
		TotalPages: totalPages,
		Page:       page,
	}
}

// Apply filters and sorts without paginating. Used by the CSV export,
// which always emits the full matched set.
func Apply(records []model.Registration, p Params) []model.Registration {
	matched := make([]model.Registration, 0, len(records))
	for _, r := range records {
		if matches(&r, p) {
			matched = append(matched, r)
		}
	}

	sortKey := p.SortKey
	if sortKey == "" {
		sortKey = KeyCreatedAt
	}
	desc := p.SortDir != SortAsc
	SortRegistrations(matched, sortKey, desc)
	return matched
}

// matches evaluates the conjunction of all active predicates.
func matches(r *model.Registration, p Params) bool {
	if term := strings.ToLower(strings.TrimSpace(p.SearchTerm)); term != "" {
		if !matchesSearch(r, term) {
			return false
		}
	}

	if status := normalizeFilter(p.StatusFilter); status != "" {
		if string(r.Status) != status {
			return false
		}
	}

	switch normalizeFilter(p.TypeFilter) {
	case string(model.TypeSeason):
		if !r.IsSeason() {
			return false
		}
	case string(model.TypeSingleEvent):
		// Records predating the discriminator carry no type tag;
		// anything that is not a season counts as single-event.
		if r.IsSeason() {
			return false
		}
	}

	if companyType := normalizeFilter(p.CompanyTypeFilter); companyType != "" {
		if r.CompanyType() != companyType {
			return false
		}
	}

	return true
}

// matchesSearch is the one OR-shaped predicate: a case-insensitive hit
// on any of company name, contact name, event title, or the season
// number satisfies it.
func matchesSearch(r *model.Registration, term string) bool {
	for _, field := range []string{
		r.CompanyName,
		r.ContactName,
		r.EventTitle(),
		r.SeasonNumberString(),
	} {
		if field != "" && strings.Contains(strings.ToLower(field), term) {
			return true
		}
	}
	return false
}

// normalizeFilter lowercases a filter value and maps "all" to the
// disabled (empty) state.
func normalizeFilter(v string) string {
	v = strings.ToLower(strings.TrimSpace(v))
	if v == FilterAll {
		return ""
	}
	return v
}
