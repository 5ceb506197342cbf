package query

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/eventworks/season-registrations/internal/model"
)

// Sort keys accepted by the engine and by ordered repository fetches.
const (
	KeyCreatedAt      = "createdAt"
	KeyCompanyName    = "companyName"
	KeyContactName    = "contactName"
	KeyEventTitle     = "eventTitle"
	KeyTotalCost      = "totalCost"
	KeyStatus         = "status"
	KeyAttendingCount = "attendingCount"
	KeySeason         = "season"
)

// FieldValue extracts the sortable value for a registration field.
// Unknown keys fall back to the creation time so ordering stays
// well-defined for every input.
func FieldValue(r *model.Registration, key string) any {
	switch key {
	case KeyCompanyName:
		return r.CompanyName
	case KeyContactName:
		return r.ContactName
	case KeyEventTitle:
		return r.EventTitle()
	case KeyTotalCost:
		return r.Pricing.TotalCost
	case KeyStatus:
		return string(r.Status)
	case KeyAttendingCount:
		return r.Pricing.AttendingCount
	case KeySeason:
		if r.Season != nil {
			return r.Season.Number
		}
		return 0
	default:
		return r.CreatedAt
	}
}

// CompareValues orders two field values: dates by instant with missing
// dates treated as earliest, strings case-insensitively, numbers
// numerically, anything else by its natural string form.
func CompareValues(a, b any) int {
	at, aIsTime := asTime(a)
	bt, bIsTime := asTime(b)
	if aIsTime && bIsTime {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		default:
			return 0
		}
	}

	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(as), strings.ToLower(bs))
		}
	}

	af, aIsNum := asFloat(a)
	bf, bIsNum := asFloat(b)
	if aIsNum && bIsNum {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}

	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

// SortRegistrations stably sorts records in place by the given key.
// Equal keys preserve relative input order, so toggling the direction
// twice restores the original order.
func SortRegistrations(records []model.Registration, key string, desc bool) {
	sort.SliceStable(records, func(i, j int) bool {
		c := CompareValues(FieldValue(&records[i], key), FieldValue(&records[j], key))
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// asTime recognizes date-valued fields. A nil *time.Time is still a
// date for comparison purposes and sorts as the earliest instant.
func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case *time.Time:
		if t == nil {
			return time.Time{}, true
		}
		return *t, true
	default:
		return time.Time{}, false
	}
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
