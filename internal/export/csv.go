// Package export serializes registration lists to CSV for the admin
// download. The format is a contract with downstream spreadsheet
// consumers: fixed column order, every text cell quoted, absent text
// rendered as N/A, absent numbers rendered as 0, list-valued fields
// flattened into one cell with a "; " delimiter.
package export

import (
	"strconv"
	"strings"
	"time"

	"github.com/eventworks/season-registrations/internal/model"
)

// listDelimiter joins flattened list values inside a single cell.
const listDelimiter = "; "

// Headers is the fixed column order of the export.
var Headers = []string{
	"Registration ID",
	"Confirmation Code",
	"Type",
	"Company Name",
	"Company Email",
	"Company Phone",
	"Company Address",
	"Industry",
	"Company Size",
	"Community",
	"Contact Name",
	"Contact Email",
	"Contact Phone",
	"Contact Designation",
	"Personnel",
	"Attending Count",
	"Season",
	"Selected Events",
	"Selected Event Count",
	"Total Event Attendances",
	"Base Amount",
	"Discount Amount",
	"Free Slots",
	"Total Cost",
	"Savings",
	"Status",
	"Payment Status",
	"Terms Accepted",
	"Privacy Accepted",
	"Created At",
}

// ToCSV renders registrations as CSV text in the fixed column order.
func ToCSV(records []model.Registration) string {
	var b strings.Builder

	writeRow(&b, quoteAll(Headers))
	for i := range records {
		writeRow(&b, row(&records[i]))
	}
	return b.String()
}

// Filename returns the download filename for an export generated now.
func Filename(now time.Time) string {
	return "event_registrations_" + now.UTC().Format("2006-01-02") + ".csv"
}

func row(r *model.Registration) []string {
	seasonNumber := ""
	var eventTitles []string
	switch {
	case r.IsSeason() && r.Season != nil:
		seasonNumber = strconv.Itoa(r.Season.Number)
		for _, ev := range r.Season.SelectedEventDetails {
			eventTitles = append(eventTitles, ev.Title)
		}
	case r.SingleEvent != nil:
		eventTitles = append(eventTitles, r.SingleEvent.Event.Title)
	}

	var personnel []string
	for _, p := range r.Personnel {
		personnel = append(personnel, p.Name+" <"+p.Email+">")
	}

	createdAt := ""
	if r.CreatedAt != nil {
		createdAt = r.CreatedAt.UTC().Format(time.RFC3339)
	}

	return []string{
		text(r.ID),
		text(r.ConfirmationCode),
		text(string(r.Type)),
		text(r.CompanyName),
		text(r.CompanyEmail),
		text(r.CompanyPhone),
		text(r.CompanyAddress),
		text(r.CompanyIndustry),
		text(r.CompanySize),
		text(r.CompanyCommunity),
		text(r.ContactName),
		text(r.ContactEmail),
		text(r.ContactPhone),
		text(r.ContactDesignation),
		text(strings.Join(personnel, listDelimiter)),
		number(float64(r.Pricing.AttendingCount)),
		text(seasonNumber),
		text(strings.Join(eventTitles, listDelimiter)),
		number(float64(r.Pricing.SelectedEventCount)),
		number(float64(r.Pricing.TotalEventAttendances)),
		number(r.Pricing.BaseAmount),
		number(r.Pricing.DiscountAmount),
		number(float64(r.Pricing.FreeSlots)),
		number(r.Pricing.TotalCost),
		number(r.Pricing.Savings),
		text(string(r.Status)),
		text(string(r.PaymentStatus)),
		boolean(r.TermsAccepted),
		boolean(r.PrivacyAccepted),
		text(createdAt),
	}
}

// text quotes a string cell, escaping inner quotes by doubling them.
// Absent values render as the literal N/A so consumers can tell "not
// collected" apart from an empty string that was collected.
func text(v string) string {
	if v == "" {
		v = "N/A"
	}
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// number renders a numeric cell unquoted; absent numerics are 0, never
// N/A.
func number(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func boolean(v bool) string {
	if v {
		return `"yes"`
	}
	return `"no"`
}

func quoteAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = `"` + v + `"`
	}
	return out
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString(strings.Join(cells, ","))
	b.WriteString("\r\n")
}
