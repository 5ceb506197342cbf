// Package pricing implements the season/single-event pricing policy:
// community tiers, percentage discounts, and free-slot allocation.
// Everything here is pure computation with no I/O.
package pricing

import (
	"errors"
	"fmt"

	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/money"
)

// DefaultUnitPrice is the flat per-person-per-event rate.
const DefaultUnitPrice = 4000

// ErrInvalidRegistration is returned when a draft fails pricing or
// creation preconditions: zero attending personnel, zero selected
// events, unknown community tier. Always rejected before any write.
var ErrInvalidRegistration = errors.New("invalid registration")

// Tier is a community membership category. A tier confers either a
// percentage discount or free slots, never both.
type Tier struct {
	ID              string
	Name            string
	DiscountPercent float64
	FreeSlotCount   int
}

// HasFreeSlots reports whether the tier's benefit is free slots rather
// than a percentage discount.
func (t Tier) HasFreeSlots() bool {
	return t.FreeSlotCount > 0
}

// tiers is the static community tier table. It is configuration, not a
// stored collection.
var tiers = []Tier{
	{ID: "none", Name: "No Community"},
	{ID: "chamber-network", Name: "Chamber Network", DiscountPercent: 10},
	{ID: "startup-circle", Name: "Startup Circle", DiscountPercent: 15},
	{ID: "womens-business-forum", Name: "Women's Business Forum", DiscountPercent: 20},
	{ID: "founding-partner", Name: "Founding Partner", FreeSlotCount: 1},
}

// Tiers returns the full tier table.
func Tiers() []Tier {
	out := make([]Tier, len(tiers))
	copy(out, tiers)
	return out
}

// TierByID resolves a tier id. An empty id resolves to the "none" tier.
func TierByID(id string) (Tier, bool) {
	if id == "" {
		id = "none"
	}
	for _, t := range tiers {
		if t.ID == id {
			return t, true
		}
	}
	return Tier{}, false
}

// Result carries every derived financial field for a registration.
type Result struct {
	AttendingCount        int
	SelectedEventCount    int
	TotalEventAttendances int
	BaseAmount            money.Amount
	DiscountAmount        money.Amount
	FreeSlots             int
	TotalCost             money.Amount
	Savings               money.Amount
	TierName              string
}

// Fields converts the result into the stored financial fields.
func (r Result) Fields() model.Pricing {
	return model.Pricing{
		AttendingCount:        r.AttendingCount,
		SelectedEventCount:    r.SelectedEventCount,
		TotalEventAttendances: r.TotalEventAttendances,
		BaseAmount:            r.BaseAmount.Float64(),
		DiscountAmount:        r.DiscountAmount.Float64(),
		FreeSlots:             r.FreeSlots,
		TotalCost:             r.TotalCost.Float64(),
		Savings:               r.Savings.Float64(),
		TierName:              r.TierName,
	}
}

// Compute prices a registration. selectedEventCount is 1 for
// single-event registrations and the number of selected events for a
// season. The free-slot benefit grants one attendee free entry to every
// selected event, so free attendances scale with the event count, not
// the attendee count.
func Compute(personnel []model.PersonnelMember, selectedEventCount int, tierID string, unitPrice money.Amount) (Result, error) {
	attending := 0
	for _, p := range personnel {
		if p.IsAttending {
			attending++
		}
	}
	if attending == 0 {
		return Result{}, fmt.Errorf("%w: at least one attending person is required", ErrInvalidRegistration)
	}

	tier, ok := TierByID(tierID)
	if !ok {
		return Result{}, fmt.Errorf("%w: unknown community tier %q", ErrInvalidRegistration, tierID)
	}

	total := attending * selectedEventCount
	base := unitPrice.MulInt(total)

	res := Result{
		AttendingCount:        attending,
		SelectedEventCount:    selectedEventCount,
		TotalEventAttendances: total,
		BaseAmount:            base,
		TierName:              tier.Name,
	}

	if tier.HasFreeSlots() {
		free := tier.FreeSlotCount * selectedEventCount
		paid := total - free
		if paid < 0 {
			// More free slots granted than attendances to use them.
			paid = 0
		}
		res.FreeSlots = free
		res.TotalCost = unitPrice.MulInt(paid)
	} else {
		discountedUnit := unitPrice.PercentOff(tier.DiscountPercent)
		res.TotalCost = discountedUnit.MulInt(total)
		res.DiscountAmount = unitPrice.Sub(discountedUnit).MulInt(total)
	}

	res.Savings = res.BaseAmount.Sub(res.TotalCost)
	return res, nil
}
