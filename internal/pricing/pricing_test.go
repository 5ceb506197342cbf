package pricing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/money"
)

var unit = money.FromInt(DefaultUnitPrice)

func attendees(n int) []model.PersonnelMember {
	out := make([]model.PersonnelMember, n)
	for i := range out {
		out[i] = model.PersonnelMember{Name: "Person", IsAttending: true}
	}
	return out
}

func TestCompute_FreeSlotTier_SingleAttendeeThreeEvents(t *testing.T) {
	res, err := Compute(attendees(1), 3, "founding-partner", unit)
	require.NoError(t, err)
	require.Equal(t, 3, res.TotalEventAttendances)
	require.Equal(t, 3, res.FreeSlots, "one free attendee per selected event")
	require.Equal(t, float64(0), res.TotalCost.Float64())
	require.Equal(t, float64(12000), res.BaseAmount.Float64())
	require.Equal(t, float64(12000), res.Savings.Float64())
	require.Equal(t, float64(0), res.DiscountAmount.Float64())
}

func TestCompute_FreeSlotTier_TwoAttendeesTwoEvents(t *testing.T) {
	res, err := Compute(attendees(2), 2, "founding-partner", unit)
	require.NoError(t, err)
	require.Equal(t, 4, res.TotalEventAttendances)
	require.Equal(t, 2, res.FreeSlots)
	require.Equal(t, float64(8000), res.TotalCost.Float64(), "two of four attendances are paid")
	require.Equal(t, float64(16000), res.BaseAmount.Float64())
	require.Equal(t, float64(8000), res.Savings.Float64())
}

func TestCompute_PercentageTier(t *testing.T) {
	res, err := Compute(attendees(1), 1, "chamber-network", unit)
	require.NoError(t, err)
	require.Equal(t, float64(4000), res.BaseAmount.Float64())
	require.Equal(t, float64(3600), res.TotalCost.Float64())
	require.Equal(t, float64(400), res.DiscountAmount.Float64())
	require.Equal(t, float64(400), res.Savings.Float64())
	require.Equal(t, 0, res.FreeSlots)
}

func TestCompute_NoTier_CostEqualsBase(t *testing.T) {
	res, err := Compute(attendees(3), 2, "none", unit)
	require.NoError(t, err)
	require.Equal(t, res.BaseAmount.Float64(), res.TotalCost.Float64())
	require.Equal(t, float64(0), res.DiscountAmount.Float64())
	require.Equal(t, float64(0), res.Savings.Float64())
}

func TestCompute_EmptyTierID_DefaultsToNone(t *testing.T) {
	res, err := Compute(attendees(1), 1, "", unit)
	require.NoError(t, err)
	require.Equal(t, "No Community", res.TierName)
	require.Equal(t, float64(4000), res.TotalCost.Float64())
}

func TestCompute_ZeroAttending_Invalid(t *testing.T) {
	personnel := []model.PersonnelMember{
		{Name: "A", IsAttending: false},
		{Name: "B", IsAttending: false},
	}
	_, err := Compute(personnel, 2, "none", unit)
	require.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestCompute_UnknownTier_Invalid(t *testing.T) {
	_, err := Compute(attendees(1), 1, "platinum-elite", unit)
	require.ErrorIs(t, err, ErrInvalidRegistration)
}

func TestCompute_FreeSlotTier_ZeroEvents_ComputesToZero(t *testing.T) {
	// Zero selected events is rejected upstream by validation; the
	// computation itself must degenerate to zeros without error.
	res, err := Compute(attendees(2), 0, "founding-partner", unit)
	require.NoError(t, err)
	require.Equal(t, 0, res.FreeSlots)
	require.Equal(t, float64(0), res.TotalCost.Float64())
	require.Equal(t, float64(0), res.BaseAmount.Float64())
}

func TestCompute_NonAttendingExcluded(t *testing.T) {
	personnel := append(attendees(2), model.PersonnelMember{Name: "Observer", IsAttending: false})
	res, err := Compute(personnel, 3, "none", unit)
	require.NoError(t, err)
	require.Equal(t, 2, res.AttendingCount)
	require.Equal(t, 6, res.TotalEventAttendances)
}

func TestCompute_SavingsNeverNegative(t *testing.T) {
	for _, tier := range Tiers() {
		for _, events := range []int{1, 2, 5} {
			for _, n := range []int{1, 2, 7} {
				res, err := Compute(attendees(n), events, tier.ID, unit)
				require.NoError(t, err)
				require.False(t, res.Savings.IsNegative(),
					"tier %s, %d attendees, %d events", tier.ID, n, events)
				require.False(t, res.TotalCost.IsNegative())
			}
		}
	}
}

func TestCompute_ChainedDiscountExact(t *testing.T) {
	// 15% of 4000 is 600 exactly; repeated decimal math must not drift.
	res, err := Compute(attendees(7), 9, "startup-circle", unit)
	require.NoError(t, err)
	require.Equal(t, float64(252000), res.BaseAmount.Float64())
	require.Equal(t, float64(214200), res.TotalCost.Float64())
	require.Equal(t, float64(37800), res.DiscountAmount.Float64())
	require.Equal(t, res.BaseAmount.Sub(res.TotalCost).Float64(), res.Savings.Float64())
}

func TestTierTable_ExactlyOneFreeSlotTier(t *testing.T) {
	freeSlotTiers := 0
	for _, tier := range Tiers() {
		if tier.HasFreeSlots() {
			freeSlotTiers++
			require.Zero(t, tier.DiscountPercent, "benefit types are mutually exclusive")
		}
	}
	require.Equal(t, 1, freeSlotTiers)
}
