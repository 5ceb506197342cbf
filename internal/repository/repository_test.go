package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/eventworks/season-registrations/internal/model"
	"github.com/eventworks/season-registrations/internal/query"
)

func TestDocumentRoundTrip(t *testing.T) {
	date := time.Date(2025, 4, 1, 9, 0, 0, 0, time.UTC)
	reg := model.Registration{
		ConfirmationCode: "conf-9",
		Type:             model.TypeSeason,
		CompanyName:      "Acme Holdings",
		CompanyEmail:     "info@acme.example",
		CompanyCommunity: "startup-circle",
		ContactName:      "Nadia Perera",
		Personnel: []model.PersonnelMember{
			{Name: "Nadia Perera", Email: "n@acme.example", IsAttending: true},
			{Name: "Observer", Email: "o@acme.example", IsAttending: false},
		},
		Season: &model.SeasonDetails{
			Number:           7,
			SelectedEventIDs: []string{"e1"},
			SelectedEventDetails: []model.EventRef{
				{ID: "e1", Title: "Annual Summit", Date: &date, Slug: "annual-summit"},
			},
		},
		Pricing: model.Pricing{
			AttendingCount: 1, SelectedEventCount: 1, TotalEventAttendances: 1,
			BaseAmount: 4000, TotalCost: 3400, DiscountAmount: 600, Savings: 600,
			TierName: "Startup Circle",
		},
		Status:          model.StatusPending,
		PaymentStatus:   model.PaymentPending,
		TermsAccepted:   true,
		PrivacyAccepted: true,
	}

	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	doc := newRegistrationDoc(&reg, now)
	doc.ID = primitive.NewObjectID()

	got := doc.toModel()
	require.Equal(t, doc.ID.Hex(), got.ID)
	require.Equal(t, reg.Type, got.Type)
	require.Equal(t, reg.CompanyName, got.CompanyName)
	require.Equal(t, reg.Personnel, got.Personnel)
	require.Equal(t, reg.Pricing, got.Pricing)
	require.Equal(t, reg.Season, got.Season)
	require.NotNil(t, got.CreatedAt)
	require.True(t, got.CreatedAt.Equal(now))
	require.NotNil(t, got.UpdatedAt)
	require.True(t, got.UpdatedAt.Equal(now))
}

func TestNewRegistrationDoc_IgnoresClientTimestamps(t *testing.T) {
	clientTime := time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC)
	reg := model.Registration{CreatedAt: &clientTime, UpdatedAt: &clientTime}

	now := time.Date(2025, 4, 2, 10, 0, 0, 0, time.UTC)
	doc := newRegistrationDoc(&reg, now)
	require.Equal(t, now, doc.CreatedAt)
	require.Equal(t, now, doc.UpdatedAt)
}

func TestToModel_HeterogeneousTimestamps(t *testing.T) {
	want := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	encodings := []any{
		want,
		primitive.NewDateTimeFromTime(want),
		want.UnixMilli(),
		"2024-06-01T12:30:00Z",
		primitive.M{"seconds": want.Unix(), "nanoseconds": int64(0)},
	}
	for i, raw := range encodings {
		doc := registrationDoc{CreatedAt: raw}
		got := doc.toModel()
		require.NotNil(t, got.CreatedAt, "encoding %d", i)
		require.True(t, got.CreatedAt.Equal(want), "encoding %d", i)
	}
}

func TestToModel_LegacyRegistrationDateFallback(t *testing.T) {
	want := time.Date(2023, 2, 1, 8, 0, 0, 0, time.UTC)
	doc := registrationDoc{RegistrationDate: "2023-02-01T08:00:00Z"}
	got := doc.toModel()
	require.NotNil(t, got.CreatedAt)
	require.True(t, got.CreatedAt.Equal(want))

	// createdAt wins when both are present.
	doc.CreatedAt = want.Add(time.Hour)
	got = doc.toModel()
	require.True(t, got.CreatedAt.Equal(want.Add(time.Hour)))
}

func TestToModel_UnparseableTimestampIsNil(t *testing.T) {
	doc := registrationDoc{CreatedAt: "not a date"}
	got := doc.toModel()
	require.Nil(t, got.CreatedAt)
}

func TestIsSortUnsupported(t *testing.T) {
	require.True(t, isSortUnsupported(mongo.CommandError{Code: 96, Message: "OperationFailed"}))
	require.True(t, isSortUnsupported(mongo.CommandError{Code: 292, Message: "Sort exceeded memory limit"}))
	require.True(t, isSortUnsupported(mongo.CommandError{Code: 2, Message: "cannot sort with this index"}))
	require.False(t, isSortUnsupported(mongo.CommandError{Code: 13, Message: "Unauthorized"}))
	require.False(t, isSortUnsupported(errors.New("connection refused")))
	require.False(t, isSortUnsupported(nil))
}

func TestErrorClassification(t *testing.T) {
	unauthorized := mongo.CommandError{Code: 13, Message: "Unauthorized"}
	require.ErrorIs(t, readErr("find", unauthorized), ErrPermissionDenied)
	require.ErrorIs(t, writeErr("insert", unauthorized), ErrPermissionDenied)

	generic := errors.New("duplicate key")
	err := writeErr("insert", generic)
	require.ErrorIs(t, err, ErrWriteFailed)
	require.Contains(t, err.Error(), "duplicate key", "underlying cause stays attached")
}

// The fallback's in-memory ordering must match what a store-side sorted
// query would have returned for the same dataset.
func TestFallbackOrdering_MatchesStoreOrder(t *testing.T) {
	t1 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)
	t3 := time.Date(2025, 1, 3, 0, 0, 0, 0, time.UTC)

	unordered := []model.Registration{
		{ID: "b", CreatedAt: &t2},
		{ID: "c", CreatedAt: &t3},
		{ID: "a", CreatedAt: &t1},
	}
	// What the store would return for a createdAt-descending query.
	storeOrder := []string{"c", "b", "a"}

	query.SortRegistrations(unordered, query.KeyCreatedAt, true)
	got := make([]string, len(unordered))
	for i, r := range unordered {
		got[i] = r.ID
	}
	require.Equal(t, storeOrder, got)
}

func TestSortFieldPaths_CoverStoreSortableKeys(t *testing.T) {
	for _, key := range []string{
		query.KeyCreatedAt, query.KeyCompanyName, query.KeyContactName,
		query.KeyStatus, query.KeyTotalCost, query.KeyAttendingCount, query.KeySeason,
	} {
		_, ok := sortFieldPaths[key]
		require.True(t, ok, "key %s should map to a stored path", key)
	}
}
