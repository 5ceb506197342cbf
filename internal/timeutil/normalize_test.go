package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestNormalize_NativeTime(t *testing.T) {
	in := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	got := Normalize(in)
	require.NotNil(t, got)
	require.True(t, got.Equal(in))
}

func TestNormalize_PointerTime(t *testing.T) {
	in := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	got := Normalize(&in)
	require.NotNil(t, got)
	require.True(t, got.Equal(in))

	require.Nil(t, Normalize((*time.Time)(nil)))
}

func TestNormalize_BSONDateTime(t *testing.T) {
	in := time.Date(2024, 11, 2, 18, 0, 0, 0, time.UTC)
	got := Normalize(primitive.NewDateTimeFromTime(in))
	require.NotNil(t, got)
	require.True(t, got.Equal(in))
}

func TestNormalize_BSONTimestamp(t *testing.T) {
	in := time.Date(2024, 11, 2, 18, 0, 0, 0, time.UTC)
	got := Normalize(primitive.Timestamp{T: uint32(in.Unix())})
	require.NotNil(t, got)
	require.True(t, got.Equal(in))
}

func TestNormalize_EpochMillis(t *testing.T) {
	in := time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)
	for _, raw := range []any{in.UnixMilli(), int(in.UnixMilli()), float64(in.UnixMilli())} {
		got := Normalize(raw)
		require.NotNil(t, got, "raw %T", raw)
		require.True(t, got.Equal(in), "raw %T", raw)
	}
}

func TestNormalize_ISOString(t *testing.T) {
	got := Normalize("2024-06-01T12:30:00Z")
	require.NotNil(t, got)
	require.True(t, got.Equal(time.Date(2024, 6, 1, 12, 30, 0, 0, time.UTC)))
}

func TestNormalize_DateOnlyString(t *testing.T) {
	got := Normalize("2024-06-01")
	require.NotNil(t, got)
	require.True(t, got.Equal(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)))
}

func TestNormalize_UnparseableString(t *testing.T) {
	require.Nil(t, Normalize("next tuesday"))
	require.Nil(t, Normalize(""))
}

func TestNormalize_SecondsNanosecondsDoc(t *testing.T) {
	in := time.Date(2023, 9, 5, 8, 15, 0, 0, time.UTC)
	docs := []any{
		map[string]any{"seconds": in.Unix(), "nanoseconds": int64(0)},
		primitive.M{"seconds": in.Unix(), "nanoseconds": int64(0)},
		primitive.D{{Key: "seconds", Value: in.Unix()}, {Key: "nanoseconds", Value: int64(0)}},
		// decoders frequently hand back float64 for numbers
		map[string]any{"seconds": float64(in.Unix())},
	}
	for i, raw := range docs {
		got := Normalize(raw)
		require.NotNil(t, got, "doc %d", i)
		require.True(t, got.Equal(in), "doc %d", i)
	}
}

func TestNormalize_SecondsDocMissingSeconds(t *testing.T) {
	require.Nil(t, Normalize(map[string]any{"nanoseconds": int64(12)}))
	require.Nil(t, Normalize(map[string]any{"seconds": "soon"}))
}

func TestNormalize_UnknownShapes(t *testing.T) {
	require.Nil(t, Normalize(nil))
	require.Nil(t, Normalize(true))
	require.Nil(t, Normalize(struct{ X int }{1}))
	require.Nil(t, Normalize([]string{"2024-06-01"}))
}

func TestNormalize_AlwaysUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	in := time.Date(2024, 6, 1, 17, 30, 0, 0, loc)
	got := Normalize(in)
	require.NotNil(t, got)
	require.Equal(t, time.UTC, got.Location())
	require.True(t, got.Equal(in))
}
