// Package timeutil converts the temporal representations found in
// stored documents into one canonical type. Older registration records
// carry dates in several encodings (native datetime, epoch millis, ISO
// string, seconds/nanoseconds wrappers); every consumer reads them
// through Normalize and handles exactly one absent/invalid signal: nil.
package timeutil

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// stringLayouts are tried in order when normalizing string values.
var stringLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Normalize converts a raw stored temporal value into a canonical UTC
// time. It accepts native times, BSON datetimes and timestamps, numeric
// epoch milliseconds, parseable strings, and seconds/nanoseconds
// wrapper documents. Anything else, including nil, yields nil.
// Normalize never panics: nil is the single failure mode callers see.
func Normalize(raw any) *time.Time {
	switch v := raw.(type) {
	case nil:
		return nil
	case time.Time:
		return utc(v)
	case *time.Time:
		if v == nil {
			return nil
		}
		return utc(*v)
	case primitive.DateTime:
		return utc(v.Time())
	case primitive.Timestamp:
		return utc(time.Unix(int64(v.T), 0))
	case int64:
		return fromMillis(v)
	case int:
		return fromMillis(int64(v))
	case int32:
		return fromMillis(int64(v))
	case float64:
		return fromMillis(int64(v))
	case string:
		for _, layout := range stringLayouts {
			if t, err := time.Parse(layout, v); err == nil {
				return utc(t)
			}
		}
		return nil
	case primitive.D:
		return fromSecondsDoc(v.Map())
	case primitive.M:
		return fromSecondsDoc(v)
	case map[string]any:
		return fromSecondsDoc(v)
	default:
		return nil
	}
}

// fromSecondsDoc handles {seconds, nanoseconds} wrapper documents.
func fromSecondsDoc(m map[string]any) *time.Time {
	secs, ok := asInt64(m["seconds"])
	if !ok {
		return nil
	}
	nanos, _ := asInt64(m["nanoseconds"])
	return utc(time.Unix(secs, nanos))
}

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func fromMillis(ms int64) *time.Time {
	return utc(time.UnixMilli(ms))
}

func utc(t time.Time) *time.Time {
	u := t.UTC()
	return &u
}
