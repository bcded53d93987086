package core

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"store-admin/internal/store"
)

// Timestamp is a normalized instant. It decodes every timestamp shape found in store documents
// and always encodes as a fixed-width UTC string (null when zero).
type Timestamp struct {
	time.Time
}

// At wraps t as a Timestamp.
func At(t time.Time) Timestamp { return Timestamp{Time: t} }

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(store.TimeLayout))
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid timestamp %s: %w", string(b), err)
	}
	parsed, err := ParseTimestamp(v)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// String formats the instant for logs and CLI output; empty when zero.
func (t Timestamp) String() string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(store.TimeLayout)
}

// epochMillisThreshold separates epoch seconds from epoch milliseconds (year 2286 in seconds).
const epochMillisThreshold = 1e10

var stringLayouts = []string{
	time.RFC3339Nano,
	store.TimeLayout,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTimestamp normalizes a timestamp value read from the store. Accepted shapes:
// time.Time, ISO/RFC3339 or date-only strings, epoch seconds or milliseconds (numbers or
// numeric strings), and {seconds,nanoseconds} / {_seconds,_nanoseconds} wrapper objects.
// nil yields the zero time.
func ParseTimestamp(v any) (time.Time, error) {
	switch x := v.(type) {
	case nil:
		return time.Time{}, nil
	case time.Time:
		return x, nil
	case *time.Time:
		if x == nil {
			return time.Time{}, nil
		}
		return *x, nil
	case Timestamp:
		return x.Time, nil
	case string:
		return parseTimestampString(x)
	case float64:
		return fromEpoch(x), nil
	case int64:
		return fromEpoch(float64(x)), nil
	case int:
		return fromEpoch(float64(x)), nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid epoch timestamp %q: %w", x, err)
		}
		return fromEpoch(f), nil
	case map[string]any:
		return parseTimestampObject(x)
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", v)
	}
}

func parseTimestampString(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range stringLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return fromEpoch(f), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}

func parseTimestampObject(m map[string]any) (time.Time, error) {
	secs, ok := numberField(m, "seconds", "_seconds")
	if !ok {
		return time.Time{}, fmt.Errorf("timestamp object has no seconds field")
	}
	nanos, _ := numberField(m, "nanoseconds", "_nanoseconds")
	return time.Unix(int64(secs), int64(nanos)).UTC(), nil
}

func numberField(m map[string]any, keys ...string) (float64, bool) {
	for _, k := range keys {
		switch n := m[k].(type) {
		case float64:
			return n, true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		case string:
			if f, err := strconv.ParseFloat(n, 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func fromEpoch(f float64) time.Time {
	if math.Abs(f) >= epochMillisThreshold {
		return time.UnixMilli(int64(f)).UTC()
	}
	sec, frac := math.Modf(f)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}
