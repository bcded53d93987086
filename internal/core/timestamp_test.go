package core_test

import (
	"encoding/json"
	"testing"
	"time"

	"store-admin/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTimestamp_Shapes(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)

	tests := []struct {
		name  string
		value any
	}{
		{"time.Time", want},
		{"RFC3339", "2026-03-01T12:30:00Z"},
		{"RFC3339 offset", "2026-03-01T14:30:00+02:00"},
		{"store layout", "2026-03-01T12:30:00.000Z"},
		{"epoch seconds", float64(want.Unix())},
		{"epoch millis", float64(want.UnixMilli())},
		{"epoch millis string", "1772368200000"},
		{"seconds wrapper", map[string]any{"seconds": float64(want.Unix()), "nanoseconds": float64(0)}},
		{"underscore wrapper", map[string]any{"_seconds": float64(want.Unix()), "_nanoseconds": float64(0)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := core.ParseTimestamp(tt.value)
			require.NoError(t, err)
			assert.True(t, want.Equal(got), "got %s", got)
		})
	}
}

func TestParseTimestamp_EmptyAndInvalid(t *testing.T) {
	got, err := core.ParseTimestamp(nil)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	got, err = core.ParseTimestamp("")
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	_, err = core.ParseTimestamp("last tuesday")
	assert.Error(t, err)

	_, err = core.ParseTimestamp(map[string]any{"nanoseconds": 5})
	assert.Error(t, err)

	_, err = core.ParseTimestamp([]int{1})
	assert.Error(t, err)
}

func TestTimestamp_JSONRoundTrip(t *testing.T) {
	type doc struct {
		At core.Timestamp `json:"at"`
	}

	var d doc
	require.NoError(t, json.Unmarshal([]byte(`{"at":{"seconds":1772368200,"nanoseconds":500000000}}`), &d))
	assert.Equal(t, int64(1772368200), d.At.Unix())
	assert.Equal(t, 500000000, d.At.Nanosecond())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":"2026-03-01T12:30:00.500Z"}`, string(b))

	var zero doc
	require.NoError(t, json.Unmarshal([]byte(`{"at":null}`), &zero))
	assert.True(t, zero.At.IsZero())
	b, err = json.Marshal(zero)
	require.NoError(t, err)
	assert.JSONEq(t, `{"at":null}`, string(b))
}
