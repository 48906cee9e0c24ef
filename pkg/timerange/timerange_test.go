package timerange

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestResolve_Presets(t *testing.T) {
	tests := []struct {
		kind   Kind
		offset time.Duration
		label  string
	}{
		{Last15Min, 15 * time.Minute, "Last 15 min"},
		{Last30Min, 30 * time.Minute, "Last 30 min"},
		{Last1Hour, time.Hour, "Last 1 hour"},
		{Last7Days, 7 * 24 * time.Hour, "Last 7 days"},
		{Last30Days, 30 * 24 * time.Hour, "Last 30 days"},
		{Last3Months, 90 * 24 * time.Hour, "Last 3 months"},
		{LastYear, 365 * 24 * time.Hour, "Last year"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			r := Preset(tt.kind)
			assert.Equal(t, now.Add(-tt.offset).Unix(), r.Resolve(now))
			assert.Equal(t, tt.label, r.String())
			assert.Equal(t, tt.label, r.Label())
			assert.Equal(t, tt.offset, r.Offset())
		})
	}
}

func TestResolve_ShiftsWithNow(t *testing.T) {
	for _, r := range Presets() {
		later := now.Add(r.Offset())
		first := r.Resolve(now)
		second := r.Resolve(later)

		// Resolving at a later instant moves the bound by exactly that much.
		assert.Equal(t, first+int64(r.Offset().Seconds()), second, r.Label())
		assert.Equal(t, now.Unix(), second, r.Label())
		assert.NotEqual(t, first, second, r.Label())
	}
}

func TestCustom(t *testing.T) {
	start := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	end := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	r, err := NewCustom(start, end)
	require.NoError(t, err)

	assert.Equal(t, start.Unix(), r.Resolve(now))
	assert.Equal(t, start.Unix(), r.Resolve(now.Add(time.Hour)))
	assert.Equal(t, "2024/01/02 03:04:05 - 2024/01/03 00:00:00", r.String())
	assert.Equal(t, "Custom", r.Label())
	assert.Equal(t, "1704164645", StartParam(r, now))
	assert.Equal(t, "", EndParam(r), "end bound is never sent")
}

func TestCustom_StartAfterEnd(t *testing.T) {
	_, err := NewCustom(now, now.Add(-time.Second))
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestParamsWithoutRange(t *testing.T) {
	assert.Equal(t, "", StartParam(nil, now))
	assert.Equal(t, "", EndParam(nil))
	assert.Equal(t, "No date range", Describe(nil))
	assert.Equal(t, "Last 7 days", Describe(Preset(Last7Days)))
}

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want *Range
	}{
		{"", nil},
		{"none", nil},
		{"15m", Preset(Last15Min)},
		{"30m", Preset(Last30Min)},
		{"3M", Preset(Last3Months)},
		{"90d", Preset(Last3Months)},
		{"1y", Preset(LastYear)},
		{"last 7 days", Preset(Last7Days)},
		{"Last 1 hour", Preset(Last1Hour)},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := Parse("last century")
	assert.True(t, errors.Is(err, ErrInvalidRange))
}

func TestParseCustom(t *testing.T) {
	r, err := ParseCustom("2024/01/02 03:04:05", "2024/01/03 00:00:00")
	require.NoError(t, err)
	assert.Equal(t, Custom, r.Kind)
	assert.Equal(t, time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC), r.Start)

	_, err = ParseCustom("2024-01-02", "2024/01/03 00:00:00")
	assert.True(t, errors.Is(err, ErrInvalidRange))
}
