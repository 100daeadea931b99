package tzconv_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/tzconv"
)

var zones = []string{
	"UTC",
	"Europe/Moscow",
	"Europe/London",
	"America/New_York",
	"America/Los_Angeles",
	"Asia/Kolkata",
	"Asia/Tokyo",
	"Australia/Adelaide",
	"Pacific/Chatham",
}

func TestToLocal_RoundTrip(t *testing.T) {
	instants := []time.Time{
		time.Date(2025, 1, 15, 9, 30, 0, 0, time.UTC),
		time.Date(2025, 3, 30, 1, 0, 0, 0, time.UTC),   // EU DST start
		time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC),  // day of US DST end
		time.Date(2024, 2, 29, 23, 59, 0, 0, time.UTC), // leap day
	}

	for _, zone := range zones {
		for _, instant := range instants {
			local, err := tzconv.ToLocal(instant, zone)
			require.NoError(t, err, zone)

			back, err := tzconv.ToUTC(
				local.Time.Format("2006-01-02"),
				local.Time.Format("15:04"),
				zone,
			)
			require.NoError(t, err, zone)
			assert.True(t, instant.Equal(back), "zone %s: %s != %s", zone, instant, back)
			assert.True(t, instant.Equal(local.Time.UTC()))
		}
	}
}

func TestToLocal_Fields(t *testing.T) {
	// Monday 2025-03-10 09:00 UTC is 12:00 in Moscow
	local, err := tzconv.ToLocal(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), "Europe/Moscow")
	require.NoError(t, err)

	assert.Equal(t, "Monday", local.Weekday)
	assert.Equal(t, 0, local.Day)
	assert.Equal(t, 12, local.Hour)
	assert.Equal(t, "+03:00", local.Offset)
	assert.Equal(t, "Europe/Moscow", local.Zone)
}

func TestToLocal_CrossesDayBoundary(t *testing.T) {
	// Sunday 23:00 UTC is already Monday in Tokyo
	local, err := tzconv.ToLocal(time.Date(2025, 3, 9, 23, 0, 0, 0, time.UTC), "Asia/Tokyo")
	require.NoError(t, err)

	assert.Equal(t, "Monday", local.Weekday)
	assert.Equal(t, 0, local.Day)
	assert.Equal(t, 8, local.Hour)
}

func TestLoadZone_Invalid(t *testing.T) {
	for _, zone := range []string{"", "Local", "Mars/Olympus", "GMT+25"} {
		_, err := tzconv.LoadZone(zone)
		require.ErrorIs(t, err, domain.ErrValidation, zone)
	}
}

func TestLoadZone_LegacyAlias(t *testing.T) {
	loc, err := tzconv.LoadZone("Singapore ")
	require.NoError(t, err)
	assert.Equal(t, "Asia/Singapore", loc.String())
}

func TestToUTC_Invalid(t *testing.T) {
	_, err := tzconv.ToUTC("2025-13-01", "10:00", "UTC")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = tzconv.ToUTC("2025-01-01", "25:00", "UTC")
	require.ErrorIs(t, err, domain.ErrValidation)

	_, err = tzconv.ToUTC("2025-01-01", "10:00", "Nowhere/City")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestToUTC(t *testing.T) {
	got, err := tzconv.ToUTC("2025-07-01", "09:00", "America/New_York")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 13, 0, 0, 0, time.UTC), got)
}

func TestParseInstant(t *testing.T) {
	tests := []struct {
		name  string
		value string
		zone  string
		want  time.Time
	}{
		{"utc suffix", "2025-03-10T09:00:00Z", "", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"offset", "2025-03-10T12:00:00+03:00", "America/New_York", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"fraction truncated", "2025-03-10T09:00:00.750Z", "", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"naive in zone", "2025-03-10T12:00:00", "Europe/Moscow", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"naive minutes", "2025-03-10T12:00", "Europe/Moscow", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
		{"naive defaults to utc", "2025-03-10 09:00", "", time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tzconv.ParseInstant(tt.value, tt.zone)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "%s != %s", tt.want, got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestParseInstant_Invalid(t *testing.T) {
	for _, value := range []string{"", "tomorrow", "2025-02-30T10:00:00Z", "10:00"} {
		_, err := tzconv.ParseInstant(value, "")
		require.ErrorIs(t, err, domain.ErrValidation, value)
	}

	_, err := tzconv.ParseInstant("2025-03-10T12:00:00", "Bad/Zone")
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestMondayIndex(t *testing.T) {
	assert.Equal(t, 0, tzconv.MondayIndex(time.Monday))
	assert.Equal(t, 5, tzconv.MondayIndex(time.Saturday))
	assert.Equal(t, 6, tzconv.MondayIndex(time.Sunday))
}
