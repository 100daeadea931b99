package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-scheduler/internal/domain"
)

func TestAvailability_ZeroValueIsUnavailable(t *testing.T) {
	var a domain.Availability

	assert.Equal(t, 0, a.Count())
	for day := 0; day < domain.DaysPerWeek; day++ {
		for hour := 0; hour < domain.HoursPerDay; hour++ {
			assert.False(t, a.IsAvailable(day, hour))
		}
	}
	assert.Len(t, a.Map(), 168)
}

func TestParseAvailability(t *testing.T) {
	a, err := domain.ParseAvailability(map[string]bool{
		"day_0_slot_9":  true,
		"day_6_slot_23": true,
		"day_3_slot_12": false,
	})
	require.NoError(t, err)

	assert.True(t, a.IsAvailable(0, 9))
	assert.True(t, a.IsAvailable(6, 23))
	assert.False(t, a.IsAvailable(3, 12))
	assert.Equal(t, 2, a.Count())
}

func TestParseAvailability_RejectsMalformedKeys(t *testing.T) {
	keys := []string{
		"day_7_slot_0",
		"day_0_slot_24",
		"day_-1_slot_0",
		"day_01_slot_3",
		"monday_9",
		"day_1_hour_2",
		"",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			_, err := domain.ParseAvailability(map[string]bool{key: true})
			require.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestAvailability_JSONRoundTrip(t *testing.T) {
	var a domain.Availability
	require.NoError(t, a.Set(2, 14, true))

	data, err := json.Marshal(a)
	require.NoError(t, err)

	var decoded domain.Availability
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, a, decoded)
}

func TestAvailability_UnmarshalRejectsForeignKey(t *testing.T) {
	var a domain.Availability
	err := json.Unmarshal([]byte(`{"day_0_slot_1":true,"foo":true}`), &a)
	require.ErrorIs(t, err, domain.ErrValidation)
}

func TestAvailability_SetOutOfRange(t *testing.T) {
	var a domain.Availability
	require.ErrorIs(t, a.Set(7, 0, true), domain.ErrValidation)
	require.ErrorIs(t, a.Set(0, -1, true), domain.ErrValidation)
	assert.False(t, a.IsAvailable(9, 9))
}

func TestImportLegacyAvailability(t *testing.T) {
	flags := make([]int, domain.LegacySlots)
	flags[9] = 1
	flags[10] = 1

	a, err := domain.ImportLegacyAvailability(flags)
	require.NoError(t, err)

	assert.True(t, a.IsAvailable(0, 9))
	assert.True(t, a.IsAvailable(0, 10))
	assert.False(t, a.IsAvailable(1, 9))
	assert.Equal(t, 2, a.Count())
}

func TestImportLegacyAvailability_Invalid(t *testing.T) {
	_, err := domain.ImportLegacyAvailability([]int{1, 0, 1})
	require.ErrorIs(t, err, domain.ErrValidation)

	flags := make([]int, domain.LegacySlots)
	flags[3] = 2
	_, err = domain.ImportLegacyAvailability(flags)
	require.ErrorIs(t, err, domain.ErrValidation)
}
