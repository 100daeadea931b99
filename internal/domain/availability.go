package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

const (
	// DaysPerWeek is the number of day rows in the grid. Day 0 is Monday.
	DaysPerWeek = 7
	// HoursPerDay is the number of hour columns in the grid.
	HoursPerDay = 24
	// LegacySlots is the length of the old single-day availability vector.
	LegacySlots = 24
)

// Availability is a member's weekly grid of available hours.
// The zero value is fully unavailable.
type Availability [DaysPerWeek][HoursPerDay]bool

// SlotKey returns the wire key for a (day, hour) cell, e.g. "day_2_slot_14".
func SlotKey(day, hour int) string {
	return "day_" + strconv.Itoa(day) + "_slot_" + strconv.Itoa(hour)
}

// ParseSlotKey parses a wire key back into its day and hour.
func ParseSlotKey(key string) (day, hour int, err error) {
	rest, ok := strings.CutPrefix(key, "day_")
	if !ok {
		return 0, 0, Validationf("invalid availability slot key %q", key)
	}
	dayStr, hourStr, ok := strings.Cut(rest, "_slot_")
	if !ok {
		return 0, 0, Validationf("invalid availability slot key %q", key)
	}
	day, err = strconv.Atoi(dayStr)
	if err != nil || day < 0 || day >= DaysPerWeek {
		return 0, 0, Validationf("invalid day in availability slot key %q", key)
	}
	hour, err = strconv.Atoi(hourStr)
	if err != nil || hour < 0 || hour >= HoursPerDay {
		return 0, 0, Validationf("invalid hour in availability slot key %q", key)
	}
	// reject non-canonical forms such as "day_01_slot_3" or "day_+1_slot_3"
	if SlotKey(day, hour) != key {
		return 0, 0, Validationf("invalid availability slot key %q", key)
	}
	return day, hour, nil
}

// ParseAvailability builds a grid from wire keys. Any malformed key rejects the
// whole grid; keys that are absent stay unavailable.
func ParseAvailability(slots map[string]bool) (Availability, error) {
	var a Availability
	for key, available := range slots {
		day, hour, err := ParseSlotKey(key)
		if err != nil {
			return Availability{}, err
		}
		a[day][hour] = available
	}
	return a, nil
}

// ImportLegacyAvailability converts the old 24-flag UTC-hour vector into a grid.
// The old format had no notion of weekdays, so every flag lands on day 0.
// This loses information and is one-way.
func ImportLegacyAvailability(flags []int) (Availability, error) {
	if len(flags) != LegacySlots {
		return Availability{}, Validationf("legacy availability must have %d entries, got %d", LegacySlots, len(flags))
	}
	var a Availability
	for hour, v := range flags {
		switch v {
		case 0:
		case 1:
			a[0][hour] = true
		default:
			return Availability{}, Validationf("legacy availability entry %d must be 0 or 1, got %d", hour, v)
		}
	}
	return a, nil
}

// IsAvailable reports whether the (day, hour) cell is set. Out of range cells are
// never available.
func (a Availability) IsAvailable(day, hour int) bool {
	if day < 0 || day >= DaysPerWeek || hour < 0 || hour >= HoursPerDay {
		return false
	}
	return a[day][hour]
}

// Set updates one cell.
func (a *Availability) Set(day, hour int, available bool) error {
	if day < 0 || day >= DaysPerWeek || hour < 0 || hour >= HoursPerDay {
		return Validationf("availability cell out of range: day %d hour %d", day, hour)
	}
	a[day][hour] = available
	return nil
}

// Count returns the number of available cells.
func (a Availability) Count() int {
	n := 0
	for day := range a {
		for hour := range a[day] {
			if a[day][hour] {
				n++
			}
		}
	}
	return n
}

// Map returns the grid as wire keys, all 168 of them.
func (a Availability) Map() map[string]bool {
	m := make(map[string]bool, DaysPerWeek*HoursPerDay)
	for day := range a {
		for hour := range a[day] {
			m[SlotKey(day, hour)] = a[day][hour]
		}
	}
	return m
}

// MarshalJSON encodes the grid as an object of slot keys.
func (a Availability) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Map())
}

// UnmarshalJSON decodes an object of slot keys, rejecting malformed keys.
func (a *Availability) UnmarshalJSON(data []byte) error {
	var slots map[string]bool
	if err := json.Unmarshal(data, &slots); err != nil {
		return fmt.Errorf("decoding availability: %w", err)
	}
	parsed, err := ParseAvailability(slots)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
