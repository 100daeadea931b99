// Package tzconv converts instants between UTC and IANA time zones.
// All stored instants are UTC; zones only matter for display and for
// interpreting local input.
package tzconv

import (
	"strings"
	"time"
	_ "time/tzdata" // the IANA database ships with the binary

	"github.com/aidar/team-scheduler/internal/domain"
)

const (
	dateLayout  = "2006-01-02"
	clockLayout = "15:04"
)

// offset-less layouts accepted by ParseInstant, interpreted in the caller's zone
var localLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// legacy zone names found in old member records
var zoneAliases = map[string]string{
	"singapore": "Asia/Singapore",
}

// LocalTime is a UTC instant seen from a particular zone.
type LocalTime struct {
	Time    time.Time `json:"localTime"`
	Zone    string    `json:"timezone"`
	Weekday string    `json:"weekday"`
	Day     int       `json:"day"` // 0 = Monday, matching the availability grid
	Hour    int       `json:"hour"`
	Offset  string    `json:"offset"`
}

// NormalizeZone trims the name and maps known legacy aliases.
func NormalizeZone(name string) string {
	name = strings.TrimSpace(name)
	if mapped, ok := zoneAliases[strings.ToLower(name)]; ok {
		return mapped
	}
	return name
}

// LoadZone resolves an IANA zone name. Empty and "Local" are rejected because
// they do not name a fixed zone.
func LoadZone(name string) (*time.Location, error) {
	name = NormalizeZone(name)
	if name == "" || name == "Local" {
		return nil, domain.Validationf("invalid timezone %q", name)
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, domain.Validationf("invalid timezone %q", name)
	}
	return loc, nil
}

// ValidZone reports whether name is a usable IANA zone.
func ValidZone(name string) bool {
	_, err := LoadZone(name)
	return err == nil
}

// ToLocal converts a UTC instant to wall-clock time in zone.
func ToLocal(utc time.Time, zone string) (LocalTime, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return LocalTime{}, err
	}
	local := utc.In(loc)
	return LocalTime{
		Time:    local,
		Zone:    loc.String(),
		Weekday: local.Weekday().String(),
		Day:     MondayIndex(local.Weekday()),
		Hour:    local.Hour(),
		Offset:  local.Format("-07:00"),
	}, nil
}

// ToUTC converts a local date (YYYY-MM-DD) and 24-hour clock (HH:MM) in zone
// to a UTC instant. Wall-clock times skipped or repeated by DST follow the
// rules of time.Date.
func ToUTC(date, clock, zone string) (time.Time, error) {
	loc, err := LoadZone(zone)
	if err != nil {
		return time.Time{}, err
	}
	d, err := time.Parse(dateLayout, strings.TrimSpace(date))
	if err != nil {
		return time.Time{}, domain.Validationf("invalid date %q, expected YYYY-MM-DD", date)
	}
	c, err := time.Parse(clockLayout, strings.TrimSpace(clock))
	if err != nil {
		return time.Time{}, domain.Validationf("invalid time %q, expected HH:MM", clock)
	}
	local := time.Date(d.Year(), d.Month(), d.Day(), c.Hour(), c.Minute(), 0, 0, loc)
	return local.UTC(), nil
}

// ParseInstant parses an ISO-8601 instant. Values carrying "Z" or an offset are
// taken as is; offset-less values are read as wall-clock time in zone, or UTC
// when zone is empty. The result is UTC, truncated to whole seconds.
func ParseInstant(value, zone string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, domain.Validationf("datetime value is required")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t.UTC().Truncate(time.Second), nil
	}

	loc := time.UTC
	if strings.TrimSpace(zone) != "" {
		var err error
		if loc, err = LoadZone(zone); err != nil {
			return time.Time{}, err
		}
	}
	for _, layout := range localLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t.UTC().Truncate(time.Second), nil
		}
	}
	return time.Time{}, domain.Validationf("invalid datetime %q, use ISO 8601 format", value)
}

// MondayIndex maps time.Weekday (Sunday = 0) to the grid's day index (Monday = 0).
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}
