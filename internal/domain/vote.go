package domain

import "time"

// Preference is a voter's preference level for a time slot.
type Preference string

// Accepted preference levels.
const (
	PreferenceLow    Preference = "low"
	PreferenceMedium Preference = "medium"
	PreferenceHigh   Preference = "high"
)

// DefaultPreference is used when a vote arrives without a preference.
const DefaultPreference = PreferenceMedium

// Rank orders preferences: low(1) < medium(2) < high(3). Unknown values rank 0.
func (p Preference) Rank() int {
	switch p {
	case PreferenceLow:
		return 1
	case PreferenceMedium:
		return 2
	case PreferenceHigh:
		return 3
	default:
		return 0
	}
}

// Valid reports whether p is one of the accepted levels.
func (p Preference) Valid() bool {
	return p.Rank() > 0
}

// ParsePreference validates a raw preference, defaulting empty input to medium.
func ParsePreference(raw string) (Preference, error) {
	if raw == "" {
		return DefaultPreference, nil
	}
	p := Preference(raw)
	if !p.Valid() {
		return "", Validationf("preference must be 'low', 'medium', or 'high'")
	}
	return p, nil
}

// Vote is one user's preference for one slot of a meeting.
// At most one vote exists per (MeetingID, UserID).
type Vote struct {
	ID         string     `json:"id"`
	MeetingID  string     `json:"meetingId"`
	UserID     string     `json:"userId"`
	TimeSlot   string     `json:"timeSlot"`
	Preference Preference `json:"preference"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// SlotResult is the aggregated outcome for one time slot.
type SlotResult struct {
	TimeSlot   string     `json:"timeSlot"`
	Votes      int        `json:"votes"`
	Preference Preference `json:"preference"`
	Duration   *int       `json:"duration"`
}

// AggregateVotes groups votes by slot, counting them and keeping the highest
// preference seen. Each bucket starts at low and only a strictly higher rank
// replaces the label. Candidate slots without votes are appended with zero
// count. Voted slots come first in first-seen order, then unvoted candidates
// in the given order.
func AggregateVotes(votes []*Vote, candidates []string, duration *int) []SlotResult {
	results := make([]SlotResult, 0, len(candidates))
	index := make(map[string]int, len(candidates))

	for _, v := range votes {
		if v.TimeSlot == "" {
			continue
		}
		i, ok := index[v.TimeSlot]
		if !ok {
			i = len(results)
			index[v.TimeSlot] = i
			results = append(results, SlotResult{
				TimeSlot:   v.TimeSlot,
				Preference: PreferenceLow,
			})
		}
		bucket := &results[i]
		bucket.Votes++
		pref := v.Preference
		if pref == "" {
			pref = DefaultPreference
		}
		if pref.Rank() > bucket.Preference.Rank() {
			bucket.Preference = pref
		}
	}

	for _, slot := range candidates {
		if _, ok := index[slot]; ok {
			continue
		}
		index[slot] = len(results)
		results = append(results, SlotResult{
			TimeSlot:   slot,
			Preference: PreferenceLow,
		})
	}

	for i := range results {
		results[i].Duration = duration
	}
	return results
}

// BestSlot picks the leading result: most votes, then highest preference,
// then earliest position. It returns false when no slot has votes.
func BestSlot(results []SlotResult) (SlotResult, bool) {
	best := -1
	for i, r := range results {
		if r.Votes == 0 {
			continue
		}
		if best < 0 ||
			r.Votes > results[best].Votes ||
			(r.Votes == results[best].Votes && r.Preference.Rank() > results[best].Preference.Rank()) {
			best = i
		}
	}
	if best < 0 {
		return SlotResult{}, false
	}
	return results[best], true
}
