package domain

import "time"

// Статусы встречи
const (
	MeetingStatusScheduled = "scheduled"
	MeetingStatusFinalized = "finalized"
	MeetingStatusCancelled = "cancelled"
)

// ValidMeetingStatus проверяет, что статус входит в список допустимых
func ValidMeetingStatus(status string) bool {
	switch status {
	case MeetingStatusScheduled, MeetingStatusFinalized, MeetingStatusCancelled:
		return true
	default:
		return false
	}
}

// Meeting представляет встречу команды с набором предложенных слотов (UTC)
type Meeting struct {
	ID            string      `json:"id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	TeamID        string      `json:"teamId"`
	CreatorID     string      `json:"creatorId"`
	TimeSlots     []time.Time `json:"timeSlots"`
	ScheduledTime *time.Time  `json:"scheduledTime,omitempty"`
	VotingStart   *time.Time  `json:"votingStart,omitempty"`
	VotingEnd     *time.Time  `json:"votingEnd,omitempty"`
	Duration      *int        `json:"duration,omitempty"` // В минутах
	Timezone      string      `json:"timezone,omitempty"` // Только подсказка для отображения
	Status        string      `json:"status"`
	CreatedAt     time.Time   `json:"createdAt"`
}

// SlotKeys возвращает предложенные слоты в каноническом строковом виде
func (m *Meeting) SlotKeys() []string {
	keys := make([]string, 0, len(m.TimeSlots))
	for _, ts := range m.TimeSlots {
		keys = append(keys, FormatInstant(ts))
	}
	return keys
}

// HasSlot проверяет, входит ли слот в список предложенных
func (m *Meeting) HasSlot(slot time.Time) bool {
	for _, ts := range m.TimeSlots {
		if ts.Equal(slot) {
			return true
		}
	}
	return false
}

// VotingOpen проверяет, попадает ли момент now в окно голосования
func (m *Meeting) VotingOpen(now time.Time) bool {
	if m.VotingStart != nil && now.Before(*m.VotingStart) {
		return false
	}
	if m.VotingEnd != nil && now.After(*m.VotingEnd) {
		return false
	}
	return true
}

// Clone возвращает глубокую копию встречи
func (m *Meeting) Clone() *Meeting {
	c := *m
	c.TimeSlots = append([]time.Time(nil), m.TimeSlots...)
	c.ScheduledTime = cloneTime(m.ScheduledTime)
	c.VotingStart = cloneTime(m.VotingStart)
	c.VotingEnd = cloneTime(m.VotingEnd)
	if m.Duration != nil {
		d := *m.Duration
		c.Duration = &d
	}
	return &c
}

// InstantLayout is the canonical wire form of a stored UTC instant.
const InstantLayout = "2006-01-02T15:04:05Z"

// FormatInstant renders t in UTC using InstantLayout.
func FormatInstant(t time.Time) string {
	return t.UTC().Format(InstantLayout)
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
