package service

import (
	"context"
	"errors"
	"time"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository"
	"github.com/aidar/team-scheduler/internal/tzconv"
)

// MemberLocalTime is one entry of a team's local time batch. When the member's
// zone cannot be resolved Error is set and the embedded LocalTime is nil.
type MemberLocalTime struct {
	MemberID string `json:"memberId"`
	Name     string `json:"name,omitempty"`
	Timezone string `json:"timezone"`
	*tzconv.LocalTime
	Error string `json:"error,omitempty"`
}

// SlotAvailability reports which team members are free at one candidate slot
// according to their weekly grid, read in each member's own zone.
type SlotAvailability struct {
	TimeSlot    string            `json:"timeSlot"`
	Available   []string          `json:"available"`
	Unavailable []string          `json:"unavailable"`
	Errors      map[string]string `json:"errors,omitempty"`
}

// ScheduleService combines zone conversion with member data
type ScheduleService struct {
	store *repository.Store
}

// NewScheduleService creates a new ScheduleService
func NewScheduleService(store *repository.Store) *ScheduleService {
	return &ScheduleService{store: store}
}

// LocalTimes converts one instant for every member of a team. A member with a
// bad zone, or one that no longer exists, gets an error entry and the rest of
// the batch still succeeds.
func (s *ScheduleService) LocalTimes(ctx context.Context, teamID string, at time.Time) ([]MemberLocalTime, error) {
	team, err := s.store.Teams.GetByID(ctx, teamID)
	if err != nil {
		return nil, err
	}

	out := make([]MemberLocalTime, 0, len(team.Members))
	for _, id := range team.Members {
		entry := MemberLocalTime{MemberID: id}
		member, err := s.store.Members.GetByID(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			entry.Error = err.Error()
		case err != nil:
			return nil, err
		default:
			entry.Name = member.Name
			entry.Timezone = member.Timezone
			lt, err := tzconv.ToLocal(at, member.Timezone)
			if err != nil {
				entry.Error = err.Error()
			} else {
				entry.LocalTime = &lt
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

// MemberLocalTime converts an instant to the member's zone
func (s *ScheduleService) MemberLocalTime(ctx context.Context, memberID string, at time.Time) (*tzconv.LocalTime, error) {
	member, err := s.store.Members.GetByID(ctx, memberID)
	if err != nil {
		return nil, err
	}
	lt, err := tzconv.ToLocal(at, member.Timezone)
	if err != nil {
		return nil, err
	}
	return &lt, nil
}

// Classify reports whether the member is available at the UTC instant
func Classify(member *domain.Member, at time.Time) (bool, error) {
	lt, err := tzconv.ToLocal(at, member.Timezone)
	if err != nil {
		return false, err
	}
	return member.Availability.IsAvailable(lt.Day, lt.Hour), nil
}

// SlotAvailability classifies every team member against each candidate slot of the meeting
func (s *ScheduleService) SlotAvailability(ctx context.Context, meetingID string) ([]SlotAvailability, error) {
	meeting, err := s.store.Meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}

	var members []string
	if meeting.TeamID != "" {
		team, err := s.store.Teams.GetByID(ctx, meeting.TeamID)
		if err != nil && !errors.Is(err, domain.ErrTeamNotFound) {
			return nil, err
		}
		if err == nil {
			members = team.Members
		}
	}

	loaded := make(map[string]*domain.Member, len(members))
	missing := make(map[string]error)
	for _, id := range members {
		m, err := s.store.Members.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			missing[id] = err
			continue
		}
		if err != nil {
			return nil, err
		}
		loaded[id] = m
	}

	out := make([]SlotAvailability, 0, len(meeting.TimeSlots))
	for _, slot := range meeting.TimeSlots {
		entry := SlotAvailability{
			TimeSlot:    domain.FormatInstant(slot),
			Available:   []string{},
			Unavailable: []string{},
		}
		for _, id := range members {
			if err, ok := missing[id]; ok {
				entry.addError(id, err)
				continue
			}
			free, err := Classify(loaded[id], slot)
			switch {
			case err != nil:
				entry.addError(id, err)
			case free:
				entry.Available = append(entry.Available, id)
			default:
				entry.Unavailable = append(entry.Unavailable, id)
			}
		}
		out = append(out, entry)
	}
	return out, nil
}

func (e *SlotAvailability) addError(memberID string, err error) {
	if e.Errors == nil {
		e.Errors = make(map[string]string)
	}
	e.Errors[memberID] = err.Error()
}
