package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/metrics"
	"github.com/aidar/team-scheduler/internal/repository"
	"github.com/aidar/team-scheduler/internal/tzconv"
)

// MeetingInput carries the fields accepted when a meeting is created.
// Instants without an offset are read in Timezone.
type MeetingInput struct {
	Title         string
	Description   string
	TeamID        string
	Timezone      string
	TimeSlots     []string
	ScheduledTime string
	VotingStart   string
	VotingEnd     string
	Duration      *int
}

// MeetingUpdate carries optional meeting changes. Nil fields are left
// untouched; an empty string clears an optional instant.
type MeetingUpdate struct {
	Title         *string
	Description   *string
	TimeSlots     *[]string
	ScheduledTime *string
	VotingStart   *string
	VotingEnd     *string
	Duration      *int
	Timezone      *string
	Status        *string
}

// Participant is a team member as seen from one meeting's voting
type Participant struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Timezone string       `json:"timezone"`
	HasVoted bool         `json:"hasVoted"`
	Vote     *domain.Vote `json:"vote,omitempty"`
}

// MeetingService handles meetings and the slot voting flow
type MeetingService struct {
	store *repository.Store
	now   func() time.Time
}

// NewMeetingService creates a new MeetingService
func NewMeetingService(store *repository.Store) *MeetingService {
	return &MeetingService{
		store: store,
		now:   time.Now,
	}
}

// WithClock replaces the time source used for timestamps and the voting window
func (s *MeetingService) WithClock(now func() time.Time) *MeetingService {
	s.now = now
	return s
}

// Create makes a meeting under a team. Only team members may create meetings.
func (s *MeetingService) Create(ctx context.Context, creatorID string, in MeetingInput) (*domain.Meeting, error) {
	title, err := requireText("title", in.Title, maxTitleLength)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(in.TeamID) == "" {
		return nil, domain.Validationf("teamId is required")
	}
	team, err := s.store.Teams.GetByID(ctx, in.TeamID)
	if err != nil {
		return nil, err
	}
	if !team.HasMember(creatorID) {
		return nil, domain.ErrCreatorNotInTeam
	}

	zone, err := normalizeZone(in.Timezone, "")
	if err != nil {
		return nil, err
	}

	meeting := &domain.Meeting{
		ID:          uuid.NewString(),
		Title:       title,
		Description: strings.TrimSpace(in.Description),
		TeamID:      team.ID,
		CreatorID:   creatorID,
		Timezone:    zone,
		Status:      domain.MeetingStatusScheduled,
		CreatedAt:   s.now().UTC(),
	}

	if meeting.TimeSlots, err = parseSlots(in.TimeSlots, zone); err != nil {
		return nil, err
	}
	if meeting.ScheduledTime, err = parseOptionalInstant(in.ScheduledTime, zone); err != nil {
		return nil, err
	}
	if meeting.VotingStart, err = parseOptionalInstant(in.VotingStart, zone); err != nil {
		return nil, err
	}
	if meeting.VotingEnd, err = parseOptionalInstant(in.VotingEnd, zone); err != nil {
		return nil, err
	}
	if meeting.Duration, err = validDuration(in.Duration); err != nil {
		return nil, err
	}
	if err := checkWindow(meeting); err != nil {
		return nil, err
	}

	if err := s.store.Meetings.Create(ctx, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// Get retrieves a meeting
func (s *MeetingService) Get(ctx context.Context, meetingID string) (*domain.Meeting, error) {
	return s.store.Meetings.GetByID(ctx, meetingID)
}

// List returns all meetings
func (s *MeetingService) List(ctx context.Context) ([]*domain.Meeting, error) {
	return s.store.Meetings.List(ctx)
}

// ListByTeam returns the meetings of an existing team
func (s *MeetingService) ListByTeam(ctx context.Context, teamID string) ([]*domain.Meeting, error) {
	if _, err := s.store.Teams.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	return s.store.Meetings.ListByTeam(ctx, teamID)
}

// Update applies whitelisted changes. Allowed for the creator and the team admin.
func (s *MeetingService) Update(ctx context.Context, actorID, meetingID string, upd MeetingUpdate) (*domain.Meeting, error) {
	return s.modifyOwned(ctx, actorID, meetingID, func(meeting *domain.Meeting) error {
		var err error
		if upd.Title != nil {
			if meeting.Title, err = requireText("title", *upd.Title, maxTitleLength); err != nil {
				return err
			}
		}
		if upd.Description != nil {
			meeting.Description = strings.TrimSpace(*upd.Description)
		}
		if upd.Timezone != nil {
			if meeting.Timezone, err = normalizeZone(*upd.Timezone, ""); err != nil {
				return err
			}
		}
		zone := meeting.Timezone
		if upd.TimeSlots != nil {
			if meeting.TimeSlots, err = parseSlots(*upd.TimeSlots, zone); err != nil {
				return err
			}
		}
		if upd.ScheduledTime != nil {
			if meeting.ScheduledTime, err = parseOptionalInstant(*upd.ScheduledTime, zone); err != nil {
				return err
			}
		}
		if upd.VotingStart != nil {
			if meeting.VotingStart, err = parseOptionalInstant(*upd.VotingStart, zone); err != nil {
				return err
			}
		}
		if upd.VotingEnd != nil {
			if meeting.VotingEnd, err = parseOptionalInstant(*upd.VotingEnd, zone); err != nil {
				return err
			}
		}
		if upd.Duration != nil {
			if meeting.Duration, err = validDuration(upd.Duration); err != nil {
				return err
			}
		}
		if upd.Status != nil {
			status := strings.TrimSpace(*upd.Status)
			if !domain.ValidMeetingStatus(status) {
				return domain.Validationf("status must be 'scheduled', 'finalized', or 'cancelled'")
			}
			meeting.Status = status
		}
		return checkWindow(meeting)
	})
}

// Delete removes the meeting and its votes
func (s *MeetingService) Delete(ctx context.Context, actorID, meetingID string) error {
	meeting, err := s.ownedMeeting(ctx, actorID, meetingID)
	if err != nil {
		return err
	}
	if err := s.store.Votes.DeleteByMeeting(ctx, meeting.ID); err != nil {
		return err
	}
	return s.store.Meetings.Delete(ctx, meeting.ID)
}

// Finalize fixes the scheduled time. An empty timeSlot picks the leading result.
func (s *MeetingService) Finalize(ctx context.Context, actorID, meetingID, timeSlot string) (*domain.Meeting, error) {
	return s.modifyOwned(ctx, actorID, meetingID, func(meeting *domain.Meeting) error {
		choice := timeSlot
		if strings.TrimSpace(choice) == "" {
			results, err := s.results(ctx, meeting)
			if err != nil {
				return err
			}
			best, ok := domain.BestSlot(results)
			if !ok {
				return domain.Validationf("meeting has no votes; provide timeSlot explicitly")
			}
			choice = best.TimeSlot
		}

		slot, err := tzconv.ParseInstant(choice, meeting.Timezone)
		if err != nil {
			return err
		}
		if len(meeting.TimeSlots) > 0 && !meeting.HasSlot(slot) {
			return domain.Validationf("time slot %s is not one of the meeting's proposed slots", domain.FormatInstant(slot))
		}

		meeting.ScheduledTime = &slot
		meeting.Status = domain.MeetingStatusFinalized
		return nil
	})
}

// SubmitVote records the user's vote for a slot, replacing any earlier vote
// of the same user on the same meeting.
func (s *MeetingService) SubmitVote(ctx context.Context, meetingID, userID, timeSlot, preference string) (*domain.Vote, error) {
	meeting, err := s.store.Meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.Members.GetByID(ctx, userID); err != nil {
		return nil, err
	}

	if meeting.TeamID != "" {
		team, err := s.store.Teams.GetByID(ctx, meeting.TeamID)
		switch {
		case errors.Is(err, domain.ErrTeamNotFound):
			// membership cannot be proven against a team that no longer exists
			return nil, domain.ErrVoterNotInTeam
		case err != nil:
			return nil, err
		case !team.HasMember(userID):
			return nil, domain.ErrVoterNotInTeam
		}
	}

	pref, err := domain.ParsePreference(strings.TrimSpace(preference))
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(timeSlot) == "" {
		return nil, domain.Validationf("timeSlot is required")
	}
	slot, err := tzconv.ParseInstant(timeSlot, meeting.Timezone)
	if err != nil {
		return nil, err
	}
	if len(meeting.TimeSlots) > 0 && !meeting.HasSlot(slot) {
		return nil, domain.Validationf("time slot %s is not one of the meeting's proposed slots", domain.FormatInstant(slot))
	}

	now := s.now().UTC()
	if !meeting.VotingOpen(now) {
		return nil, domain.ErrVotingClosed
	}

	vote := &domain.Vote{
		ID:         uuid.NewString(),
		MeetingID:  meeting.ID,
		UserID:     userID,
		TimeSlot:   domain.FormatInstant(slot),
		Preference: pref,
		CreatedAt:  now,
	}
	if err := s.store.Votes.Replace(ctx, vote); err != nil {
		return nil, err
	}

	metrics.VotesSubmitted.WithLabelValues(string(pref)).Inc()
	return vote, nil
}

// Votes returns the votes of an existing meeting in submission order
func (s *MeetingService) Votes(ctx context.Context, meetingID string) ([]*domain.Vote, error) {
	if _, err := s.store.Meetings.GetByID(ctx, meetingID); err != nil {
		return nil, err
	}
	return s.store.Votes.ListByMeeting(ctx, meetingID)
}

// Results aggregates the meeting's votes per slot
func (s *MeetingService) Results(ctx context.Context, meetingID string) ([]domain.SlotResult, error) {
	meeting, err := s.store.Meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	return s.results(ctx, meeting)
}

func (s *MeetingService) results(ctx context.Context, meeting *domain.Meeting) ([]domain.SlotResult, error) {
	votes, err := s.store.Votes.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	return domain.AggregateVotes(votes, meeting.SlotKeys(), meeting.Duration), nil
}

// Participants lists the meeting team's members with their vote, if any
func (s *MeetingService) Participants(ctx context.Context, meetingID string) ([]Participant, error) {
	meeting, err := s.store.Meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	out := make([]Participant, 0)
	if meeting.TeamID == "" {
		return out, nil
	}
	team, err := s.store.Teams.GetByID(ctx, meeting.TeamID)
	if errors.Is(err, domain.ErrTeamNotFound) {
		return out, nil
	}
	if err != nil {
		return nil, err
	}

	votes, err := s.store.Votes.ListByMeeting(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	byUser := make(map[string]*domain.Vote, len(votes))
	for _, v := range votes {
		byUser[v.UserID] = v
	}

	for _, id := range team.Members {
		member, err := s.store.Members.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		vote := byUser[id]
		out = append(out, Participant{
			ID:       member.ID,
			Name:     member.Name,
			Timezone: member.Timezone,
			HasVoted: vote != nil,
			Vote:     vote,
		})
	}
	return out, nil
}

// ownedMeeting loads the meeting and checks that actorID is its creator or the team admin
func (s *MeetingService) ownedMeeting(ctx context.Context, actorID, meetingID string) (*domain.Meeting, error) {
	meeting, err := s.store.Meetings.GetByID(ctx, meetingID)
	if err != nil {
		return nil, err
	}
	if err := s.checkOwner(ctx, actorID, meeting); err != nil {
		return nil, err
	}
	return meeting, nil
}

// modifyOwned applies fn to the stored meeting under the meeting lock,
// checking ownership against the locked copy first
func (s *MeetingService) modifyOwned(ctx context.Context, actorID, meetingID string, fn func(*domain.Meeting) error) (*domain.Meeting, error) {
	return s.store.Meetings.Modify(ctx, meetingID, func(m *domain.Meeting) error {
		if err := s.checkOwner(ctx, actorID, m); err != nil {
			return err
		}
		return fn(m)
	})
}

// checkOwner allows the creator and the admin of the meeting's team. A team
// that no longer exists grants nothing.
func (s *MeetingService) checkOwner(ctx context.Context, actorID string, meeting *domain.Meeting) error {
	if meeting.CreatorID == actorID {
		return nil
	}
	if meeting.TeamID != "" {
		team, err := s.store.Teams.GetByID(ctx, meeting.TeamID)
		if err != nil && !errors.Is(err, domain.ErrTeamNotFound) {
			return err
		}
		if err == nil && team.IsAdmin(actorID) {
			return nil
		}
	}
	return domain.ErrNotMeetingOwner
}

// parseSlots normalizes candidate slots to UTC, dropping duplicates
func parseSlots(values []string, zone string) ([]time.Time, error) {
	slots := make([]time.Time, 0, len(values))
	for _, v := range values {
		t, err := tzconv.ParseInstant(v, zone)
		if err != nil {
			return nil, err
		}
		dup := false
		for _, s := range slots {
			if s.Equal(t) {
				dup = true
				break
			}
		}
		if !dup {
			slots = append(slots, t)
		}
	}
	return slots, nil
}

func parseOptionalInstant(value, zone string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := tzconv.ParseInstant(value, zone)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func validDuration(d *int) (*int, error) {
	if d == nil {
		return nil, nil
	}
	if *d <= 0 {
		return nil, domain.Validationf("duration must be a positive number of minutes")
	}
	v := *d
	return &v, nil
}

func checkWindow(m *domain.Meeting) error {
	if m.VotingStart != nil && m.VotingEnd != nil && m.VotingEnd.Before(*m.VotingStart) {
		return domain.Validationf("votingEnd must not be before votingStart")
	}
	return nil
}
