package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/service"
)

const (
	slotA = "2025-06-03T09:00:00Z"
	slotB = "2025-06-03T15:00:00Z"
	slotC = "2025-06-04T09:00:00Z"
)

func TestMeetingCreate(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	outsider := f.member(t, "outsider", "UTC")
	team := f.team(t, alice, "crew")
	duration := 30

	t.Run("offset-less slots are read in the meeting zone", func(t *testing.T) {
		m, err := f.meetings.Create(f.ctx, alice.ID, service.MeetingInput{
			Title:     "planning",
			TeamID:    team.ID,
			Timezone:  "Europe/Moscow",
			TimeSlots: []string{"2025-06-03T12:00", "2025-06-03T09:00:00Z", "2025-06-03T12:00:00+03:00"},
			Duration:  &duration,
		})
		require.NoError(t, err)
		assert.Equal(t, []string{slotA}, m.SlotKeys())
		assert.Equal(t, domain.MeetingStatusScheduled, m.Status)
		assert.Equal(t, alice.ID, m.CreatorID)
		require.NotNil(t, m.Duration)
		assert.Equal(t, 30, *m.Duration)
	})

	t.Run("creator must be in the team", func(t *testing.T) {
		_, err := f.meetings.Create(f.ctx, outsider.ID, service.MeetingInput{Title: "x", TeamID: team.ID})
		assert.ErrorIs(t, err, domain.ErrCreatorNotInTeam)
	})

	t.Run("unknown team", func(t *testing.T) {
		_, err := f.meetings.Create(f.ctx, alice.ID, service.MeetingInput{Title: "x", TeamID: "ghost"})
		assert.ErrorIs(t, err, domain.ErrTeamNotFound)
	})

	t.Run("invalid input", func(t *testing.T) {
		zero := 0
		cases := []service.MeetingInput{
			{Title: "", TeamID: team.ID},
			{Title: "x", TeamID: team.ID, Timezone: "Nowhere/City"},
			{Title: "x", TeamID: team.ID, TimeSlots: []string{"next tuesday"}},
			{Title: "x", TeamID: team.ID, Duration: &zero},
			{Title: "x", TeamID: team.ID, VotingStart: slotB, VotingEnd: slotA},
		}
		for _, in := range cases {
			_, err := f.meetings.Create(f.ctx, alice.ID, in)
			assert.ErrorIs(t, err, domain.ErrValidation, "input %+v", in)
		}
	})
}

func newMeeting(t *testing.T, f *fixture, creator *domain.Member, teamID string, slots ...string) *domain.Meeting {
	t.Helper()
	m, err := f.meetings.Create(f.ctx, creator.ID, service.MeetingInput{Title: "sync", TeamID: teamID, TimeSlots: slots})
	require.NoError(t, err)
	return m
}

func TestSubmitVoteReplacesEarlierVote(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA, slotB)

	_, err := f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, slotA, "low")
	require.NoError(t, err)
	second, err := f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, slotB, "high")
	require.NoError(t, err)

	votes, err := f.meetings.Votes(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, votes, 1)
	assert.Equal(t, second.ID, votes[0].ID)
	assert.Equal(t, slotB, votes[0].TimeSlot)
	assert.Equal(t, domain.PreferenceHigh, votes[0].Preference)
}

func TestSubmitVoteDefaultsAndNormalizes(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA)

	vote, err := f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, "2025-06-03T11:00:00+02:00", "")
	require.NoError(t, err)
	assert.Equal(t, slotA, vote.TimeSlot)
	assert.Equal(t, domain.PreferenceMedium, vote.Preference)
	assert.Equal(t, f.now, vote.CreatedAt)
}

func TestSubmitVoteRejections(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	outsider := f.member(t, "outsider", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA)

	tests := []struct {
		name      string
		meetingID string
		userID    string
		slot      string
		pref      string
		wantErr   error
	}{
		{"unknown meeting", "ghost", alice.ID, slotA, "high", domain.ErrMeetingNotFound},
		{"unknown user", m.ID, "ghost", slotA, "high", domain.ErrMemberNotFound},
		{"not a team member", m.ID, outsider.ID, slotA, "high", domain.ErrVoterNotInTeam},
		{"bad preference", m.ID, alice.ID, slotA, "urgent", domain.ErrValidation},
		{"empty slot", m.ID, alice.ID, "", "high", domain.ErrValidation},
		{"malformed slot", m.ID, alice.ID, "tomorrow", "high", domain.ErrValidation},
		{"slot outside candidates", m.ID, alice.ID, slotC, "high", domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.meetings.SubmitVote(f.ctx, tt.meetingID, tt.userID, tt.slot, tt.pref)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	votes, err := f.meetings.Votes(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestSubmitVoteDanglingTeam(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID)

	require.NoError(t, f.store.Teams.Delete(f.ctx, team.ID))

	_, err := f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, slotA, "high")
	assert.ErrorIs(t, err, domain.ErrVoterNotInTeam)
}

func TestSubmitVoteWindow(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m, err := f.meetings.Create(f.ctx, alice.ID, service.MeetingInput{
		Title:       "windowed",
		TeamID:      team.ID,
		TimeSlots:   []string{slotA},
		VotingStart: "2025-06-02T00:00:00Z",
		VotingEnd:   "2025-06-02T23:59:59Z",
	})
	require.NoError(t, err)

	_, err = f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, slotA, "high")
	require.NoError(t, err)

	f.now = f.now.Add(24 * time.Hour)
	_, err = f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, slotA, "low")
	assert.ErrorIs(t, err, domain.ErrVotingClosed)
}

func TestResults(t *testing.T) {
	f := newFixture(t)
	u1 := f.member(t, "u1", "UTC")
	u2 := f.member(t, "u2", "UTC")
	u3 := f.member(t, "u3", "UTC")
	team := f.team(t, u1, "crew", u2, u3)
	m := newMeeting(t, f, u1, team.ID, slotA, slotB, slotC)

	_, err := f.meetings.SubmitVote(f.ctx, m.ID, u1.ID, slotA, "high")
	require.NoError(t, err)
	_, err = f.meetings.SubmitVote(f.ctx, m.ID, u2.ID, slotA, "medium")
	require.NoError(t, err)
	_, err = f.meetings.SubmitVote(f.ctx, m.ID, u3.ID, slotB, "low")
	require.NoError(t, err)

	results, err := f.meetings.Results(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, slotA, results[0].TimeSlot)
	assert.Equal(t, 2, results[0].Votes)
	assert.Equal(t, domain.PreferenceHigh, results[0].Preference)
	assert.Equal(t, slotB, results[1].TimeSlot)
	assert.Equal(t, 1, results[1].Votes)
	assert.Equal(t, domain.PreferenceLow, results[1].Preference)
	assert.Equal(t, slotC, results[2].TimeSlot)
	assert.Equal(t, 0, results[2].Votes)
	assert.Equal(t, domain.PreferenceLow, results[2].Preference)

	_, err = f.meetings.Results(f.ctx, "ghost")
	assert.ErrorIs(t, err, domain.ErrMeetingNotFound)
}

func TestResultsWithoutVotes(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA, slotB, slotC)

	results, err := f.meetings.Results(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, r := range results {
		assert.Zero(t, r.Votes)
		assert.Equal(t, domain.PreferenceLow, r.Preference)
	}
}

func TestMeetingOwnership(t *testing.T) {
	f := newFixture(t)
	admin := f.member(t, "admin", "UTC")
	creator := f.member(t, "creator", "UTC")
	other := f.member(t, "other", "UTC")
	team := f.team(t, admin, "crew", creator, other)
	m := newMeeting(t, f, creator, team.ID, slotA, slotB)

	title := "renamed"
	_, err := f.meetings.Update(f.ctx, other.ID, m.ID, service.MeetingUpdate{Title: &title})
	assert.ErrorIs(t, err, domain.ErrNotMeetingOwner)

	updated, err := f.meetings.Update(f.ctx, creator.ID, m.ID, service.MeetingUpdate{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Title)

	status := "archived"
	_, err = f.meetings.Update(f.ctx, admin.ID, m.ID, service.MeetingUpdate{Status: &status})
	assert.ErrorIs(t, err, domain.ErrValidation)

	status = domain.MeetingStatusCancelled
	updated, err = f.meetings.Update(f.ctx, admin.ID, m.ID, service.MeetingUpdate{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingStatusCancelled, updated.Status)

	assert.ErrorIs(t, f.meetings.Delete(f.ctx, other.ID, m.ID), domain.ErrNotMeetingOwner)
}

func TestMeetingUpdateIsAllOrNothing(t *testing.T) {
	f := newFileFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA)

	title := "renamed"
	status := "archived"
	_, err := f.meetings.Update(f.ctx, alice.ID, m.ID, service.MeetingUpdate{Title: &title, Status: &status})
	assert.ErrorIs(t, err, domain.ErrValidation)

	got, err := f.meetings.Get(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, m.Title, got.Title)
	assert.Equal(t, m.Status, got.Status)
}

func TestMeetingConcurrentUpdatesKeepBothFields(t *testing.T) {
	f := newFileFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA)

	title := "renamed"
	description := "weekly sync"
	updates := []service.MeetingUpdate{{Title: &title}, {Description: &description}}

	var wg sync.WaitGroup
	for _, upd := range updates {
		wg.Add(1)
		go func(upd service.MeetingUpdate) {
			defer wg.Done()
			_, err := f.meetings.Update(f.ctx, alice.ID, m.ID, upd)
			assert.NoError(t, err)
		}(upd)
	}
	wg.Wait()

	got, err := f.meetings.Get(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
	assert.Equal(t, "weekly sync", got.Description)
}

func TestMeetingDeleteCascadesVotes(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	team := f.team(t, alice, "crew")
	m := newMeeting(t, f, alice, team.ID, slotA)

	_, err := f.meetings.SubmitVote(f.ctx, m.ID, alice.ID, slotA, "high")
	require.NoError(t, err)

	require.NoError(t, f.meetings.Delete(f.ctx, alice.ID, m.ID))

	votes, err := f.store.Votes.ListByMeeting(f.ctx, m.ID)
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestFinalize(t *testing.T) {
	f := newFixture(t)
	u1 := f.member(t, "u1", "UTC")
	u2 := f.member(t, "u2", "UTC")
	team := f.team(t, u1, "crew", u2)
	m := newMeeting(t, f, u1, team.ID, slotA, slotB)

	_, err := f.meetings.Finalize(f.ctx, u1.ID, m.ID, "")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = f.meetings.SubmitVote(f.ctx, m.ID, u1.ID, slotB, "low")
	require.NoError(t, err)
	_, err = f.meetings.SubmitVote(f.ctx, m.ID, u2.ID, slotB, "medium")
	require.NoError(t, err)

	_, err = f.meetings.Finalize(f.ctx, u2.ID, m.ID, "")
	assert.ErrorIs(t, err, domain.ErrNotMeetingOwner)

	_, err = f.meetings.Finalize(f.ctx, u1.ID, m.ID, slotC)
	assert.ErrorIs(t, err, domain.ErrValidation)

	final, err := f.meetings.Finalize(f.ctx, u1.ID, m.ID, "")
	require.NoError(t, err)
	assert.Equal(t, domain.MeetingStatusFinalized, final.Status)
	require.NotNil(t, final.ScheduledTime)
	assert.Equal(t, slotB, domain.FormatInstant(*final.ScheduledTime))
}

func TestParticipants(t *testing.T) {
	f := newFixture(t)
	alice := f.member(t, "alice", "UTC")
	bob := f.member(t, "bob", "Asia/Tokyo")
	team := f.team(t, alice, "crew", bob)
	m := newMeeting(t, f, alice, team.ID, slotA)

	_, err := f.meetings.SubmitVote(f.ctx, m.ID, bob.ID, slotA, "high")
	require.NoError(t, err)

	participants, err := f.meetings.Participants(f.ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, participants, 2)

	assert.Equal(t, alice.ID, participants[0].ID)
	assert.False(t, participants[0].HasVoted)
	assert.Nil(t, participants[0].Vote)

	assert.Equal(t, bob.ID, participants[1].ID)
	assert.Equal(t, "Asia/Tokyo", participants[1].Timezone)
	assert.True(t, participants[1].HasVoted)
	require.NotNil(t, participants[1].Vote)
	assert.Equal(t, domain.PreferenceHigh, participants[1].Vote.Preference)
}
