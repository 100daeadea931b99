package filestore_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aidar/team-scheduler/internal/domain"
	"github.com/aidar/team-scheduler/internal/repository/filestore"
)

func TestMembersSurviveReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := filestore.NewStore(dir)
	require.NoError(t, err)

	var grid domain.Availability
	require.NoError(t, grid.Set(0, 9, true))
	member := &domain.Member{
		ID: "m1", Name: "alice", Timezone: "UTC", Role: domain.DefaultRole, Status: domain.DefaultStatus,
		Availability: grid, PasswordHash: "secret-hash", CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, store.Members.Create(ctx, member))
	assert.ErrorIs(t, store.Members.Create(ctx, member), domain.ErrMemberExists)

	reopened, err := filestore.NewStore(dir)
	require.NoError(t, err)

	got, err := reopened.Members.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Name)
	assert.Equal(t, "secret-hash", got.PasswordHash)
	assert.True(t, got.Availability.IsAvailable(0, 9))

	data, err := os.ReadFile(filepath.Join(dir, "members.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "day_0_slot_9")

	require.NoError(t, reopened.Members.Delete(ctx, "m1"))
	assert.ErrorIs(t, reopened.Members.Delete(ctx, "m1"), domain.ErrMemberNotFound)
}

func TestTeamsStoredByID(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	store, err := filestore.NewStore(dir)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, id := range []string{"zeta-00000001", "alpha-00000002"} {
		team := &domain.Team{ID: id, Name: id, CreatedAt: base.Add(time.Duration(i) * time.Hour)}
		team.SetMembers([]string{"m1"})
		require.NoError(t, store.Teams.Create(ctx, team))
	}

	teams, err := store.Teams.List(ctx)
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "zeta-00000001", teams[0].ID)
	assert.Equal(t, "alpha-00000002", teams[1].ID)
	assert.Equal(t, "m1", teams[0].Admin)

	data, err := os.ReadFile(filepath.Join(dir, "teams.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"zeta-00000001": {`)

	require.NoError(t, store.Teams.Delete(ctx, "zeta-00000001"))
	_, err = store.Teams.GetByID(ctx, "zeta-00000001")
	assert.ErrorIs(t, err, domain.ErrTeamNotFound)
}

func TestVoteReplace(t *testing.T) {
	store, err := filestore.NewStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, store.Votes.Replace(ctx, &domain.Vote{ID: "v1", MeetingID: "mt", UserID: "u1", TimeSlot: "A", Preference: domain.PreferenceLow}))
	require.NoError(t, store.Votes.Replace(ctx, &domain.Vote{ID: "v2", MeetingID: "mt", UserID: "u2", TimeSlot: "A", Preference: domain.PreferenceLow}))
	require.NoError(t, store.Votes.Replace(ctx, &domain.Vote{ID: "v3", MeetingID: "mt", UserID: "u1", TimeSlot: "B", Preference: domain.PreferenceHigh}))

	votes, err := store.Votes.ListByMeeting(ctx, "mt")
	require.NoError(t, err)
	require.Len(t, votes, 2)
	assert.Equal(t, "v2", votes[0].ID)
	assert.Equal(t, "v3", votes[1].ID)
	assert.Equal(t, "B", votes[1].TimeSlot)

	require.NoError(t, store.Votes.DeleteByMeeting(ctx, "mt"))
	votes, err = store.Votes.ListByMeeting(ctx, "mt")
	require.NoError(t, err)
	assert.Empty(t, votes)
}

func TestMissingFilesReadAsEmpty(t *testing.T) {
	store, err := filestore.NewStore(filepath.Join(t.TempDir(), "nested", "data"))
	require.NoError(t, err)

	members, err := store.Members.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, members)

	meetings, err := store.Meetings.ListByTeam(context.Background(), "any")
	require.NoError(t, err)
	assert.Empty(t, meetings)
}
